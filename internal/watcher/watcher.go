// Package watcher re-renders documentation when source files change.
// Each change triggers a full rebuild; there is no partial
// regeneration.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a package directory tree for Go source changes and
// invokes a rebuild callback, debounced.
type Watcher struct {
	root      string
	fsWatcher *fsnotify.Watcher
	delay     time.Duration
	rebuild   func(ctx context.Context) error
	onError   func(error)

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithOnError sets the callback for rebuild errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// New creates a Watcher over root. The rebuild callback runs once at
// start and again after every debounced batch of changes.
func New(root string, rebuild func(ctx context.Context) error, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		root:      root,
		fsWatcher: fsWatcher,
		delay:     500 * time.Millisecond,
		rebuild:   rebuild,
		onError:   func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addRecursive(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata") {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// Run blocks until ctx is canceled, rebuilding on relevant changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()
	if err := w.rebuild(ctx); err != nil {
		return err
	}
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.schedule(fire)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		case <-fire:
			if err := w.rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasSuffix(event.Name, ".go") {
		return true
	}
	// A created directory may bring new packages with it.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.fsWatcher.Add(event.Name)
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(fire chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}
