// Package loader materializes Go packages for documentation.
//
// Every load failure except context cancellation is flattened into a
// *LoadError so submodule discovery can treat all of them uniformly.
// Cancellation is always returned as-is: an interrupted load must abort
// the run, never be downgraded to a skipped submodule.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadError wraps any failure to load a package, carrying the original
// cause and a textual trace of the per-file errors reported by the
// toolchain.
type LoadError struct {
	Pattern string
	Cause   error
	Trace   string
}

func (e *LoadError) Error() string {
	if e.Trace != "" {
		return fmt.Sprintf("load %s: %v\n%s", e.Pattern, e.Cause, e.Trace)
	}
	return fmt.Sprintf("load %s: %v", e.Pattern, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo |
	packages.NeedModule | packages.NeedImports | packages.NeedDeps

// Load resolves pattern to exactly one package with syntax and type
// information attached. Packages that load with errors are rejected.
func Load(ctx context.Context, pattern string) (*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, &LoadError{Pattern: pattern, Cause: err}
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if len(pkgs) == 0 {
		return nil, &LoadError{Pattern: pattern, Cause: errors.New("no Go packages matched")}
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, &LoadError{
			Pattern: pattern,
			Cause:   errors.New(pkg.Errors[0].Msg),
			Trace:   formatTrace(pkg.Errors),
		}
	}
	return pkg, nil
}

// LoadDir is Load with a filesystem directory argument.
func LoadDir(ctx context.Context, dir string) (*packages.Package, error) {
	if !strings.HasPrefix(dir, "./") && !strings.HasPrefix(dir, "/") && dir != "." {
		dir = "./" + dir
	}
	return Load(ctx, dir)
}

func formatTrace(errs []packages.Error) string {
	var b strings.Builder
	for _, e := range errs {
		if e.Pos != "" {
			fmt.Fprintf(&b, "%s: %s\n", e.Pos, e.Msg)
		} else {
			fmt.Fprintf(&b, "%s\n", e.Msg)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
