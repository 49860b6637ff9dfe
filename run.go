package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/st1020/sophia-doc/internal/docnode"
	"github.com/st1020/sophia-doc/internal/docparse"
	"github.com/st1020/sophia-doc/internal/loader"
	"github.com/st1020/sophia-doc/internal/markdown"
	"github.com/st1020/sophia-doc/internal/watcher"
)

type options struct {
	outputDir         string
	docstringStyle    string
	ignoreData        bool
	anchorExtend      bool
	overwrite         bool
	excludeModuleName bool
	initFileName      string
	configFile        string
}

type cliApp struct {
	stdout io.Writer
	opts   options

	// flagChanged reports whether a flag was set explicitly, so config
	// file values do not override it.
	flagChanged func(name string) bool
}

func run(argv []string, stdout io.Writer) error {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(argv)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cmd.ExecuteContext(ctx)
}

func (app *cliApp) execute(ctx context.Context, pattern string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := app.buildOptions()
	if err != nil {
		return err
	}
	pkg, err := loader.Load(ctx, pattern)
	if err != nil {
		return err
	}
	module := docnode.New(pkg)
	return markdown.NewBuilder(module, opts).Write(ctx, app.opts.outputDir)
}

func (app *cliApp) watch(ctx context.Context, pattern string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := app.buildOptions()
	if err != nil {
		return err
	}
	// Rebuilds must replace the previous output.
	opts.Overwrite = true
	pkg, err := loader.Load(ctx, pattern)
	if err != nil {
		return err
	}
	root := docnode.New(pkg).Dir()
	rebuild := func(ctx context.Context) error {
		pkg, err := loader.Load(ctx, pattern)
		if err != nil {
			return err
		}
		if err := markdown.NewBuilder(docnode.New(pkg), opts).Write(ctx, app.opts.outputDir); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "regenerated documentation for %s\n", pkg.PkgPath)
		return nil
	}
	w, err := watcher.New(root, rebuild,
		watcher.WithDebounceDelay(500*time.Millisecond),
		watcher.WithOnError(func(err error) {
			fmt.Fprintln(app.stdout, "watch:", err)
		}))
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "watching %s\n", root)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (app *cliApp) buildOptions() (markdown.Options, error) {
	if app.opts.configFile != "" {
		if err := app.applyConfigFile(app.opts.configFile); err != nil {
			return markdown.Options{}, err
		}
	}
	style, err := docparse.ParseStyle(app.opts.docstringStyle)
	if err != nil {
		return markdown.Options{}, err
	}
	return markdown.Options{
		Style:             style,
		AnchorExtend:      app.opts.anchorExtend,
		IgnoreData:        app.opts.ignoreData,
		Overwrite:         app.opts.overwrite,
		ExcludeModuleName: app.opts.excludeModuleName,
		InitFileName:      app.opts.initFileName,
	}, nil
}

// fileConfig mirrors the flag surface. Explicitly set flags win over
// file values.
type fileConfig struct {
	OutputDir         *string `yaml:"output_dir"`
	DocstringStyle    *string `yaml:"docstring_style"`
	IgnoreData        *bool   `yaml:"ignore_data"`
	AnchorExtend      *bool   `yaml:"anchor_extend"`
	Overwrite         *bool   `yaml:"overwrite"`
	ExcludeModuleName *bool   `yaml:"exclude_module_name"`
	InitFileName      *string `yaml:"init_file_name"`
}

func (app *cliApp) applyConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	changed := app.flagChanged
	if changed == nil {
		changed = func(string) bool { return false }
	}
	setString := func(flag string, dst *string, src *string) {
		if src != nil && !changed(flag) {
			*dst = *src
		}
	}
	setBool := func(flag string, dst *bool, src *bool) {
		if src != nil && !changed(flag) {
			*dst = *src
		}
	}
	setString("output-dir", &app.opts.outputDir, cfg.OutputDir)
	setString("docstring-style", &app.opts.docstringStyle, cfg.DocstringStyle)
	setString("init-file-name", &app.opts.initFileName, cfg.InitFileName)
	setBool("ignore-data", &app.opts.ignoreData, cfg.IgnoreData)
	setBool("anchor-extend", &app.opts.anchorExtend, cfg.AnchorExtend)
	setBool("overwrite", &app.opts.overwrite, cfg.Overwrite)
	setBool("exclude-module-name", &app.opts.excludeModuleName, cfg.ExcludeModuleName)
	return nil
}
