package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"
)

const rootLongDesc = `
sophia-doc generates Markdown API documentation for a Go module by
introspecting its loaded, type-checked package graph. It walks the
target package and every subpackage, classifies each declaration
(types, functions, data), and writes one Markdown file per package,
mirroring the package path as nested directories.

Structured doc comments in Google or NumPy style (Args:, Returns:,
Raises:, Examples: sections) are parsed into argument tables; the
style is auto-detected by default.

A package can restrict its documented names with an export directive
in the package doc comment:

  //sophia:export Name OtherName
`

func newRootCmd(stdout io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout}
	cmd := &cobra.Command{
		Use:           "sophia-doc [flags] MODULE",
		Short:         "Generate Markdown API documentation for a Go module",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRenderFlags(cmd, app)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		app.flagChanged = cmd.Flags().Changed
		return app.execute(cmd.Context(), args[0])
	}

	cmd.AddCommand(newWatchCmd(stdout))
	cmd.AddCommand(newCompletionCmd(cmd))
	cmd.AddCommand(newDocsCmd(cmd))
	return cmd
}

func addRenderFlags(cmd *cobra.Command, app *cliApp) {
	flags := cmd.Flags()
	flags.StringVarP(&app.opts.outputDir, "output-dir", "o", "doc", "directory to write documentation to")
	flags.StringVar(&app.opts.docstringStyle, "docstring-style", "auto", "docstring style the module uses (auto, google, numpy, plain)")
	flags.BoolVar(&app.opts.ignoreData, "ignore-data", false, "omit plain data sections (properties are kept)")
	flags.BoolVar(&app.opts.anchorExtend, "anchor-extend", false, "append {#qualified-name} anchors to headings")
	flags.BoolVar(&app.opts.overwrite, "overwrite", false, "allow replacing existing output files")
	flags.BoolVar(&app.opts.excludeModuleName, "exclude-module-name", false, "drop the leading module name from output paths")
	flags.StringVar(&app.opts.initFileName, "init-file-name", "index.md", "filename for a package's own content")
	flags.StringVar(&app.opts.configFile, "config", "", "YAML config file with the same options as the flags")
}

func newWatchCmd(stdout io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout}
	cmd := &cobra.Command{
		Use:   "watch [flags] MODULE",
		Short: "Regenerate documentation whenever source files change",
		Long: strings.TrimSpace(`
Watch the module's source tree and rerun the full documentation build
after each change. Existing output files are replaced on every rebuild.
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addRenderFlags(cmd, app)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		app.flagChanged = cmd.Flags().Changed
		return app.watch(cmd.Context(), args[0])
	}
	return cmd
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	const longDesc = `Generate shell completion scripts for sophia-doc.

The output should be evaluated by your shell. For example:

  # bash
  sophia-doc completion bash > /usr/local/etc/bash_completion.d/sophia-doc

  # zsh
  sophia-doc completion zsh > "${fpath[1]}/_sophia-doc"

  # fish
  sophia-doc completion fish | source

  # PowerShell
  sophia-doc completion powershell | Out-String | Invoke-Expression
`
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  longDesc,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell %q", args[0])
		}
	}
	return cmd
}

func newDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-docs [directory]",
		Short: "Generate Markdown reference docs for the CLI",
		Long: strings.TrimSpace(`
Write a Markdown file per command (suitable for publishing CLI docs).

Example:

  sophia-doc gen-docs ./docs/cli
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == "" {
			return fmt.Errorf("target directory is required")
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		return cobradoc.GenMarkdownTree(root, target)
	}
	return cmd
}
