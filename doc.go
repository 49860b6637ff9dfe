// # sophia-doc
//
// `sophia-doc` generates Markdown API documentation for Go modules. It
// loads the target package graph with `golang.org/x/tools/go/packages`,
// classifies every declaration into a documentation node (module,
// class, function, data), and writes one Markdown file per package,
// mirroring the package path as nested directories.
//
// Key capabilities:
//
//   - document a package and all of its subpackages recursively, with
//     one output file per package and an index file per package
//     directory.
//   - parse structured doc comments (Google `Args:`/`Returns:`/
//     `Raises:`/`Examples:` sections or NumPy underlined sections) into
//     argument and return tables, auto-detecting the style.
//   - merge documented parameter descriptions with signature-derived
//     types: the doc comment wins for descriptions, the signature
//     supplies missing type names.
//   - classify type members: methods, factory functions, accessor
//     properties (readonly, settable, or sync.Once-cached), overridable
//     func-typed fields, and plain data.
//   - honor a `//sophia:export` directive in the package doc comment as
//     an explicit public-export list, overriding the default
//     exported-names rule.
//   - `watch` mode that regenerates the whole output tree whenever a
//     source file changes.
//
// ## Usage
//
//	sophia-doc [flags] MODULE
//
// Examples:
//
//   - Document a package tree into ./doc:
//
//     sophia-doc ./mypkg
//
//   - Overwrite existing output and add heading anchors:
//
//     sophia-doc --overwrite --anchor-extend ./mypkg
//
//   - Keep docs up to date while editing:
//
//     sophia-doc watch ./mypkg
//
// ## Supported Flags
//
//   - `-o, --output-dir DIR`: root of the generated tree (default `doc`).
//   - `--docstring-style STYLE`: `auto`, `google`, `numpy`, or `plain`.
//   - `--ignore-data`: omit plain data sections; properties are kept.
//   - `--anchor-extend`: append `{#qualified-name}` anchors to headings.
//   - `--overwrite`: allow replacing existing output files.
//   - `--exclude-module-name`: drop the leading module name from output
//     paths, e.g. `mymod/sub.md` becomes `sub.md`.
//   - `--init-file-name NAME`: filename for a package's own content
//     inside its directory (default `index.md`).
//   - `--config FILE`: YAML file providing the same options; explicit
//     flags win.
//
// ## Output Layout
//
// A package with subpackages writes its own content to
// `<path>/<init-file-name>`; a leaf package writes `<path>.md`.
// Directories that contain no Go files but group subpackages emit no
// content of their own. Existing files are never replaced unless
// `--overwrite` is set.
//
// ## Shell Completion and CLI Docs
//
// Autocompletion is provided via Cobra's generators:
//
//	sophia-doc completion bash        # bash
//	sophia-doc completion zsh         # zsh
//	sophia-doc completion fish | source
//	sophia-doc completion powershell | Out-String | Invoke-Expression
//
// `sophia-doc gen-docs ./docs/cli` writes a Markdown reference file per
// CLI command.
package main
