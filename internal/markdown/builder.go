package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/st1020/sophia-doc/internal/docnode"
	"github.com/st1020/sophia-doc/internal/docparse"
)

// Options controls rendering and output layout.
type Options struct {
	// Style selects the docstring convention, auto-detected by default.
	Style docparse.Style
	// AnchorExtend appends "{#qualified-name}" anchors to headings.
	AnchorExtend bool
	// IgnoreData suppresses plain data sections. Properties are never
	// suppressed by this flag.
	IgnoreData bool
	// Overwrite allows replacing existing output files.
	Overwrite bool
	// ExcludeModuleName drops the leading path segment from output
	// paths.
	ExcludeModuleName bool
	// InitFileName is the file a package's own content is written to,
	// "index.md" by default.
	InitFileName string
}

// Builder renders one module and recursively its submodules.
type Builder struct {
	module *docnode.Module
	opts   Options
}

// NewBuilder returns a Builder for module.
func NewBuilder(module *docnode.Module, opts Options) *Builder {
	if opts.InitFileName == "" {
		opts.InitFileName = "index.md"
	}
	return &Builder{module: module, opts: opts}
}

func (b *Builder) docstringOf(node docnode.Node) docparse.Docstring {
	return docparse.Parse(node.Docstring(), b.opts.Style)
}

func description(d docparse.Docstring) []string {
	var out []string
	if d.Short != "" {
		out = append(out, d.Short)
	}
	if d.Long != "" {
		out = append(out, d.Long)
	}
	return out
}

// Text renders the whole module document: a level-1 title, the module
// description, then every attribute section in discovery order. The
// result always ends with a single trailing newline.
func (b *Builder) Text() (string, error) {
	blocks := []string{Title(b.module.Name(), 1)}
	blocks = append(blocks, description(b.docstringOf(b.module))...)
	for _, node := range b.module.Attributes() {
		block, err := b.buildDoc(node, 1, defaultKind(node), false)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return joinBlocks(blocks) + "\n", nil
}

func defaultKind(node docnode.Node) string {
	switch node.Kind() {
	case docnode.KindFunction:
		return "function"
	default:
		return "data"
	}
}

// buildDoc dispatches on the node kind. Kinds without a rendering rule
// reaching this point are a programming-contract violation.
func (b *Builder) buildDoc(node docnode.Node, level int, kind string, ignoreFirstArg bool) (string, error) {
	switch n := node.(type) {
	case *docnode.Class:
		return b.buildClass(n, level)
	case *docnode.Function:
		return b.buildFunction(n, level, kind, ignoreFirstArg), nil
	case *docnode.Data:
		return b.buildData(n, level, kind), nil
	}
	return "", fmt.Errorf("no rendering rule for %s node %q", node.Kind(), node.QualName())
}

func (b *Builder) extendTitle(title string, node docnode.Node) string {
	if !b.opts.AnchorExtend {
		return title
	}
	return title + " {#" + Anchor(node.QualName()) + "}"
}

func (b *Builder) buildClass(node *docnode.Class, level int) (string, error) {
	var kinds []string
	if node.IsAbstract() {
		kinds = append(kinds, "abstract")
	}
	if node.IsException() {
		kinds = append(kinds, "exception")
	} else {
		kinds = append(kinds, "class")
	}
	kind := strings.Join(kinds, " ")

	var blocks []string
	title := Title(Italic(kind)+" "+InlineCode(Escape(node.Name())), level+1)
	blocks = append(blocks, b.extendTitle(title, node))

	if bases := node.Bases(); len(bases) > 0 {
		quoted := make([]string, len(bases))
		for i, base := range bases {
			quoted[i] = InlineCode(base)
		}
		blocks = append(blocks, "Bases: "+strings.Join(quoted, ", "))
	}

	docstring := b.docstringOf(node)
	blocks = append(blocks, description(docstring)...)
	blocks = append(blocks, b.buildClassAttributeList(node, docstring)...)

	if len(docstring.Examples) > 0 {
		blocks = append(blocks, "- "+Bold("Examples"))
		blocks = append(blocks, Indent(docstring.Examples[0].Body, 1))
	}

	for _, attr := range node.Attributes() {
		ignoreFirst := attr.Kind == docnode.KindMethod || attr.Kind == docnode.KindClassMethod
		block, err := b.buildDoc(attr.Node, level+1, attr.Kind, ignoreFirst)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return joinBlocks(blocks), nil
}

// buildClassAttributeList merges annotation-derived attribute types
// with docstring-declared descriptions. A docstring entry wins; the
// annotation supplies the type name when the docstring omitted it.
func (b *Builder) buildClassAttributeList(node *docnode.Class, docstring docparse.Docstring) []string {
	annotations := node.Annotations()
	if len(docstring.Params) == 0 && len(annotations) == 0 {
		return nil
	}

	order := node.AnnotationNames()
	entries := map[string]docparse.Param{}
	for _, name := range order {
		entries[name] = docparse.Param{Name: name, TypeName: annotations[name]}
	}
	for _, p := range docstring.Params {
		if existing, ok := entries[p.Name]; ok {
			if p.TypeName == "" {
				p.TypeName = existing.TypeName
			}
		} else {
			order = append(order, p.Name)
		}
		entries[p.Name] = p
	}

	blocks := []string{"- " + Bold("Attributes")}
	for _, name := range order {
		blocks = append(blocks, Indent(paramLine(entries[name]), 1))
	}
	return blocks
}

// paramLine renders "- **name** (_type_) - description".
func paramLine(p docparse.Param) string {
	line := "- " + Bold(Escape(p.Name))
	if p.TypeName != "" {
		line += " (" + Italic(Escape(p.TypeName)) + ")"
	}
	if p.Description != "" {
		line += " - " + p.Description
	}
	return line
}

func (b *Builder) buildFunction(node *docnode.Function, level int, kind string, ignoreFirstArg bool) string {
	sig := node.Signature()
	if sig == nil {
		slog.Warn("function has no signature, skipped", "function", node.QualName())
		return ""
	}

	var kinds []string
	if node.IsAsync() {
		kinds = append(kinds, "async")
	}
	if node.IsLambda() {
		kinds = append(kinds, "lambda")
	}
	kinds = append(kinds, kind)
	kind = strings.Join(kinds, " ")

	var blocks []string
	title := Title(Italic(kind)+" "+InlineCode(node.Name()+sig.Format(false)), level+1)
	blocks = append(blocks, b.extendTitle(title, node))

	docstring := b.docstringOf(node)
	blocks = append(blocks, description(docstring)...)
	blocks = append(blocks, b.buildArguments(node, sig, docstring, ignoreFirstArg)...)

	if docstring.Returns != nil || sig.Return != "" {
		blocks = append(blocks, "- "+Bold("Returns"))
		typeName := sig.Return
		if docstring.Returns != nil && docstring.Returns.TypeName != "" {
			typeName = docstring.Returns.TypeName
		}
		if typeName != "" {
			blocks = append(blocks, Indent("Type: "+Italic(Escape(typeName)), 1))
		}
		if docstring.Returns != nil && docstring.Returns.Description != "" {
			blocks = append(blocks, Indent(docstring.Returns.Description, 1))
		}
	}

	if len(docstring.Raises) > 0 {
		blocks = append(blocks, "- "+Bold("Raises"))
		for _, r := range docstring.Raises {
			blocks = append(blocks, Indent("- "+Bold(Escape(r.TypeName))+" - "+r.Description, 1))
		}
	}

	if len(docstring.Examples) > 0 {
		blocks = append(blocks, "- "+Bold("Examples"))
		blocks = append(blocks, Indent(docstring.Examples[0].Body, 1))
	}
	return joinBlocks(blocks)
}

// buildArguments merges signature parameters with docstring entries by
// name. A docstring entry replaces the derived one but borrows its
// type when the docstring omitted it; a documented name missing from
// the signature is kept with a warning.
func (b *Builder) buildArguments(node *docnode.Function, sig *docnode.Signature, docstring docparse.Docstring, ignoreFirstArg bool) []string {
	if len(docstring.Params) == 0 && len(sig.Params) == 0 {
		return nil
	}

	var order []string
	entries := map[string]docparse.Param{}
	for _, p := range sig.Params {
		key := p.Name
		switch p.Kind {
		case docnode.VarPositional:
			key = "*" + key
		case docnode.VarKeyword:
			key = "**" + key
		}
		order = append(order, key)
		entries[key] = docparse.Param{Name: key, TypeName: p.Type}
	}
	for _, p := range docstring.Params {
		existing, ok := entries[p.Name]
		if !ok {
			if len(sig.Params) > 0 {
				slog.Warn("documented argument not found in signature",
					"argument", p.Name, "function", node.QualName())
			}
			order = append(order, p.Name)
		} else if p.TypeName == "" {
			p.TypeName = existing.TypeName
		}
		entries[p.Name] = p
	}
	if ignoreFirstArg && len(order) > 0 {
		delete(entries, order[0])
		order = order[1:]
	}
	if len(order) == 0 {
		return nil
	}

	blocks := []string{"- " + Bold("Arguments")}
	for _, key := range order {
		blocks = append(blocks, Indent(paramLine(entries[key]), 1))
	}
	return blocks
}

func (b *Builder) buildData(node *docnode.Data, level int, kind string) string {
	if b.opts.IgnoreData && kind == docnode.KindDataAttr {
		return ""
	}

	var blocks []string
	title := Title(Italic(kind)+" "+InlineCode(Escape(node.Name())), level+1)
	blocks = append(blocks, b.extendTitle(title, node))

	if strings.Contains(kind, "property") {
		if ret := node.Annotations()["return"]; ret != "" {
			blocks = append(blocks, "Type: "+Italic(Escape(ret)))
		}
	}

	blocks = append(blocks, description(b.docstringOf(node))...)
	return joinBlocks(blocks)
}

// Path is the output path of this module relative to the output root:
// a package writes its own content to InitFileName inside its
// directory, a leaf module writes a sibling .md file.
func (b *Builder) Path() string {
	segs := b.module.PathSegments()
	if b.opts.ExcludeModuleName && len(segs) > 1 {
		segs = segs[1:]
	}
	if b.module.IsPackage() {
		return filepath.Join(append(segs, b.opts.InitFileName)...)
	}
	return filepath.Join(segs...) + ".md"
}

// Write renders this module to outputDir and recurses into submodules,
// depth-first in pre-order. Namespace modules emit no content. An
// existing destination without Overwrite set, or any write failure,
// aborts the run; output already written stays on disk.
func (b *Builder) Write(ctx context.Context, outputDir string) error {
	if !b.module.IsNamespace() {
		path := filepath.Join(outputDir, b.Path())
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if !b.opts.Overwrite {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("output file already exists: %s", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		text, err := b.Text()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return err
		}
	}
	subs, err := b.module.Submodules(ctx)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := NewBuilder(sub, b.opts).Write(ctx, outputDir); err != nil {
			return err
		}
	}
	return nil
}
