package docnode

import (
	"context"
	"go/ast"
	"go/doc"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/st1020/sophia-doc/internal/loader"
)

// exportDirective marks a doc comment line that declares the module's
// explicit public-export list, e.g. "//sophia:export Name other".
const exportDirective = "sophia:export"

// Module is the node for one loaded package. A namespace module is a
// directory with no Go files of its own that still groups subpackages;
// it has no pkg and emits no content.
type Module struct {
	base

	pkg     *packages.Package
	dir     string
	modPath string

	attrs      []Node
	attrsDone  bool
	subs       []*Module
	subsDone   bool
	docPkg     *doc.Package
	docPkgDone bool
	index      map[token.Pos]declInfo
	exports    []string
	exportDone bool
	isPkg      *bool
	impCache   map[string]*Module
	assoc      map[string]bool
}

// New wraps a loaded package as the root of a node tree. The module
// ignores any externally supplied name and derives it from the package
// itself.
func New(pkg *packages.Package) *Module {
	m := &Module{
		pkg: pkg,
		dir: packageDir(pkg),
	}
	if pkg.Module != nil {
		m.modPath = pkg.Module.Path
	}
	m.name = pkg.PkgPath
	m.qualname = pkg.PkgPath
	m.module = m
	return m
}

// newNamespace builds a module for a directory that contains no Go
// files but has packages beneath it.
func newNamespace(pkgPath, dir, modPath string) *Module {
	m := &Module{dir: dir, modPath: modPath}
	m.name = pkgPath
	m.qualname = pkgPath
	m.module = m
	return m
}

func packageDir(pkg *packages.Package) string {
	if len(pkg.GoFiles) > 0 {
		return filepath.Dir(pkg.GoFiles[0])
	}
	if len(pkg.CompiledGoFiles) > 0 {
		return filepath.Dir(pkg.CompiledGoFiles[0])
	}
	return ""
}

func (m *Module) Kind() Kind { return KindModule }

// IsNamespace reports whether this module has no content of its own.
func (m *Module) IsNamespace() bool { return m.pkg == nil }

// IsPackage reports whether this module has sub-importable children.
func (m *Module) IsPackage() bool {
	if m.isPkg == nil {
		v := m.dir != "" && hasSubPackages(m.dir)
		m.isPkg = &v
	}
	return *m.isPkg
}

func hasSubPackages(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() || !visibleDirName(e.Name()) {
			continue
		}
		if containsGoFiles(filepath.Join(dir, e.Name())) {
			return true
		}
	}
	return false
}

func containsGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	subdirs := false
	for _, e := range entries {
		if e.IsDir() {
			subdirs = subdirs || visibleDirName(e.Name())
			continue
		}
		if strings.HasSuffix(e.Name(), ".go") && !strings.HasSuffix(e.Name(), "_test.go") {
			return true
		}
	}
	if !subdirs {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && visibleDirName(e.Name()) && containsGoFiles(filepath.Join(dir, e.Name())) {
			return true
		}
	}
	return false
}

// Dir is the directory holding this module's source files.
func (m *Module) Dir() string { return m.dir }

// File is the first source file of this module, "" when absent.
func (m *Module) File() string {
	if m.pkg == nil || len(m.pkg.GoFiles) == 0 {
		return ""
	}
	return m.pkg.GoFiles[0]
}

// Source is the content of File, best-effort.
func (m *Module) Source() string {
	file := m.File()
	if file == "" {
		return ""
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	return string(data)
}

// ExportList is the module's explicit public-export list, nil when the
// module declares none.
func (m *Module) ExportList() []string {
	if m.exportDone {
		return m.exports
	}
	m.exportDone = true
	if m.pkg == nil {
		return nil
	}
	for _, f := range m.pkg.Syntax {
		if f.Doc == nil {
			continue
		}
		for _, c := range f.Doc.List {
			text := strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), " ")
			if rest, ok := strings.CutPrefix(text, exportDirective); ok {
				m.exports = append(m.exports, strings.Fields(rest)...)
			}
		}
	}
	return m.exports
}

// Attributes lists the module's own documented bindings in declaration
// order. Bindings defined in other packages (for instance type aliases
// re-exporting a foreign type) are excluded unless the module's export
// list names them explicitly.
func (m *Module) Attributes() []Node {
	if m.attrsDone {
		return m.attrs
	}
	m.attrsDone = true
	if m.pkg == nil || m.pkg.Types == nil {
		return nil
	}
	exports := m.ExportList()
	scope := m.pkg.Types.Scope()
	names := scope.Names()
	objs := make([]types.Object, 0, len(names))
	for _, name := range names {
		obj := scope.Lookup(name)
		if !IsVisible(name, exports) {
			continue
		}
		if exports == nil && !m.owns(obj) {
			continue
		}
		objs = append(objs, obj)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Pos() < objs[j].Pos() })
	assoc := m.associatedNames()
	for _, obj := range objs {
		// Factories and constants the doc graph ties to a type are
		// documented under that type, not at module level.
		switch obj.(type) {
		case *types.Func, *types.Const:
			if assoc[obj.Name()] {
				continue
			}
		}
		m.attrs = append(m.attrs, FromObject(obj, obj.Name(), obj.Name(), m))
	}
	return m.attrs
}

// associatedNames is the set of package-level function and constant
// names that go/doc associates with a type.
func (m *Module) associatedNames() map[string]bool {
	if m.assoc != nil {
		return m.assoc
	}
	m.assoc = map[string]bool{}
	docPkg := m.docPackage()
	if docPkg == nil {
		return m.assoc
	}
	for _, t := range docPkg.Types {
		for _, f := range t.Funcs {
			m.assoc[f.Name] = true
		}
		for _, v := range t.Consts {
			for _, name := range v.Names {
				m.assoc[name] = true
			}
		}
	}
	return m.assoc
}

// owns reports whether obj was defined by this module itself. A type
// alias is owned by the package declaring its target type.
func (m *Module) owns(obj types.Object) bool {
	if tn, ok := obj.(*types.TypeName); ok && tn.IsAlias() {
		if named, ok := types.Unalias(tn.Type()).(*types.Named); ok {
			if p := named.Obj().Pkg(); p != nil {
				return p == m.pkg.Types
			}
		}
	}
	return obj.Pkg() == m.pkg.Types
}

// Submodules discovers child modules, deduplicated by name. The first
// pass enumerates subdirectories on disk; a failed load is skipped with
// a warning unless ctx was canceled, which aborts immediately. The
// second pass recovers subpackages that are imported directly but live
// outside the enumerated directory tree.
func (m *Module) Submodules(ctx context.Context) ([]*Module, error) {
	if m.subsDone {
		return m.subs, nil
	}
	seen := map[string]bool{}
	var subs []*Module
	if m.IsPackage() {
		entries, err := os.ReadDir(m.dir)
		if err == nil {
			for _, e := range entries {
				name := e.Name()
				if !e.IsDir() || !visibleDirName(name) {
					continue
				}
				subdir := filepath.Join(m.dir, name)
				if !containsGoFiles(subdir) {
					continue
				}
				seen[name] = true
				if !hasOwnGoFiles(subdir) {
					subs = append(subs, newNamespace(path.Join(m.name, name), subdir, m.modPath))
					continue
				}
				pkg, err := loader.LoadDir(ctx, subdir)
				if err != nil {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}
					slog.Warn("cannot load submodule", "module", path.Join(m.name, name), "error", err)
					continue
				}
				subs = append(subs, New(pkg))
			}
		}
	}
	if m.pkg != nil {
		prefix := m.name + "/"
		paths := make([]string, 0, len(m.pkg.Imports))
		for p := range m.pkg.Imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			if !strings.HasPrefix(p, prefix) {
				continue
			}
			name := path.Base(p)
			if seen[name] || !visibleDirName(name) {
				continue
			}
			seen[name] = true
			subs = append(subs, New(m.pkg.Imports[p]))
		}
	}
	m.subs = subs
	m.subsDone = true
	return subs, nil
}

func hasOwnGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".go") && !strings.HasSuffix(e.Name(), "_test.go") {
			return true
		}
	}
	return false
}

// importedModule returns the already-loaded package for an import
// path, nil when the path was not part of the load. Results are cached
// so lazy indexes are built once per package.
func (m *Module) importedModule(pkgPath string) *Module {
	if m.pkg == nil {
		return nil
	}
	if cached, ok := m.impCache[pkgPath]; ok {
		return cached
	}
	imp := findImport(m.pkg, pkgPath, map[string]bool{})
	if imp == nil {
		return nil
	}
	if m.impCache == nil {
		m.impCache = map[string]*Module{}
	}
	sub := New(imp)
	m.impCache[pkgPath] = sub
	return sub
}

func findImport(pkg *packages.Package, pkgPath string, seen map[string]bool) *packages.Package {
	if seen[pkg.PkgPath] {
		return nil
	}
	seen[pkg.PkgPath] = true
	if imp, ok := pkg.Imports[pkgPath]; ok {
		return imp
	}
	for _, imp := range pkg.Imports {
		if found := findImport(imp, pkgPath, seen); found != nil {
			return found
		}
	}
	return nil
}

// foreignDocFor resolves an object's doc comment even when the object
// belongs to an imported package.
func (m *Module) foreignDocFor(obj types.Object) string {
	if obj == nil {
		return ""
	}
	if m.pkg != nil && obj.Pkg() == m.pkg.Types {
		return m.docFor(obj)
	}
	if obj.Pkg() == nil {
		return ""
	}
	if sub := m.importedModule(obj.Pkg().Path()); sub != nil {
		return sub.docFor(obj)
	}
	return ""
}

// graphPackages is the loaded package graph rooted at this module,
// restricted to packages of the same Go module.
func (m *Module) graphPackages() []*packages.Package {
	if m.pkg == nil {
		return nil
	}
	var out []*packages.Package
	seen := map[string]bool{}
	var walk func(pkg *packages.Package)
	walk = func(pkg *packages.Package) {
		if seen[pkg.PkgPath] {
			return
		}
		seen[pkg.PkgPath] = true
		if pkg.Types == nil {
			return
		}
		if m.modPath == "" || pkg.PkgPath == m.modPath || strings.HasPrefix(pkg.PkgPath, m.modPath+"/") {
			out = append(out, pkg)
		}
		for _, imp := range pkg.Imports {
			walk(imp)
		}
	}
	walk(m.pkg)
	sort.Slice(out, func(i, j int) bool { return out[i].PkgPath < out[j].PkgPath })
	return out
}

// PathSegments is the module's dotted name as path segments: the
// containing Go module's base name followed by the package's relative
// path within it.
func (m *Module) PathSegments() []string {
	if m.modPath != "" {
		modPath := m.modPath
		segs := []string{path.Base(modPath)}
		if m.name != modPath {
			if rel, ok := strings.CutPrefix(m.name, modPath+"/"); ok {
				segs = append(segs, strings.Split(rel, "/")...)
			} else {
				return strings.Split(m.name, "/")
			}
		}
		return segs
	}
	return strings.Split(m.name, "/")
}

func (m *Module) Docstring() string {
	if m.docCached {
		return m.doc
	}
	m.docCached = true
	if m.pkg == nil {
		return ""
	}
	for _, f := range m.pkg.Syntax {
		if f.Doc == nil {
			continue
		}
		var lines []string
		for _, line := range strings.Split(strings.TrimSpace(f.Doc.Text()), "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), exportDirective) {
				continue
			}
			lines = append(lines, line)
		}
		if text := strings.TrimSpace(strings.Join(lines, "\n")); text != "" {
			m.doc = text
			return m.doc
		}
	}
	return ""
}

func (m *Module) Annotations() map[string]string { return nil }

// TypeString formats a type relative to this module: the owning
// module's prefix is dropped, other packages contribute their name,
// and universe types stay bare.
func (m *Module) TypeString(t types.Type) string {
	if t == nil {
		return ""
	}
	return types.TypeString(t, func(p *types.Package) string {
		if m.pkg != nil && p == m.pkg.Types {
			return ""
		}
		return p.Name()
	})
}

type declInfo struct {
	doc     string
	comment string
}

// declFor returns the doc comment attached to an object's declaration,
// located by the position of its defining identifier.
func (m *Module) declFor(obj types.Object) declInfo {
	if m.index == nil {
		m.index = buildDeclIndex(m.pkg)
	}
	return m.index[obj.Pos()]
}

// docFor resolves an object's own doc comment, falling back to the
// declaration's trailing comment when no doc comment exists.
func (m *Module) docFor(obj types.Object) string {
	if obj == nil {
		return ""
	}
	info := m.declFor(obj)
	if info.doc != "" {
		return strings.TrimSpace(info.doc)
	}
	return strings.TrimSpace(info.comment)
}

func buildDeclIndex(pkg *packages.Package) map[token.Pos]declInfo {
	index := map[token.Pos]declInfo{}
	if pkg == nil {
		return index
	}
	for _, f := range pkg.Syntax {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Name != nil && d.Doc != nil {
					index[d.Name.Pos()] = declInfo{doc: d.Doc.Text()}
				}
			case *ast.GenDecl:
				indexGenDecl(index, d)
			}
		}
	}
	return index
}

func indexGenDecl(index map[token.Pos]declInfo, d *ast.GenDecl) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			info := declInfo{}
			if s.Doc != nil {
				info.doc = s.Doc.Text()
			} else if len(d.Specs) == 1 && d.Doc != nil {
				info.doc = d.Doc.Text()
			}
			if s.Comment != nil {
				info.comment = s.Comment.Text()
			}
			index[s.Name.Pos()] = info
			indexTypeSpec(index, s)
		case *ast.ValueSpec:
			info := declInfo{}
			if s.Doc != nil {
				info.doc = s.Doc.Text()
			} else if len(d.Specs) == 1 && d.Doc != nil {
				info.doc = d.Doc.Text()
			}
			if s.Comment != nil {
				info.comment = s.Comment.Text()
			}
			for _, name := range s.Names {
				index[name.Pos()] = info
			}
		}
	}
}

// indexTypeSpec records field docs for struct and interface members so
// class attributes resolve their own documentation.
func indexTypeSpec(index map[token.Pos]declInfo, s *ast.TypeSpec) {
	var fields *ast.FieldList
	switch t := s.Type.(type) {
	case *ast.StructType:
		fields = t.Fields
	case *ast.InterfaceType:
		fields = t.Methods
	}
	if fields == nil {
		return
	}
	for _, field := range fields.List {
		info := declInfo{}
		if field.Doc != nil {
			info.doc = field.Doc.Text()
		}
		if field.Comment != nil {
			info.comment = field.Comment.Text()
		}
		for _, name := range field.Names {
			index[name.Pos()] = info
		}
	}
}

// docPackage lazily builds the go/doc view of the package, used to
// associate factory functions and constants with their types.
func (m *Module) docPackage() *doc.Package {
	if m.docPkgDone {
		return m.docPkg
	}
	m.docPkgDone = true
	if m.pkg == nil || len(m.pkg.Syntax) == 0 {
		return nil
	}
	p, err := doc.NewFromFiles(m.pkg.Fset, m.pkg.Syntax, m.pkg.PkgPath,
		doc.AllDecls|doc.AllMethods|doc.PreserveAST)
	if err != nil {
		slog.Warn("cannot build doc package", "module", m.name, "error", err)
		return nil
	}
	m.docPkg = p
	return p
}
