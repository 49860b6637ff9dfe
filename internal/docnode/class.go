package docnode

import (
	"go/doc"
	"go/types"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Attribute kinds. Go has no class-method analog, so that kind is part
// of the rendering contract but never produced by classification.
const (
	KindMethod           = "method"
	KindStaticMethod     = "static method"
	KindClassMethod      = "class method"
	KindProperty         = "property"
	KindReadonlyProperty = "readonly property"
	KindCachedProperty   = "cached property"
	KindDataDescriptor   = "data descriptor"
	KindDataAttr         = "data"
)

// Class is the node for a named type.
type Class struct {
	base

	tn *types.TypeName

	attrs     []Attribute
	attrsDone bool
	bases     []string
	basesDone bool
}

// Attribute is one documented member of a class.
type Attribute struct {
	Name string
	Kind string
	Node Node
}

func newClass(tn *types.TypeName, name, qualname string, module *Module) *Class {
	return &Class{
		base: base{obj: tn, name: name, qualname: qualname, module: module},
		tn:   tn,
	}
}

func (c *Class) Kind() Kind { return KindClass }

func (c *Class) named() *types.Named {
	named, _ := types.Unalias(c.tn.Type()).(*types.Named)
	return named
}

func (c *Class) structType() *types.Struct {
	named := c.named()
	if named == nil {
		return nil
	}
	st, _ := named.Underlying().(*types.Struct)
	return st
}

// IsAbstract reports whether the type is an interface.
func (c *Class) IsAbstract() bool {
	if named := c.named(); named != nil {
		return types.IsInterface(named.Underlying())
	}
	return types.IsInterface(c.tn.Type().Underlying())
}

// IsException reports whether the type or its pointer implements error.
func (c *Class) IsException() bool {
	named := c.named()
	if named == nil {
		return false
	}
	errType, _ := types.Universe.Lookup("error").Type().Underlying().(*types.Interface)
	if errType == nil {
		return false
	}
	return types.Implements(named, errType) || types.Implements(types.NewPointer(named), errType)
}

// Attributes lists the members the type introduces or overrides, in
// declaration order: its own methods (with accessor pairs classified
// as properties), its own fields, and the factory functions and
// constants the doc graph associates with it. Members promoted from
// embedded types are never re-documented here.
func (c *Class) Attributes() []Attribute {
	if c.attrsDone {
		return c.attrs
	}
	c.attrsDone = true
	named := c.named()
	if named == nil {
		return nil
	}

	type entry struct {
		pos  int
		attr Attribute
	}
	var entries []entry
	add := func(pos int, a Attribute) { entries = append(entries, entry{pos, a}) }

	st := c.structType()
	fieldTypes := map[string]types.Type{}
	if st != nil {
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			fieldTypes[f.Name()] = f.Type()
		}
	}
	setters := map[string]bool{}
	for i := 0; i < named.NumMethods(); i++ {
		name := named.Method(i).Name()
		if rest, ok := strings.CutPrefix(name, "Set"); ok && rest != "" {
			setters[rest] = true
		}
	}

	// Interface methods live on the underlying interface, not the
	// named type.
	if iface, ok := named.Underlying().(*types.Interface); ok {
		for i := 0; i < iface.NumExplicitMethods(); i++ {
			fn := iface.ExplicitMethod(i)
			if !IsVisible(fn.Name(), nil) {
				continue
			}
			node := newFunction(fn, fn.Name(), c.qualname+"."+fn.Name(), c.module)
			node.owner = c
			add(int(fn.Pos()), Attribute{Name: fn.Name(), Kind: KindMethod, Node: node})
		}
	}

	for i := 0; i < named.NumMethods(); i++ {
		fn := named.Method(i)
		name := fn.Name()
		if !IsVisible(name, nil) {
			continue
		}
		qual := c.qualname + "." + name
		kind := KindMethod
		if backing, ok := accessorBacking(fn, fieldTypes); ok {
			if _, cached := fieldTypes[backing+"Once"]; cached && isSyncOnce(fieldTypes[backing+"Once"]) {
				kind = KindCachedProperty
			} else if setters[name] {
				kind = KindProperty
			} else {
				kind = KindReadonlyProperty
			}
		}
		if kind == KindMethod {
			node := newFunction(fn, name, qual, c.module)
			node.owner = c
			add(int(fn.Pos()), Attribute{Name: name, Kind: kind, Node: node})
		} else {
			// Wrap the accessor like a computed attribute: the node is
			// data whose annotation resolves the getter's return type.
			node := newPropertyData(fn, name, qual, c.module)
			node.owner = c
			add(int(fn.Pos()), Attribute{Name: name, Kind: kind, Node: node})
		}
	}

	if st != nil {
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			if f.Embedded() || !IsVisible(f.Name(), nil) {
				continue
			}
			kind := KindDataAttr
			if _, ok := f.Type().Underlying().(*types.Signature); ok {
				kind = KindDataDescriptor
			}
			node := newData(f, f.Name(), c.qualname+"."+f.Name(), c.module)
			node.owner = c
			add(int(f.Pos()), Attribute{Name: f.Name(), Kind: kind, Node: node})
		}
	}

	if docT := c.docType(); docT != nil {
		scope := c.module.pkg.Types.Scope()
		for _, f := range docT.Funcs {
			obj, ok := scope.Lookup(f.Name).(*types.Func)
			if !ok || !IsVisible(f.Name, nil) {
				continue
			}
			node := newFunction(obj, f.Name, c.qualname+"."+f.Name, c.module)
			add(int(obj.Pos()), Attribute{Name: f.Name, Kind: KindStaticMethod, Node: node})
		}
		for _, v := range docT.Consts {
			for _, name := range v.Names {
				obj := scope.Lookup(name)
				if obj == nil || !IsVisible(name, nil) {
					continue
				}
				node := newData(obj, name, c.qualname+"."+name, c.module)
				add(int(obj.Pos()), Attribute{Name: name, Kind: KindDataAttr, Node: node})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })
	for _, e := range entries {
		c.attrs = append(c.attrs, e.attr)
	}
	return c.attrs
}

// accessorBacking reports whether fn follows the accessor convention:
// no parameters, one result, and an unexported backing field of the
// same name and type.
func accessorBacking(fn *types.Func, fields map[string]types.Type) (string, bool) {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return "", false
	}
	backing := lowerFirst(fn.Name())
	if backing == fn.Name() {
		return "", false
	}
	ft, ok := fields[backing]
	if !ok || !types.Identical(ft, sig.Results().At(0).Type()) {
		return "", false
	}
	return backing, true
}

func isSyncOnce(t types.Type) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Name() == "Once" && obj.Pkg() != nil && obj.Pkg().Path() == "sync"
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func (c *Class) docType() *doc.Type {
	if c.module == nil || c.module.pkg == nil {
		return nil
	}
	docPkg := c.module.docPackage()
	if docPkg == nil {
		return nil
	}
	for _, t := range docPkg.Types {
		if t.Name == c.tn.Name() {
			return t
		}
	}
	return nil
}

// Bases lists the directly embedded types, formatted as dotted names.
// Universe types carry no package prefix.
func (c *Class) Bases() []string {
	if c.basesDone {
		return c.bases
	}
	c.basesDone = true
	for _, t := range c.baseTypes() {
		c.bases = append(c.bases, formatBaseName(t))
	}
	return c.bases
}

func (c *Class) baseTypes() []types.Type {
	named := c.named()
	if named == nil {
		return nil
	}
	var bases []types.Type
	switch u := named.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if f := u.Field(i); f.Embedded() {
				bases = append(bases, f.Type())
			}
		}
	case *types.Interface:
		for i := 0; i < u.NumEmbeddeds(); i++ {
			bases = append(bases, u.EmbeddedType(i))
		}
	}
	return bases
}

func formatBaseName(t types.Type) string {
	if ptr, ok := t.Underlying().(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := types.Unalias(t).(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() == nil {
			return obj.Name()
		}
		return obj.Pkg().Name() + "." + obj.Name()
	}
	return t.String()
}

// Mro is the linear resolution order of the embedding chain, formatted
// names, self first.
func (c *Class) Mro() []string {
	var out []string
	seen := map[string]bool{}
	for _, named := range c.mroTypes() {
		name := formatBaseName(named)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// mroTypes walks the embedding chain breadth-first, self first.
func (c *Class) mroTypes() []*types.Named {
	var order []*types.Named
	seen := map[*types.TypeName]bool{}
	queue := []types.Type{c.tn.Type()}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if ptr, ok := t.Underlying().(*types.Pointer); ok {
			t = ptr.Elem()
		}
		named, ok := types.Unalias(t).(*types.Named)
		if !ok || seen[named.Obj()] {
			continue
		}
		seen[named.Obj()] = true
		order = append(order, named)
		tmp := &Class{base: base{module: c.module}, tn: named.Obj()}
		queue = append(queue, tmp.baseTypes()...)
	}
	return order
}

// Subclasses lists the types that directly embed this one, discovered
// across the loaded package graph. Unnamed and underscore-prefixed
// types are excluded. Coverage is bounded by the graph the loader saw:
// packages that were never loaded cannot contribute subclasses.
func (c *Class) Subclasses() []*Class {
	named := c.named()
	if named == nil || c.module == nil || c.module.pkg == nil {
		return nil
	}
	var subs []*Class
	for _, pkg := range c.module.graphPackages() {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn == c.tn || strings.HasPrefix(name, "_") {
				continue
			}
			sub := &Class{base: base{module: c.module}, tn: tn}
			for _, bt := range sub.baseTypes() {
				if ptr, ok := bt.Underlying().(*types.Pointer); ok {
					bt = ptr.Elem()
				}
				if bn, ok := types.Unalias(bt).(*types.Named); ok && bn.Obj() == c.tn {
					subs = append(subs, newClass(tn, name, name, c.module))
					break
				}
			}
		}
	}
	return subs
}

// findAttrDoc resolves the doc for a same-named attribute by walking
// the resolution order, nearest definition first.
func (c *Class) findAttrDoc(name string) string {
	for _, named := range c.mroTypes() {
		for i := 0; i < named.NumMethods(); i++ {
			if fn := named.Method(i); fn.Name() == name {
				if doc := c.module.foreignDocFor(fn); doc != "" {
					return doc
				}
			}
		}
		if st, ok := named.Underlying().(*types.Struct); ok {
			for i := 0; i < st.NumFields(); i++ {
				if f := st.Field(i); f.Name() == name {
					if doc := c.module.foreignDocFor(f); doc != "" {
						return doc
					}
				}
			}
		}
	}
	return ""
}

func (c *Class) Docstring() string {
	if c.docCached {
		return c.doc
	}
	c.docCached = true
	c.doc = c.module.docFor(c.tn)
	return c.doc
}

// Annotations maps the type's exported field names to type strings.
func (c *Class) Annotations() map[string]string {
	if c.annCached {
		return c.ann
	}
	c.annCached = true
	st := c.structType()
	if st == nil {
		return nil
	}
	ann := map[string]string{}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() || !IsVisible(f.Name(), nil) {
			continue
		}
		ann[f.Name()] = c.module.TypeString(f.Type())
	}
	if len(ann) > 0 {
		c.ann = ann
	}
	return c.ann
}

// AnnotationNames is the annotation key set in field declaration order.
func (c *Class) AnnotationNames() []string {
	st := c.structType()
	if st == nil {
		return nil
	}
	var names []string
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() || !IsVisible(f.Name(), nil) {
			continue
		}
		names = append(names, f.Name())
	}
	return names
}
