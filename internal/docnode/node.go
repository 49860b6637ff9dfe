// Package docnode builds a tree of typed documentation nodes from a
// loaded, type-checked Go package graph.
//
// Every runtime object is classified into one of five kinds: Module,
// Class (named type), Function, Data, or Other. Nodes expose the
// metadata the renderer needs: name, qualified name, annotations (type
// strings), and the resolved doc comment. Qualified name, annotations,
// and docstring are computed once and cached for the node's lifetime.
package docnode

import (
	"go/token"
	"go/types"
	"slices"
	"strings"
)

// Kind identifies the classification of a node.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindFunction
	KindData
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindData:
		return "data"
	default:
		return "other"
	}
}

// Node is one documented entity.
type Node interface {
	// Kind reports the node's classification.
	Kind() Kind
	// Name is the name the object was discovered under. Immutable.
	Name() string
	// QualName is the dotted path of the declaration site.
	QualName() string
	// Module is the owning module, used to resolve relative type names.
	Module() *Module
	// Docstring is the resolved doc comment, "" when absent.
	Docstring() string
	// Annotations maps attribute or parameter names to type strings.
	Annotations() map[string]string
}

// base carries the state shared by every node kind.
type base struct {
	obj      types.Object
	name     string
	qualname string
	module   *Module

	docCached bool
	doc       string
	annCached bool
	ann       map[string]string
}

func (b *base) Name() string     { return b.name }
func (b *base) QualName() string { return b.qualname }
func (b *base) Module() *Module  { return b.module }

// FromObject classifies obj and returns the matching node. The decision
// order is fixed: module, class, callable, data, other. Func-typed
// package variables count as callables so that bindings like
// `var Handler = func(...)` document as functions.
func FromObject(obj types.Object, name, qualname string, module *Module) Node {
	switch o := obj.(type) {
	case *types.PkgName:
		if sub := module.importedModule(o.Imported().Path()); sub != nil {
			return sub
		}
	case *types.TypeName:
		return newClass(o, name, qualname, module)
	case *types.Func:
		return newFunction(o, name, qualname, module)
	case *types.Var:
		if _, ok := obj.Type().Underlying().(*types.Signature); ok {
			return newFuncVar(o, name, qualname, module)
		}
	}
	if IsData(obj) {
		return newData(obj, name, qualname, module)
	}
	return &Other{base: base{obj: obj, name: name, qualname: qualname, module: module}}
}

// IsData reports whether obj is plain data: not a module, not a type,
// and not any form of callable.
func IsData(obj types.Object) bool {
	switch obj.(type) {
	case *types.PkgName, *types.TypeName, *types.Func, *types.Builtin:
		return false
	}
	if obj == nil || obj.Type() == nil {
		return false
	}
	if _, ok := obj.Type().Underlying().(*types.Signature); ok {
		return false
	}
	return true
}

// ctorName is the constructor-analog name that is always documented,
// regardless of export lists or case.
const ctorName = "init"

// IsVisible decides whether a discovered binding is documented.
// The constructor name is always visible. An export list, when present,
// overrides the default rule entirely, including for unexported names.
// Without one, only exported names are visible, which subsumes the
// leading-underscore suppression.
func IsVisible(name string, exportList []string) bool {
	if name == ctorName {
		return true
	}
	if exportList != nil {
		return slices.Contains(exportList, name)
	}
	return token.IsExported(name)
}

// visibleDirName is the visibility rule for submodule discovery, where
// names are directory names: plain underscore and dot suppression, no
// export-list override.
func visibleDirName(name string) bool {
	return name != "" && name != "testdata" &&
		!strings.HasPrefix(name, "_") && !strings.HasPrefix(name, ".")
}

// Other is the fallback bucket for objects that fit no other kind. The
// renderer has no rule for it; one reaching the renderer is a defect.
type Other struct {
	base
}

func (o *Other) Kind() Kind { return KindOther }

func (o *Other) Docstring() string {
	if !o.docCached {
		o.docCached = true
		o.doc = o.module.docFor(o.obj)
	}
	return o.doc
}

func (o *Other) Annotations() map[string]string { return nil }
