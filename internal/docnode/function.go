package docnode

import (
	"go/types"
)

// Function is the node for a callable: a declared function, a method,
// or a func-typed package variable (a lambda binding).
type Function struct {
	base

	fn    *types.Func // nil when the callable is a func-typed variable
	owner *Class

	sigCached bool
	sig       *Signature
}

func newFunction(fn *types.Func, name, qualname string, module *Module) *Function {
	return &Function{
		base: base{obj: fn, name: name, qualname: qualname, module: module},
		fn:   fn,
	}
}

func newFuncVar(v *types.Var, name, qualname string, module *Module) *Function {
	return &Function{
		base: base{obj: v, name: name, qualname: qualname, module: module},
	}
}

func (f *Function) Kind() Kind { return KindFunction }

// Signature is the callable's parameter list, nil when it cannot be
// determined.
func (f *Function) Signature() *Signature {
	if f.sigCached {
		return f.sig
	}
	f.sigCached = true
	if f.obj == nil || f.obj.Type() == nil {
		return nil
	}
	sig, ok := f.obj.Type().Underlying().(*types.Signature)
	if !ok {
		return nil
	}
	f.sig = newSignature(sig, f.module)
	return f.sig
}

// IsAsync reports whether the callable produces results over a
// channel, the closest convention to an asynchronous function.
func (f *Function) IsAsync() bool {
	sig := f.typesSignature()
	if sig == nil {
		return false
	}
	for i := 0; i < sig.Results().Len(); i++ {
		if _, ok := sig.Results().At(i).Type().Underlying().(*types.Chan); ok {
			return true
		}
	}
	return false
}

// IsBoundMethod reports whether the callable has a receiver.
func (f *Function) IsBoundMethod() bool {
	sig := f.typesSignature()
	return sig != nil && sig.Recv() != nil
}

// IsLambda reports whether the callable is an anonymous function bound
// to a variable rather than a declared function.
func (f *Function) IsLambda() bool { return f.fn == nil }

func (f *Function) typesSignature() *types.Signature {
	if f.obj == nil || f.obj.Type() == nil {
		return nil
	}
	sig, _ := f.obj.Type().Underlying().(*types.Signature)
	return sig
}

func (f *Function) Docstring() string {
	if f.docCached {
		return f.doc
	}
	f.docCached = true
	f.doc = f.module.docFor(f.obj)
	if f.doc == "" && f.owner != nil {
		// An undocumented override inherits the doc of the nearest
		// definition in the resolution order.
		f.doc = f.owner.findAttrDoc(f.name)
	}
	return f.doc
}

// Annotations maps parameter names to type strings, with the return
// type under "return".
func (f *Function) Annotations() map[string]string {
	if f.annCached {
		return f.ann
	}
	f.annCached = true
	sig := f.Signature()
	if sig == nil {
		return nil
	}
	ann := map[string]string{}
	for _, p := range sig.Params {
		if p.Type != "" {
			ann[p.Name] = p.Type
		}
	}
	if sig.Return != "" {
		ann["return"] = sig.Return
	}
	if len(ann) > 0 {
		f.ann = ann
	}
	return f.ann
}
