package docnode

import (
	"go/types"
)

// Data is the node for any attribute that is neither a module, a type,
// nor a callable. Properties and cached accessors are wrapped as Data:
// the node's annotation resolves against the underlying getter, not
// the accessor wrapper itself.
type Data struct {
	base

	getter *types.Func // non-nil for property and cached-property wraps
	owner  *Class
}

func newData(obj types.Object, name, qualname string, module *Module) *Data {
	return &Data{base: base{obj: obj, name: name, qualname: qualname, module: module}}
}

func newPropertyData(getter *types.Func, name, qualname string, module *Module) *Data {
	return &Data{
		base:   base{obj: getter, name: name, qualname: qualname, module: module},
		getter: getter,
	}
}

func (d *Data) Kind() Kind { return KindData }

func (d *Data) Docstring() string {
	if d.docCached {
		return d.doc
	}
	d.docCached = true
	d.doc = d.module.docFor(d.obj)
	if d.doc == "" && d.owner != nil {
		d.doc = d.owner.findAttrDoc(d.name)
	}
	return d.doc
}

// Annotations for a property resolve the getter's return type under
// "return"; plain data carries no annotations.
func (d *Data) Annotations() map[string]string {
	if d.annCached {
		return d.ann
	}
	d.annCached = true
	if d.getter == nil {
		return nil
	}
	sig, ok := d.getter.Type().(*types.Signature)
	if !ok || sig.Results().Len() != 1 {
		return nil
	}
	d.ann = map[string]string{"return": d.module.TypeString(sig.Results().At(0).Type())}
	return d.ann
}
