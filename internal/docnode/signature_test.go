package docnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func methodSignature(t *testing.T, m *Module, className, methodName string) *Signature {
	t.Helper()
	class := findClass(t, m, className)
	for _, attr := range class.Attributes() {
		if attr.Name != methodName {
			continue
		}
		fn, ok := attr.Node.(*Function)
		require.True(t, ok, "attribute %q is %T, want *Function", methodName, attr.Node)
		return fn.Signature()
	}
	t.Fatalf("class %q has no attribute %q", className, methodName)
	return nil
}

func TestMethodSignatureIncludesReceiver(t *testing.T) {
	m := loadExample(t)
	sig := methodSignature(t, m, "Greeter", "Greet")
	require.NotNil(t, sig)
	require.Len(t, sig.Params, 2)
	assert.Equal(t, "g", sig.Params[0].Name)
	assert.Equal(t, "*Greeter", sig.Params[0].Type)
	assert.Equal(t, "who", sig.Params[1].Name)
	assert.Equal(t, "string", sig.Return)
	assert.Equal(t, "(g, who)", sig.Format(false))
	assert.Equal(t, "(g: *Greeter, who: string) -> string", sig.Format(true))
}

func TestVariadicSignature(t *testing.T) {
	m := loadExample(t)
	join, ok := findAttr(t, m, "Join").(*Function)
	require.True(t, ok)
	sig := join.Signature()
	require.NotNil(t, sig)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, VarPositional, sig.Params[0].Kind)
	assert.Equal(t, "string", sig.Params[0].Type, "variadic parameters report the element type")
	assert.Equal(t, "(*words)", sig.Format(false))
}

func TestFormatMarkers(t *testing.T) {
	sig := &Signature{Params: []Parameter{
		{Name: "a", Kind: PositionalOnly},
		{Name: "b", Kind: PositionalOrKeyword},
		{Name: "args", Kind: VarPositional},
		{Name: "c", Kind: KeywordOnly},
	}}
	assert.Equal(t, "(a, /, b, *args, c)", sig.Format(false))

	sig = &Signature{Params: []Parameter{
		{Name: "a", Kind: PositionalOnly},
	}}
	assert.Equal(t, "(a, /)", sig.Format(false))

	sig = &Signature{Params: []Parameter{
		{Name: "a", Kind: PositionalOrKeyword},
		{Name: "c", Kind: KeywordOnly},
		{Name: "kwargs", Kind: VarKeyword},
	}}
	assert.Equal(t, "(a, *, c, **kwargs)", sig.Format(false))
}

func TestFormatParameter(t *testing.T) {
	p := Parameter{Name: "a", Type: "int", Default: "1"}
	assert.Equal(t, "a=1", FormatParameter(p, false))
	assert.Equal(t, "a: int = 1", FormatParameter(p, true))

	p = Parameter{Name: "args", Kind: VarPositional, Type: "string"}
	assert.Equal(t, "*args", FormatParameter(p, false))
	assert.Equal(t, "*args: string", FormatParameter(p, true))
}

func TestSignatureUnresolvable(t *testing.T) {
	var f Function
	assert.Nil(t, f.Signature())
	assert.Nil(t, f.Annotations())
	assert.False(t, f.IsAsync())
	assert.False(t, f.IsBoundMethod())
	assert.True(t, f.IsLambda())
}
