package docnode

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/st1020/sophia-doc/internal/loader"
)

var (
	exampleOnce sync.Once
	examplePkg  *packages.Package
	exampleErr  error
)

// loadExample loads the fixture package once and wraps it in a fresh
// Module per test so memoized state never leaks between tests.
func loadExample(t *testing.T) *Module {
	t.Helper()
	exampleOnce.Do(func() {
		examplePkg, exampleErr = loader.Load(context.Background(), "../../testdata/example")
	})
	require.NoError(t, exampleErr)
	return New(examplePkg)
}

func findAttr(t *testing.T, m *Module, name string) Node {
	t.Helper()
	for _, node := range m.Attributes() {
		if node.Name() == name {
			return node
		}
	}
	t.Fatalf("module has no attribute %q", name)
	return nil
}

func findClass(t *testing.T, m *Module, name string) *Class {
	t.Helper()
	node := findAttr(t, m, name)
	class, ok := node.(*Class)
	require.True(t, ok, "attribute %q is %T, want *Class", name, node)
	return class
}

func findSub(t *testing.T, m *Module, name string) *Module {
	t.Helper()
	subs, err := m.Submodules(context.Background())
	require.NoError(t, err)
	for _, sub := range subs {
		if strings.HasSuffix(sub.Name(), "/"+name) {
			return sub
		}
	}
	t.Fatalf("module has no submodule %q", name)
	return nil
}

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name    string
		exports []string
		want    bool
	}{
		{"init", nil, true},
		{"init", []string{}, true},
		{"Exported", nil, true},
		{"unexported", nil, false},
		{"_Hidden", nil, false},
		{"hidden", []string{"hidden"}, true},
		{"Skipped", []string{"hidden"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVisible(tt.name, tt.exports),
			"IsVisible(%q, %v)", tt.name, tt.exports)
	}
}

func TestModuleAttributeOrder(t *testing.T) {
	m := loadExample(t)
	var names []string
	for _, node := range m.Attributes() {
		names = append(names, node.Name())
	}
	assert.Equal(t, []string{
		"MaxRetries", "Threshold", "DefaultMessage", "Handler",
		"Level", "Speaker", "Base", "Greeter", "ParseError",
		"Shout", "Stream", "Join",
	}, names)
}

func TestClassification(t *testing.T) {
	m := loadExample(t)

	assert.Equal(t, KindData, findAttr(t, m, "MaxRetries").Kind())
	assert.Equal(t, KindClass, findAttr(t, m, "Level").Kind())
	assert.Equal(t, KindFunction, findAttr(t, m, "Shout").Kind())

	handler, ok := findAttr(t, m, "Handler").(*Function)
	require.True(t, ok)
	assert.True(t, handler.IsLambda())

	stream, ok := findAttr(t, m, "Stream").(*Function)
	require.True(t, ok)
	assert.True(t, stream.IsAsync())
	assert.False(t, stream.IsLambda())
	assert.False(t, stream.IsBoundMethod())

	// Classification is stable across repeated calls.
	scope := m.pkg.Types.Scope()
	obj := scope.Lookup("Greeter")
	first := FromObject(obj, "Greeter", "Greeter", m)
	second := FromObject(obj, "Greeter", "Greeter", m)
	assert.Equal(t, first.Kind(), second.Kind())
}

func TestTrailingCommentDoc(t *testing.T) {
	m := loadExample(t)
	assert.Equal(t, "Threshold is the alert limit.",
		findAttr(t, m, "Threshold").Docstring())
}

func TestModuleDocstring(t *testing.T) {
	m := loadExample(t)
	assert.True(t, strings.HasPrefix(m.Docstring(),
		"Package example demonstrates documentation rendering."))
}

func TestGreeterAttributes(t *testing.T) {
	m := loadExample(t)
	greeter := findClass(t, m, "Greeter")

	var got [][2]string
	for _, attr := range greeter.Attributes() {
		got = append(got, [2]string{attr.Name, attr.Kind})
	}
	assert.Equal(t, [][2]string{
		{"Prefix", KindDataAttr},
		{"Hook", KindDataDescriptor},
		{"NewGreeter", KindStaticMethod},
		{"Name", KindProperty},
		{"SetName", KindMethod},
		{"ID", KindReadonlyProperty},
		{"Report", KindCachedProperty},
		{"Greet", KindMethod},
		{"Describe", KindMethod},
	}, got)
}

func TestGreeterBasesAndMro(t *testing.T) {
	m := loadExample(t)
	greeter := findClass(t, m, "Greeter")
	assert.Equal(t, []string{"example.Base"}, greeter.Bases())
	assert.Equal(t, []string{"example.Greeter", "example.Base"}, greeter.Mro())
	assert.False(t, greeter.IsAbstract())
	assert.False(t, greeter.IsException())
}

func TestSpeakerIsAbstract(t *testing.T) {
	m := loadExample(t)
	speaker := findClass(t, m, "Speaker")
	assert.True(t, speaker.IsAbstract())

	attrs := speaker.Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "Speak", attrs[0].Name)
	assert.Equal(t, KindMethod, attrs[0].Kind)
	assert.Equal(t, "Speak says something.", attrs[0].Node.Docstring())
}

func TestParseErrorIsException(t *testing.T) {
	m := loadExample(t)
	parseErr := findClass(t, m, "ParseError")
	assert.True(t, parseErr.IsException())

	kinds := map[string]string{}
	for _, attr := range parseErr.Attributes() {
		kinds[attr.Name] = attr.Kind
	}
	assert.Equal(t, map[string]string{
		"Spec":  KindDataAttr,
		"Error": KindMethod,
	}, kinds)
}

func TestLevelAssociatedConstants(t *testing.T) {
	m := loadExample(t)
	level := findClass(t, m, "Level")

	var names []string
	for _, attr := range level.Attributes() {
		names = append(names, attr.Name)
		assert.Equal(t, KindDataAttr, attr.Kind)
	}
	assert.Equal(t, []string{"Quiet", "Verbose"}, names)
	assert.Equal(t, "Quiet suppresses all output.", level.Attributes()[0].Node.Docstring())
	assert.Equal(t, "Level.Quiet", level.Attributes()[0].Node.QualName())
}

func TestSubclasses(t *testing.T) {
	m := loadExample(t)
	base := findClass(t, m, "Base")
	var names []string
	for _, sub := range base.Subclasses() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "Greeter")
}

func TestOverrideInheritsDoc(t *testing.T) {
	m := loadExample(t)
	greeter := findClass(t, m, "Greeter")

	var describe Node
	for _, attr := range greeter.Attributes() {
		require.NotEqual(t, "Reset", attr.Name, "promoted methods must not be re-documented")
		if attr.Name == "Describe" {
			describe = attr.Node
		}
	}
	require.NotNil(t, describe)
	assert.Equal(t, "Describe returns a human readable description.", describe.Docstring())
}

func TestAnnotations(t *testing.T) {
	m := loadExample(t)
	greeter := findClass(t, m, "Greeter")

	assert.Equal(t, map[string]string{
		"Prefix": "string",
		"Hook":   "func(string)",
	}, greeter.Annotations())
	assert.Equal(t, []string{"Prefix", "Hook"}, greeter.AnnotationNames())

	for _, attr := range greeter.Attributes() {
		switch attr.Name {
		case "Report":
			assert.Equal(t, map[string]string{"return": "string"}, attr.Node.Annotations())
		case "Greet":
			assert.Equal(t, map[string]string{
				"g":      "*Greeter",
				"who":    "string",
				"return": "string",
			}, attr.Node.Annotations())
		}
	}

	stream := findAttr(t, m, "Stream")
	assert.Equal(t, "<-chan string", stream.Annotations()["return"])
}

func TestSubmodules(t *testing.T) {
	m := loadExample(t)
	subs, err := m.Submodules(context.Background())
	require.NoError(t, err)

	var names []string
	for _, sub := range subs {
		names = append(names, sub.Name())
	}
	assert.Equal(t, []string{
		"github.com/st1020/sophia-doc/testdata/example/nsgroup",
		"github.com/st1020/sophia-doc/testdata/example/subpkg",
	}, names, "imported subpackages must not be discovered twice")

	nsgroup := findSub(t, m, "nsgroup")
	assert.True(t, nsgroup.IsNamespace())
	assert.True(t, nsgroup.IsPackage())

	inner := findSub(t, nsgroup, "inner")
	assert.False(t, inner.IsNamespace())
	assert.Equal(t,
		[]string{"sophia-doc", "testdata", "example", "nsgroup", "inner"},
		inner.PathSegments())
}

func TestSubmodulesCanceled(t *testing.T) {
	m := loadExample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Submodules(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportList(t *testing.T) {
	m := loadExample(t)
	subpkg := findSub(t, m, "subpkg")
	assert.Equal(t, []string{"Message", "hidden"}, subpkg.ExportList())

	var names []string
	for _, node := range subpkg.Attributes() {
		names = append(names, node.Name())
	}
	assert.Equal(t, []string{"Message", "hidden"}, names)
	assert.NotContains(t, subpkg.Docstring(), "sophia:export")
}

func TestPathSegments(t *testing.T) {
	m := loadExample(t)
	assert.Equal(t, []string{"sophia-doc", "testdata", "example"}, m.PathSegments())
	assert.True(t, m.IsPackage())
	subpkg := findSub(t, m, "subpkg")
	assert.False(t, subpkg.IsPackage())
}
