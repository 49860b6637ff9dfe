package markdown

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st1020/sophia-doc/internal/docnode"
	"github.com/st1020/sophia-doc/internal/loader"
)

var (
	fixtureOnce sync.Once
	fixtures    map[string]*docnode.Module
	fixtureErr  error
)

func loadFixture(t *testing.T, name string) *docnode.Module {
	t.Helper()
	fixtureOnce.Do(func() {
		fixtures = map[string]*docnode.Module{}
		for _, dir := range []string{"example", "empty"} {
			pkg, err := loader.Load(context.Background(), "../../testdata/"+dir)
			if err != nil {
				fixtureErr = err
				return
			}
			fixtures[dir] = docnode.New(pkg)
		}
	})
	require.NoError(t, fixtureErr)
	return fixtures[name]
}

// captureLogs routes slog output into a buffer for the duration of the
// test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestTextEmptyModule(t *testing.T) {
	b := NewBuilder(loadFixture(t, "empty"), Options{})
	text, err := b.Text()
	require.NoError(t, err)
	assert.Equal(t,
		"# github.com/st1020/sophia-doc/testdata/empty\n\n"+
			"Package empty has documentation but no public API.\n",
		text)
}

func TestTextExampleModule(t *testing.T) {
	logs := captureLogs(t)
	b := NewBuilder(loadFixture(t, "example"), Options{})
	text, err := b.Text()
	require.NoError(t, err)

	assert.Contains(t, text, "# github.com/st1020/sophia-doc/testdata/example\n")
	assert.Contains(t, text, "## _class_ `Greeter`")
	assert.Contains(t, text, "Bases: `example.Base`")
	assert.Contains(t, text, "## _abstract class_ `Speaker`")
	assert.Contains(t, text, "## _exception_ `ParseError`")
	assert.Contains(t, text, "## _lambda function_ `Handler(msg)`")
	assert.Contains(t, text, "## _async function_ `Stream(count)`")
	assert.Contains(t, text, "### _property_ `Name`")
	assert.Contains(t, text, "### _readonly property_ `ID`")
	assert.Contains(t, text, "### _cached property_ `Report`")
	assert.Contains(t, text, "### _static method_ `NewGreeter(prefix)`")
	assert.Contains(t, text, "### _method_ `Greet(g, who)`")

	// The receiver never shows up in the argument list, and the
	// docstring description borrows the signature's type.
	assert.Contains(t, text, "  - **who** (_string_) - The name to greet.")
	assert.NotContains(t, text, "- **g**")

	// Class attribute list merges field annotations with docstring
	// descriptions.
	assert.Contains(t, text, "  - **Prefix** (_string_) - The string placed before every greeting.")
	assert.Contains(t, text, "  - **Hook** (_func\\(string\\)_)")

	// Property sections carry the getter's type.
	assert.Contains(t, text, "Type: _string_")
	assert.Contains(t, text, "Type: _\\<-chan string_")

	// Variadic parameters keep their star marker.
	assert.Contains(t, text, "`Join(*words)`")
	assert.Contains(t, text, "  - **\\*words** (_string_)")

	// Raises sections render declared failure conditions.
	assert.Contains(t, text, "  - **ParseError** - If the message cannot be parsed.")

	// A documented argument missing from the signature is kept and
	// reported.
	assert.Contains(t, text, "  - **volume** - How loud to yell it.")
	assert.Contains(t, logs.String(), "documented argument not found in signature")
}

func TestTextIgnoreData(t *testing.T) {
	b := NewBuilder(loadFixture(t, "example"), Options{IgnoreData: true})
	text, err := b.Text()
	require.NoError(t, err)
	assert.NotContains(t, text, "`MaxRetries`")
	assert.Contains(t, text, "### _property_ `Name`", "properties survive --ignore-data")
	assert.Contains(t, text, "### _cached property_ `Report`")
}

func TestTextAnchorExtend(t *testing.T) {
	b := NewBuilder(loadFixture(t, "example"), Options{AnchorExtend: true})
	text, err := b.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "`Greet(g, who)` {#Greeter-Greet}")
	assert.Contains(t, text, "`Greeter` {#Greeter}")
}

func TestBuildFunctionWithoutSignature(t *testing.T) {
	logs := captureLogs(t)
	b := NewBuilder(nil, Options{})
	out := b.buildFunction(&docnode.Function{}, 1, "function", false)
	assert.Empty(t, out, "a function without a resolvable signature is dropped")
	assert.Contains(t, logs.String(), "function has no signature")
}

func TestBuildDocRejectsOtherNodes(t *testing.T) {
	b := NewBuilder(nil, Options{})
	_, err := b.buildDoc(&docnode.Other{}, 1, "data", false)
	assert.ErrorContains(t, err, "no rendering rule")
}

func TestPath(t *testing.T) {
	m := loadFixture(t, "example")

	b := NewBuilder(m, Options{})
	assert.Equal(t, filepath.Join("sophia-doc", "testdata", "example", "index.md"), b.Path())

	b = NewBuilder(m, Options{ExcludeModuleName: true})
	assert.Equal(t, filepath.Join("testdata", "example", "index.md"), b.Path())

	b = NewBuilder(m, Options{InitFileName: "README.md"})
	assert.Equal(t, filepath.Join("sophia-doc", "testdata", "example", "README.md"), b.Path())

	leaf := loadFixture(t, "empty")
	b = NewBuilder(leaf, Options{})
	assert.Equal(t, filepath.Join("sophia-doc", "testdata", "empty")+".md", b.Path())
}

func TestWriteCollision(t *testing.T) {
	tmp := t.TempDir()
	ctx := context.Background()

	b := NewBuilder(loadFixture(t, "empty"), Options{})
	require.NoError(t, b.Write(ctx, tmp))

	err := b.Write(ctx, tmp)
	require.ErrorContains(t, err, "already exists")

	b = NewBuilder(loadFixture(t, "empty"), Options{Overwrite: true})
	require.NoError(t, b.Write(ctx, tmp))
}
