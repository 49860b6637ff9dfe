package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\*b\_c`, Escape("a*b_c"))
	assert.Equal(t, `\<-chan string`, Escape("<-chan string"))
	assert.Equal(t, `\[\]byte`, Escape("[]byte"))
	assert.Equal(t, "plain", Escape("plain"))
}

func TestAnchor(t *testing.T) {
	assert.Equal(t, "Greeter-Greet", Anchor("Greeter.Greet"))
	assert.Equal(t, "pkg-sub-Name", Anchor("pkg/sub.Name"))
	assert.Equal(t, "a-b-", Anchor("a.b_"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b", Indent("a\n\nb", 1))
	assert.Equal(t, "    a", Indent("a", 2))
	assert.Equal(t, "a", Indent("a", 0))
}

func TestInlineStyles(t *testing.T) {
	assert.Equal(t, "_x_", Italic("x"))
	assert.Equal(t, "**x**", Bold("x"))
	assert.Equal(t, "`x`", InlineCode("x"))
	assert.Equal(t, "### x", Title("x", 3))
}

func TestJoinBlocks(t *testing.T) {
	assert.Equal(t, "a\n\nb", joinBlocks([]string{"a", "", "b"}))
	assert.Equal(t, "", joinBlocks(nil))
}
