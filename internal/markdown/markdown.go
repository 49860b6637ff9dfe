// Package markdown renders a module node tree into Markdown files.
package markdown

import (
	"strings"
)

// escapeSet is the set of Markdown control characters escaped inside
// rendered names and types. Angle brackets are escaped; raw HTML in
// identifiers is never passed through.
const escapeSet = "*#\\()[]<>_`"

// Escape backslash-escapes Markdown control characters.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, c := range text {
		if strings.ContainsRune(escapeSet, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Anchor derives a heading anchor from a qualified name: every control
// character, dot, and path separator becomes a hyphen.
func Anchor(qualname string) string {
	var b strings.Builder
	b.Grow(len(qualname))
	for _, c := range qualname {
		if strings.ContainsRune(escapeSet+"./", c) {
			b.WriteByte('-')
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Indent prefixes non-blank lines with two spaces per level.
func Indent(text string, level int) string {
	prefix := strings.Repeat("  ", level)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func Italic(text string) string { return "_" + text + "_" }

func Bold(text string) string { return "**" + text + "**" }

func InlineCode(text string) string { return "`" + text + "`" }

// Title renders a heading at the given level.
func Title(text string, level int) string {
	return strings.Repeat("#", level) + " " + text
}

// joinBlocks joins non-empty blocks with blank lines.
func joinBlocks(blocks []string) string {
	var kept []string
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}
