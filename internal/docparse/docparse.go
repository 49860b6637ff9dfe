// Package docparse parses structured doc comments into a uniform record.
//
// Two structured conventions are recognized, Google style ("Args:",
// "Returns:", ...) and NumPy style (underlined section headers), plus a
// plain style that only splits short and long descriptions. Auto detection
// picks the first convention whose section markers appear in the text.
package docparse

import (
	"fmt"
	"regexp"
	"strings"
)

// Style selects the docstring convention used by a module.
type Style int

const (
	Auto Style = iota
	Google
	NumPy
	Plain
)

// ParseStyle converts a CLI style name into a Style.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "google":
		return Google, nil
	case "numpy":
		return NumPy, nil
	case "plain", "godoc":
		return Plain, nil
	}
	return Auto, fmt.Errorf("unknown docstring style %q", name)
}

func (s Style) String() string {
	switch s {
	case Google:
		return "google"
	case NumPy:
		return "numpy"
	case Plain:
		return "plain"
	default:
		return "auto"
	}
}

// Param is one documented parameter or attribute entry.
type Param struct {
	Name        string
	TypeName    string
	Description string
}

// Returns documents the return value.
type Returns struct {
	TypeName    string
	Description string
}

// Raise documents one declared failure condition.
type Raise struct {
	TypeName    string
	Description string
}

// Example holds one example body verbatim.
type Example struct {
	Body string
}

// Docstring is the structured form of a doc comment.
type Docstring struct {
	Short    string
	Long     string
	Params   []Param
	Returns  *Returns
	Raises   []Raise
	Examples []Example
}

var (
	googleSection = regexp.MustCompile(`^(Args|Arguments|Attributes|Returns|Return|Raises|Errors|Examples|Example):\s*$`)
	numpyRule     = regexp.MustCompile(`^\s*-{3,}\s*$`)
	googleParam   = regexp.MustCompile(`^(\*{0,2}\w+)(?:\s*\(([^)]*)\))?\s*:\s*(.*)$`)
)

// Parse parses text according to style. An Auto style sniffs the
// convention from the text itself.
func Parse(text string, style Style) Docstring {
	text = strings.TrimSpace(normalize(text))
	if text == "" {
		return Docstring{}
	}
	if style == Auto {
		style = detect(text)
	}
	switch style {
	case Google:
		return parseGoogle(text)
	case NumPy:
		return parseNumPy(text)
	default:
		return parsePlain(text)
	}
}

func detect(text string) Style {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 && numpyRule.MatchString(line) && strings.TrimSpace(lines[i-1]) != "" {
			return NumPy
		}
		if googleSection.MatchString(strings.TrimSpace(line)) {
			return Google
		}
	}
	return Plain
}

// normalize expands tabs and strips the common indentation from the
// second line onward, the usual doc comment cleanup.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\t", "    ")
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	min := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if min < 0 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return text
	}
	for i, line := range lines[1:] {
		if len(line) >= min {
			lines[i+1] = line[min:]
		}
	}
	return strings.Join(lines, "\n")
}

func splitDescription(body string) (short, long string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ""
	}
	if idx := strings.Index(body, "\n\n"); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx:])
	}
	return body, ""
}

func parsePlain(text string) Docstring {
	short, long := splitDescription(text)
	return Docstring{Short: short, Long: long}
}

func parseGoogle(text string) Docstring {
	lines := strings.Split(text, "\n")
	var desc []string
	sections := map[string][]string{}
	current := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := googleSection.FindStringSubmatch(trimmed); m != nil && !strings.HasPrefix(line, " ") {
			current = canonicalSection(m[1])
			continue
		}
		if current == "" {
			desc = append(desc, line)
			continue
		}
		sections[current] = append(sections[current], line)
	}

	d := Docstring{}
	d.Short, d.Long = splitDescription(strings.Join(desc, "\n"))
	for _, p := range parseEntries(sections["args"]) {
		d.Params = append(d.Params, p)
	}
	for _, p := range parseEntries(sections["attributes"]) {
		d.Params = append(d.Params, p)
	}
	if body := sections["returns"]; len(body) > 0 {
		d.Returns = parseReturns(body)
	}
	for _, p := range parseEntries(sections["raises"]) {
		d.Raises = append(d.Raises, Raise{TypeName: p.Name, Description: p.Description})
	}
	if body := dedentBlock(sections["examples"]); body != "" {
		d.Examples = append(d.Examples, Example{Body: body})
	}
	return d
}

func canonicalSection(name string) string {
	switch name {
	case "Args", "Arguments":
		return "args"
	case "Attributes":
		return "attributes"
	case "Returns", "Return":
		return "returns"
	case "Raises", "Errors":
		return "raises"
	case "Examples", "Example":
		return "examples"
	}
	return strings.ToLower(name)
}

// parseEntries parses indented "name (type): description" entries with
// further-indented continuation lines.
func parseEntries(lines []string) []Param {
	var params []Param
	baseIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if baseIndent < 0 {
			baseIndent = indent
		}
		trimmed := strings.TrimSpace(line)
		if indent > baseIndent && len(params) > 0 {
			p := &params[len(params)-1]
			if p.Description != "" {
				p.Description += " "
			}
			p.Description += trimmed
			continue
		}
		if m := googleParam.FindStringSubmatch(trimmed); m != nil {
			params = append(params, Param{
				Name:        m[1],
				TypeName:    strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(m[3]),
			})
		} else if len(params) > 0 {
			p := &params[len(params)-1]
			if p.Description != "" {
				p.Description += " "
			}
			p.Description += trimmed
		}
	}
	return params
}

func parseReturns(lines []string) *Returns {
	body := strings.TrimSpace(dedentBlock(lines))
	if body == "" {
		return nil
	}
	first, rest, _ := strings.Cut(body, "\n")
	if name, desc, ok := strings.Cut(first, ":"); ok && !strings.Contains(name, " ") {
		full := strings.TrimSpace(desc)
		if rest != "" {
			full = strings.TrimSpace(full + " " + strings.Join(strings.Fields(rest), " "))
		}
		return &Returns{TypeName: strings.TrimSpace(name), Description: full}
	}
	return &Returns{Description: strings.Join(strings.Fields(body), " ")}
}

func dedentBlock(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	min := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if min < 0 || n < min {
			min = n
		}
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= min {
			out[i] = line[min:]
		} else {
			out[i] = strings.TrimLeft(line, " ")
		}
	}
	return strings.Join(out, "\n")
}

func parseNumPy(text string) Docstring {
	lines := strings.Split(text, "\n")
	var desc []string
	sections := map[string][]string{}
	current := ""
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if i+1 < len(lines) && numpyRule.MatchString(lines[i+1]) && strings.TrimSpace(line) != "" {
			current = canonicalNumPy(strings.TrimSpace(line))
			i++
			continue
		}
		if current == "" {
			desc = append(desc, line)
			continue
		}
		sections[current] = append(sections[current], line)
	}

	d := Docstring{}
	d.Short, d.Long = splitDescription(strings.Join(desc, "\n"))
	d.Params = parseNumPyEntries(sections["args"])
	d.Params = append(d.Params, parseNumPyEntries(sections["attributes"])...)
	if entries := parseNumPyEntries(sections["returns"]); len(entries) > 0 {
		e := entries[0]
		ret := &Returns{TypeName: e.TypeName, Description: e.Description}
		if ret.TypeName == "" {
			// "TypeName" alone on the header line parses as the name.
			ret.TypeName = e.Name
		}
		d.Returns = ret
	}
	for _, e := range parseNumPyEntries(sections["raises"]) {
		d.Raises = append(d.Raises, Raise{TypeName: e.Name, Description: e.Description})
	}
	if body := dedentBlock(sections["examples"]); body != "" {
		d.Examples = append(d.Examples, Example{Body: body})
	}
	return d
}

func canonicalNumPy(name string) string {
	switch name {
	case "Parameters", "Arguments":
		return "args"
	case "Attributes":
		return "attributes"
	case "Returns":
		return "returns"
	case "Raises":
		return "raises"
	case "Examples":
		return "examples"
	}
	return strings.ToLower(name)
}

// parseNumPyEntries parses "name : type" header lines with indented
// description lines beneath.
func parseNumPyEntries(lines []string) []Param {
	var params []Param
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, " ") && len(params) > 0 {
			p := &params[len(params)-1]
			if p.Description != "" {
				p.Description += " "
			}
			p.Description += strings.TrimSpace(line)
			continue
		}
		name, typ, _ := strings.Cut(strings.TrimSpace(line), ":")
		params = append(params, Param{
			Name:     strings.TrimSpace(name),
			TypeName: strings.TrimSpace(typ),
		})
	}
	return params
}
