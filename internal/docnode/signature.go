package docnode

import (
	"go/types"
	"strings"
)

// ParamKind is the role of one parameter in a call.
type ParamKind int

const (
	PositionalOnly ParamKind = iota
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

// Parameter is one entry of a callable's signature.
type Parameter struct {
	Name    string
	Kind    ParamKind
	Type    string
	Default string
}

// Signature is an ordered parameter list plus an optional return type.
// For methods the receiver appears as the first parameter so renderers
// can suppress it the same way an implicit receiver is suppressed.
type Signature struct {
	Params []Parameter
	Return string
}

func newSignature(sig *types.Signature, m *Module) *Signature {
	s := &Signature{}
	if recv := sig.Recv(); recv != nil {
		name := recv.Name()
		if name == "" || name == "_" {
			name = "self"
		}
		s.Params = append(s.Params, Parameter{
			Name: name,
			Kind: PositionalOrKeyword,
			Type: m.TypeString(recv.Type()),
		})
	}
	n := sig.Params().Len()
	for i := 0; i < n; i++ {
		p := sig.Params().At(i)
		param := Parameter{
			Name: p.Name(),
			Kind: PositionalOrKeyword,
			Type: m.TypeString(p.Type()),
		}
		if param.Name == "" {
			param.Name = "_"
		}
		if sig.Variadic() && i == n-1 {
			param.Kind = VarPositional
			if slice, ok := p.Type().(*types.Slice); ok {
				param.Type = m.TypeString(slice.Elem())
			}
		}
		s.Params = append(s.Params, param)
	}
	switch results := sig.Results(); results.Len() {
	case 0:
	case 1:
		s.Return = m.TypeString(results.At(0).Type())
	default:
		parts := make([]string, results.Len())
		for i := range parts {
			parts[i] = m.TypeString(results.At(i).Type())
		}
		s.Return = "(" + strings.Join(parts, ", ") + ")"
	}
	return s
}

// FormatParameter renders one parameter. Type and default values are
// embedded only when typeComments is set.
func FormatParameter(p Parameter, typeComments bool) string {
	formatted := p.Name
	if p.Type != "" && typeComments {
		formatted += ": " + p.Type
	}
	if p.Default != "" {
		if p.Type != "" && typeComments {
			formatted += " = " + p.Default
		} else {
			formatted += "=" + p.Default
		}
	}
	switch p.Kind {
	case VarPositional:
		formatted = "*" + formatted
	case VarKeyword:
		formatted = "**" + formatted
	}
	return formatted
}

// Format renders the full call form. Positional-only parameters are
// closed by a lone "/" marker; a lone "*" precedes the first
// keyword-only parameter unless a var-positional parameter already
// appeared.
func (s *Signature) Format(typeComments bool) string {
	var parts []string
	renderPosOnly := false
	renderKwOnly := true
	for _, p := range s.Params {
		if p.Kind == PositionalOnly {
			renderPosOnly = true
		} else if renderPosOnly {
			parts = append(parts, "/")
			renderPosOnly = false
		}
		if p.Kind == VarPositional {
			renderKwOnly = false
		} else if p.Kind == KeywordOnly && renderKwOnly {
			parts = append(parts, "*")
			renderKwOnly = false
		}
		parts = append(parts, FormatParameter(p, typeComments))
	}
	if renderPosOnly {
		parts = append(parts, "/")
	}
	rendered := "(" + strings.Join(parts, ", ") + ")"
	if s.Return != "" && typeComments {
		rendered += " -> " + s.Return
	}
	return rendered
}
