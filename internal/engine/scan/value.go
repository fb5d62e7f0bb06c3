package scan

import "strings"

// ValueKind tags the closed set of value shapes the tracker models.
type ValueKind int

const (
	KindUnresolved ValueKind = iota
	KindLiteral
	KindTemplate
	KindBinary
	KindCompound
)

func (k ValueKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindTemplate:
		return "template"
	case KindBinary:
		return "binary"
	case KindCompound:
		return "compound"
	default:
		return "unresolved"
	}
}

// Value is one tracked string value: a literal, a construction assembled
// from ordered parts, or Unresolved. Values are immutable once built;
// reassignment creates a new Value rather than mutating the old one, so a
// snapshot taken at construction time stays valid.
type Value struct {
	Kind ValueKind
	Text string // KindLiteral only
	// Parts holds template segments, binary operands, or compound append
	// steps, in source order.
	Parts []Part
}

type PartKind int

const (
	PartLiteral PartKind = iota
	PartVariable
)

// Part is one segment/operand/step of a construction. A variable part
// carries a snapshot of its referent's value as of the construction's
// source position; Resolved == nil means the name had no binding strictly
// before that point and the reference is unresolved.
type Part struct {
	Kind     PartKind
	Text     string // PartLiteral
	Name     string // PartVariable: the reference as written
	Resolved *Value // PartVariable: referent snapshot, nil when unknown
}

func literalValue(text string) *Value {
	return &Value{Kind: KindLiteral, Text: text}
}

func unresolvedValue() *Value {
	return &Value{Kind: KindUnresolved}
}

func literalPart(text string) Part {
	return Part{Kind: PartLiteral, Text: text}
}

func variablePart(name string, resolved *Value) Part {
	return Part{Kind: PartVariable, Name: name, Resolved: resolved}
}

// Resolve reduces the value to a flat string. It fails as soon as any link
// in the chain is unresolved, instead of coercing the construction to a
// partial string.
func (v *Value) Resolve() (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.Kind {
	case KindLiteral:
		return v.Text, true
	case KindUnresolved:
		return "", false
	case KindTemplate, KindBinary, KindCompound:
		var b strings.Builder
		for _, p := range v.Parts {
			s, ok := p.resolve()
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	default:
		return "", false
	}
}

func (p Part) resolve() (string, bool) {
	if p.Kind == PartLiteral {
		return p.Text, true
	}
	if p.Resolved == nil {
		return "", false
	}
	return p.Resolved.Resolve()
}

// Components renders each part for display: resolved text where known,
// otherwise the reference in ${name} form.
func (v *Value) Components() []string {
	if v == nil || len(v.Parts) == 0 {
		return nil
	}
	out := make([]string, 0, len(v.Parts))
	for _, p := range v.Parts {
		out = append(out, p.display())
	}
	return out
}

func (p Part) display() string {
	if p.Kind == PartLiteral {
		return p.Text
	}
	if p.Resolved != nil {
		if s, ok := p.Resolved.Resolve(); ok {
			return s
		}
	}
	return "${" + p.Name + "}"
}

// VariableNames lists the variable references inside a construction, in
// order, for the template_variables field.
func (v *Value) VariableNames() []string {
	if v == nil {
		return nil
	}
	var names []string
	for _, p := range v.Parts {
		if p.Kind == PartVariable {
			names = append(names, p.Name)
		}
	}
	return names
}
