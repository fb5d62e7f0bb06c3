package rules

import "strings"

// Classification orders matter: Match short-circuits exact before partial
// before model_part, so ties are impossible.
type Classification int

const (
	ClassNone Classification = iota
	ClassExact
	ClassPartial
	ClassModelPart
)

func (c Classification) String() string {
	switch c {
	case ClassExact:
		return "exact"
	case ClassPartial:
		return "partial"
	case ClassModelPart:
		return "model_part"
	default:
		return "none"
	}
}

// Match is the result of classifying one resolved string value.
type Match struct {
	Class Classification
	// Model is the reportable identifier: the canonical rule text for exact
	// matches, otherwise the value as written in source.
	Model string
	// Pattern is the partial pattern that hit, empty for other classes.
	Pattern string
}

// Match classifies a resolved string value against the rule set:
// exact match, then partial (first pattern in rule order wins), then
// model-name part. A part hit means the value is a fragment likely to be
// completed by later concatenation; callers report it with a note instead
// of discarding it.
func (rs *RuleSet) Match(s string) (Match, bool) {
	if s == "" {
		return Match{}, false
	}
	folded := rs.fold(s)
	if canonical, ok := rs.exact[folded]; ok {
		return Match{Class: ClassExact, Model: canonical}, true
	}
	for i, p := range rs.partials {
		if p != "" && strings.Contains(folded, p) {
			return Match{Class: ClassPartial, Model: s, Pattern: rs.partialCanon[i]}, true
		}
	}
	if _, ok := rs.parts[folded]; ok {
		return Match{Class: ClassModelPart, Model: s}, true
	}
	return Match{}, false
}
