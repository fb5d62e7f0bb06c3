package rules

import (
	"strings"
)

// Document is the on-disk rule file shape, accepted as JSON, YAML, or TOML.
type Document struct {
	ExactMatches    []string        `json:"exact_matches" yaml:"exact_matches" toml:"exact_matches"`
	PartialPatterns []string        `json:"partial_patterns" yaml:"partial_patterns" toml:"partial_patterns"`
	ModelNameParts  []string        `json:"model_name_parts" yaml:"model_name_parts" toml:"model_name_parts"`
	APICallPatterns APICallPatterns `json:"api_call_patterns" yaml:"api_call_patterns" toml:"api_call_patterns"`
}

type APICallPatterns struct {
	FunctionNames  []string `json:"function_names" yaml:"function_names" toml:"function_names"`
	ParameterNames []string `json:"parameter_names" yaml:"parameter_names" toml:"parameter_names"`
}

type Options struct {
	// CaseSensitive switches matching from the default case-insensitive
	// comparison to exact byte comparison.
	CaseSensitive bool
}

// RuleSet is the compiled, immutable form of a Document. All lookup tables
// are folded once at compile time; a RuleSet is safe for concurrent use.
type RuleSet struct {
	doc  Document
	opts Options

	exact        map[string]string // folded -> canonical rule text
	partials     []string          // folded, in rule order
	partialCanon []string          // canonical text, same order
	parts        map[string]string // folded -> canonical
	funcPatterns []string          // folded, in rule order
	funcCanon    []string
	paramNames   map[string]string // folded -> canonical
}

func Compile(doc Document, opts Options) *RuleSet {
	rs := &RuleSet{
		doc:        doc,
		opts:       opts,
		exact:      make(map[string]string, len(doc.ExactMatches)),
		parts:      make(map[string]string, len(doc.ModelNameParts)),
		paramNames: make(map[string]string, len(doc.APICallPatterns.ParameterNames)),
	}
	for _, m := range doc.ExactMatches {
		rs.exact[rs.fold(m)] = m
	}
	for _, p := range doc.PartialPatterns {
		rs.partials = append(rs.partials, rs.fold(p))
		rs.partialCanon = append(rs.partialCanon, p)
	}
	for _, p := range doc.ModelNameParts {
		rs.parts[rs.fold(p)] = p
	}
	for _, f := range doc.APICallPatterns.FunctionNames {
		rs.funcPatterns = append(rs.funcPatterns, rs.fold(f))
		rs.funcCanon = append(rs.funcCanon, f)
	}
	for _, p := range doc.APICallPatterns.ParameterNames {
		rs.paramNames[rs.fold(p)] = p
	}
	return rs
}

func (rs *RuleSet) fold(s string) string {
	if rs.opts.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Empty reports whether the rule set can never classify a value. An empty
// rule set is valid and simply yields no findings.
func (rs *RuleSet) Empty() bool {
	return len(rs.exact) == 0 && len(rs.partials) == 0 && len(rs.parts) == 0
}

func (rs *RuleSet) CaseSensitive() bool { return rs.opts.CaseSensitive }

// Doc returns a copy of the source document, for display and round-tripping.
func (rs *RuleSet) Doc() Document {
	out := Document{
		ExactMatches:    append([]string(nil), rs.doc.ExactMatches...),
		PartialPatterns: append([]string(nil), rs.doc.PartialPatterns...),
		ModelNameParts:  append([]string(nil), rs.doc.ModelNameParts...),
	}
	out.APICallPatterns.FunctionNames = append([]string(nil), rs.doc.APICallPatterns.FunctionNames...)
	out.APICallPatterns.ParameterNames = append([]string(nil), rs.doc.APICallPatterns.ParameterNames...)
	return out
}

// MatchFunction reports whether the callee name text matches any configured
// function-name pattern (substring containment) and returns the pattern.
func (rs *RuleSet) MatchFunction(name string) (string, bool) {
	folded := rs.fold(name)
	for i, p := range rs.funcPatterns {
		if strings.Contains(folded, p) {
			return rs.funcCanon[i], true
		}
	}
	return "", false
}

// MatchParameter reports whether an argument name equals a configured
// parameter-name pattern and returns the canonical pattern text.
func (rs *RuleSet) MatchParameter(name string) (string, bool) {
	canonical, ok := rs.paramNames[rs.fold(name)]
	return canonical, ok
}
