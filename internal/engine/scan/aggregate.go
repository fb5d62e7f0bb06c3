package scan

import "sort"

// Summary is the per-type tally over a set of findings. ModelsFound lists
// distinct resolved model names; the constructed placeholder is excluded
// because it is not a model name.
type Summary struct {
	StringLiterals       int      `json:"string_literals"`
	VariableAssignments  int      `json:"variable_assignments"`
	StringConcatenations int      `json:"string_concatenations"`
	ModelsFound          []string `json:"models_found"`
}

func Summarize(findings []Finding) Summary {
	s := Summary{ModelsFound: []string{}}
	seen := make(map[string]bool)
	for _, f := range findings {
		switch f.Type {
		case TypeStringLiteral:
			s.StringLiterals++
		case TypeVariableAssignment:
			s.VariableAssignments++
		case TypeStringConcatenation:
			s.StringConcatenations++
		}
		if f.Model == "" || f.Model == ConstructedModel || seen[f.Model] {
			continue
		}
		seen[f.Model] = true
		s.ModelsFound = append(s.ModelsFound, f.Model)
	}
	sort.Strings(s.ModelsFound)
	return s
}

// Aggregate is the flattened output of a whole scan.
type Aggregate struct {
	Findings []Finding
	Summary  Summary
}

// Merge concatenates per-file results in the order given. Callers order
// results by path so the merged finding list is deterministic regardless
// of how files were scheduled.
func Merge(results []*Result) Aggregate {
	var findings []Finding
	for _, r := range results {
		if r == nil {
			continue
		}
		findings = append(findings, r.Findings...)
	}
	return Aggregate{Findings: findings, Summary: Summarize(findings)}
}
