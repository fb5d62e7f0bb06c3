// Package scan walks parsed syntax trees looking for AI model identifiers:
// string literals, variables assigned from them, strings built up by
// templates, + chains and += accumulation, and the call sites those
// variables later flow into. One walker pass per file; bindings never leak
// across files.
package scan

import (
	"modelscan/internal/engine/parser"
	"modelscan/internal/engine/rules"
)

// File analyzes one parsed file against a compiled rule set.
func File(file *parser.ParsedFile, rs *rules.RuleSet) *Result {
	return newWalker(file, rs).run()
}
