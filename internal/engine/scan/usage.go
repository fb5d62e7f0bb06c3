package scan

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// handleCall inspects a call's arguments for references to tracked
// variables. Direct identifier arguments count for any call; named
// arguments count when the parameter name is one the rule set knows.
func (w *walker) handleCall(node *sitter.Node) {
	callee := w.calleeText(node)
	if callee == "" {
		return
	}
	_, isAPI := w.rules.MatchFunction(callee)
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	callLine, _ := w.position(node)
	ctx := w.contextLine(node)
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		kind := arg.Kind()
		switch {
		case w.dialect.IdentifierKinds[kind]:
			_, col := w.position(arg)
			w.recordUsage(w.text(arg), UsageLocation{
				Line:      callLine,
				Column:    col,
				Context:   ctx,
				Function:  callee,
				IsAPICall: isAPI,
			})
		case w.dialect.NamedArgKinds[kind]:
			w.inspectNamedArg(arg, callee, isAPI, callLine, ctx)
		case w.dialect.ObjectKinds[kind]:
			for j := uint(0); j < arg.ChildCount(); j++ {
				entry := arg.Child(j)
				if entry != nil && w.dialect.NamedArgKinds[entry.Kind()] {
					w.inspectNamedArg(entry, callee, isAPI, callLine, ctx)
				}
			}
		}
	}
}

// inspectNamedArg handles one key/value or keyword argument. Only bare
// identifier values tie back to a binding.
func (w *walker) inspectNamedArg(arg *sitter.Node, callee string, isAPI bool, callLine int, ctx string) {
	key := arg.ChildByFieldName("key")
	if key == nil {
		key = arg.ChildByFieldName("name")
	}
	value := arg.ChildByFieldName("value")
	if key == nil || value == nil {
		return
	}
	kk := key.Kind()
	if !w.dialect.IdentifierKinds[kk] && !w.dialect.PropertyKinds[kk] && !w.dialect.StringKinds[kk] {
		return
	}
	keyText := strings.Trim(w.text(key), w.dialect.QuoteCutset+" ")
	if _, ok := w.rules.MatchParameter(keyText); !ok {
		return
	}
	if !w.dialect.IdentifierKinds[value.Kind()] {
		return
	}
	_, col := w.position(arg)
	w.recordUsage(w.text(value), UsageLocation{
		Line:      callLine,
		Column:    col,
		Context:   ctx,
		Function:  callee,
		Parameter: keyText,
		IsAPICall: isAPI,
	})
}

// recordUsage attaches a usage to the current generation of name. Usage of
// names with no binding yet is dropped: there is nothing to correlate it
// with.
func (w *walker) recordUsage(name string, loc UsageLocation) {
	gen := w.table.lookup(name)
	if gen == nil {
		return
	}
	loc.File = w.file.Path
	gen.usages = append(gen.usages, loc)
}

// calleeText renders the called expression: the function field when the
// grammar has one, otherwise receiver.name for method invocations.
func (w *walker) calleeText(node *sitter.Node) string {
	if fn := node.ChildByFieldName("function"); fn != nil {
		return w.text(fn)
	}
	name := node.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	if obj := node.ChildByFieldName("object"); obj != nil {
		return w.text(obj) + "." + w.text(name)
	}
	return w.text(name)
}
