package scan

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"modelscan/internal/engine/parser"
	"modelscan/internal/engine/rules"
)

const partialNameNote = "Partial model name - may be used in concatenation"

// walker performs the single source-ordered pass over one syntax tree,
// recording bindings as it goes and emitting findings the moment their
// triggering node is visited.
type walker struct {
	file     *parser.ParsedFile
	rules    *rules.RuleSet
	dialect  *parser.Dialect
	source   []byte
	lines    []string
	table    *bindingTable
	findings []Finding
}

func newWalker(file *parser.ParsedFile, rs *rules.RuleSet) *walker {
	return &walker{
		file:    file,
		rules:   rs,
		dialect: file.Dialect,
		source:  file.Source,
		lines:   strings.Split(string(file.Source), "\n"),
		table:   newBindingTable(),
	}
}

func (w *walker) run() *Result {
	if root := w.file.Root(); root != nil {
		w.walk(root, false)
	}
	w.attachUsage()
	return &Result{File: w.file.Path, Language: w.file.Language, Findings: w.findings}
}

// walk dispatches node kinds to handlers and recurses. inChain marks nodes
// that are operands of an enclosing + chain, so a chain produces one
// finding at its root instead of one per nested operator node.
func (w *walker) walk(node *sitter.Node, inChain bool) {
	if node == nil {
		return
	}
	kind := node.Kind()
	d := w.dialect
	switch {
	case d.StringKinds[kind]:
		if w.hasSubstitution(node) {
			w.handleTemplate(node)
		} else {
			w.handleStringLiteral(node)
			// Plain literals are terminal: fragment and quote children
			// never produce findings of their own.
			return
		}
	case d.TemplateKinds[kind]:
		w.handleTemplate(node)
	case d.DeclarationKinds[kind]:
		w.handleDeclaration(node)
	case d.AssignmentKinds[kind]:
		w.handleAssignment(node)
	case d.AugmentedKinds[kind]:
		w.handleAugmented(node)
	case d.BinaryKinds[kind]:
		if !inChain {
			w.handleBinary(node)
		}
	case d.CallKinds[kind]:
		w.handleCall(node)
	}
	isBinary := d.BinaryKinds[kind]
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		w.walk(child, isBinary && d.BinaryKinds[child.Kind()])
	}
}

// --- string literals ---

func (w *walker) handleStringLiteral(node *sitter.Node) {
	cleaned := strings.TrimSpace(w.stringContent(node))
	if cleaned == "" {
		return
	}
	m, ok := w.rules.Match(cleaned)
	if !ok {
		return
	}
	line, col := w.position(node)
	f := Finding{
		Type:   TypeStringLiteral,
		File:   w.file.Path,
		Line:   line,
		Column: col,
		Code:   w.contextLine(node),
	}
	w.applyMatch(&f, m, cleaned)
	w.findings = append(w.findings, f)
}

// applyMatch fills the model fields from a classification: exact findings
// report the canonical name, partial and part findings report the string
// as written.
func (w *walker) applyMatch(f *Finding, m rules.Match, text string) {
	switch m.Class {
	case rules.ClassExact:
		f.Model = m.Model
	case rules.ClassPartial:
		f.Model = text
		f.Pattern = m.Pattern
	case rules.ClassModelPart:
		f.Model = text
		f.IsModelPart = true
		if f.Note == "" {
			f.Note = partialNameNote
		}
	}
}

// --- constructions (templates and + chains) ---

func (w *walker) handleTemplate(node *sitter.Node) {
	v := w.templateValue(node)
	if len(v.Parts) == 0 {
		return
	}
	w.emitConstruction(node, v)
}

func (w *walker) handleBinary(node *sitter.Node) {
	parts, ok := w.binaryParts(node)
	if !ok || len(parts) < 2 {
		return
	}
	w.emitConstruction(node, &Value{Kind: KindBinary, Parts: parts})
}

// emitConstruction reports a standalone construction. Fully resolvable
// constructions are matched on their flat string; unresolvable ones are
// reported as constructed only when a resolvable component matches the
// rule set.
func (w *walker) emitConstruction(node *sitter.Node, v *Value) {
	line, col := w.position(node)
	f := Finding{
		Type:       TypeStringConcatenation,
		File:       w.file.Path,
		Line:       line,
		Column:     col,
		Code:       w.contextLine(node),
		Components: v.Components(),
	}
	if v.Kind == KindTemplate {
		f.IsTemplateConstruction = true
		f.TemplateVariables = v.VariableNames()
	} else {
		f.IsBinaryConstruction = true
	}
	if resolved, ok := v.Resolve(); ok {
		cleaned := strings.TrimSpace(resolved)
		m, matched := w.rules.Match(cleaned)
		if !matched {
			return
		}
		f.Note = w.constructionNote(v)
		w.applyMatch(&f, m, cleaned)
	} else {
		ev, found := w.componentEvidence(v)
		if !found {
			return
		}
		f.Model = ConstructedModel
		if ev.Class == rules.ClassPartial {
			f.Pattern = ev.Pattern
		}
		f.Note = w.constructionNote(v)
	}
	w.findings = append(w.findings, f)
}

func (w *walker) constructionNote(v *Value) string {
	if v.Kind == KindTemplate {
		return "Model name constructed from template using: " + strings.Join(v.VariableNames(), ", ")
	}
	return "Model name constructed from: " + strings.Join(v.Components(), ", ")
}

// componentEvidence looks for a rule hit among the resolvable components
// of a construction that could not be flattened.
func (w *walker) componentEvidence(v *Value) (rules.Match, bool) {
	for _, p := range v.Parts {
		s, ok := p.resolve()
		if !ok {
			continue
		}
		if m, matched := w.rules.Match(strings.TrimSpace(s)); matched {
			return m, true
		}
	}
	return rules.Match{}, false
}

// --- declarations and assignments ---

func (w *walker) handleDeclaration(node *sitter.Node) {
	valueNode := node.ChildByFieldName("value")
	if valueNode == nil {
		return
	}
	if w.dialect.ExpressionListKinds[valueNode.Kind()] {
		names := w.directIdentifiers(node)
		values := w.listChildren(valueNode)
		for i := 0; i < len(names) && i < len(values); i++ {
			w.recordAssignment(names[i], values[i], node)
		}
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = node.ChildByFieldName("pattern")
	}
	if nameNode == nil || !w.dialect.IdentifierKinds[nameNode.Kind()] {
		return
	}
	w.recordAssignment(nameNode, valueNode, node)
}

func (w *walker) handleAssignment(node *sitter.Node) {
	op := "="
	if opNode := node.ChildByFieldName("operator"); opNode != nil {
		op = w.text(opNode)
	}
	if op != "=" && op != ":=" && op != "+=" {
		return
	}
	lefts := w.unwrapList(node.ChildByFieldName("left"))
	rights := w.unwrapList(node.ChildByFieldName("right"))
	for i := 0; i < len(lefts) && i < len(rights); i++ {
		if !w.dialect.IdentifierKinds[lefts[i].Kind()] {
			continue
		}
		if op == "+=" {
			w.recordCompound(lefts[i], rights[i], node)
		} else {
			w.recordAssignment(lefts[i], rights[i], node)
		}
	}
}

func (w *walker) handleAugmented(node *sitter.Node) {
	opNode := node.ChildByFieldName("operator")
	if opNode == nil || w.text(opNode) != "+=" {
		return
	}
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || !w.dialect.IdentifierKinds[left.Kind()] {
		return
	}
	w.recordCompound(left, right, node)
}

func (w *walker) recordAssignment(nameNode, valueNode, anchor *sitter.Node) {
	name := w.text(nameNode)
	v := w.buildValue(valueNode)
	line, _ := w.position(anchor)
	gen := w.table.assign(name, v, line)
	w.emitAssignment(anchor, name, v, valueNode, false, gen)
}

// recordCompound applies a += step. Only literal and identifier operands
// extend an accumulation; any other right-hand side leaves the binding
// untouched. A += against an unbound name is its first assignment.
func (w *walker) recordCompound(nameNode, valueNode, anchor *sitter.Node) {
	name := w.text(nameNode)
	step, ok := w.compoundStep(valueNode)
	if !ok {
		return
	}
	line, _ := w.position(anchor)
	prior := w.table.lookup(name)
	if prior == nil {
		v := w.buildValue(valueNode)
		gen := w.table.assign(name, v, line)
		w.emitAssignment(anchor, name, v, valueNode, true, gen)
		return
	}
	var parts []Part
	switch prior.value.Kind {
	case KindCompound:
		parts = append(parts, prior.value.Parts...)
	case KindLiteral:
		parts = append(parts, literalPart(prior.value.Text))
	default:
		if s, ok := prior.value.Resolve(); ok {
			parts = append(parts, literalPart(s))
		} else {
			parts = append(parts, variablePart(name, nil))
		}
	}
	parts = append(parts, step)
	v := &Value{Kind: KindCompound, Parts: parts}
	gen := w.table.assign(name, v, line)
	w.emitAssignment(anchor, name, v, valueNode, true, gen)
}

func (w *walker) compoundStep(valueNode *sitter.Node) (Part, bool) {
	kind := valueNode.Kind()
	switch {
	case w.dialect.StringKinds[kind] && !w.hasSubstitution(valueNode):
		return literalPart(w.stringContent(valueNode)), true
	case w.dialect.IdentifierKinds[kind]:
		name := w.text(valueNode)
		if gen := w.table.lookup(name); gen != nil {
			return variablePart(name, gen.value), true
		}
		return variablePart(name, nil), true
	default:
		return Part{}, false
	}
}

// emitAssignment reports the assignment when its value matches the rule
// set, and links the finding to the binding generation so usage collected
// later in the walk can be attached.
func (w *walker) emitAssignment(anchor *sitter.Node, name string, v *Value, valueNode *sitter.Node, compound bool, gen *generation) {
	line, col := w.position(anchor)
	f := Finding{
		Type:     TypeVariableAssignment,
		Variable: name,
		File:     w.file.Path,
		Line:     line,
		Column:   col,
		Code:     w.contextLine(anchor),
	}
	switch v.Kind {
	case KindTemplate:
		f.IsTemplateConstruction = true
		f.TemplateVariables = v.VariableNames()
		f.Components = v.Components()
		f.Note = w.constructionNote(v)
	case KindBinary:
		f.IsBinaryConstruction = true
		f.Components = v.Components()
		f.Note = "Model name constructed from binary expression: " + strings.Join(v.Components(), " + ")
	case KindCompound:
		f.Components = v.Components()
		f.Note = "Model name built with compound assignment (+=)"
	}
	if compound {
		f.IsCompoundAssignment = true
	}
	if resolved, ok := v.Resolve(); ok {
		cleaned := strings.TrimSpace(resolved)
		m, matched := w.rules.Match(cleaned)
		if !matched {
			return
		}
		f.AssignedValue = cleaned
		w.applyMatch(&f, m, cleaned)
	} else {
		ev, found := w.componentEvidence(v)
		if !found {
			return
		}
		f.Model = ConstructedModel
		if ev.Class == rules.ClassPartial {
			f.Pattern = ev.Pattern
		}
		f.AssignedValue = strings.TrimSpace(w.text(valueNode))
	}
	gen.findingIdx = len(w.findings)
	w.findings = append(w.findings, f)
}

// --- value construction ---

// buildValue models the right-hand side of an assignment. Identifier
// references collapse to their referent's flat value when it resolves;
// everything the tracker cannot model becomes Unresolved rather than a
// partial string.
func (w *walker) buildValue(node *sitter.Node) *Value {
	if node == nil {
		return unresolvedValue()
	}
	kind := node.Kind()
	switch {
	case kind == "parenthesized_expression":
		return w.buildValue(w.unparenthesize(node))
	case w.dialect.StringKinds[kind]:
		if w.hasSubstitution(node) {
			return w.templateValue(node)
		}
		return literalValue(w.stringContent(node))
	case w.dialect.TemplateKinds[kind]:
		return w.templateValue(node)
	case w.dialect.BinaryKinds[kind]:
		if parts, ok := w.binaryParts(node); ok {
			return &Value{Kind: KindBinary, Parts: parts}
		}
		return unresolvedValue()
	case w.dialect.IdentifierKinds[kind]:
		if gen := w.table.lookup(w.text(node)); gen != nil {
			if s, ok := gen.value.Resolve(); ok {
				return literalValue(s)
			}
		}
		return unresolvedValue()
	default:
		return unresolvedValue()
	}
}

// templateValue builds the part list of a template or interpolated string:
// fragment children become literal parts, substitution children become
// variable parts carrying a snapshot of the referent.
func (w *walker) templateValue(node *sitter.Node) *Value {
	var parts []Part
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		switch {
		case w.dialect.StringContentKinds[kind] || kind == "escape_sequence":
			parts = append(parts, literalPart(w.text(child)))
		case w.dialect.SubstitutionKinds[kind]:
			parts = append(parts, w.substitutionPart(child))
		}
	}
	return &Value{Kind: KindTemplate, Parts: parts}
}

// substitutionPart extracts the expression inside ${...} or {...}. Bare
// identifiers get a referent snapshot; any other expression is an
// unresolved part named by its source text.
func (w *walker) substitutionPart(sub *sitter.Node) Part {
	var expr *sitter.Node
	for i := uint(0); i < sub.ChildCount(); i++ {
		child := sub.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "${", "{", "}", "format_specifier", "format_spec", ":":
			continue
		}
		expr = child
		break
	}
	if expr == nil {
		return variablePart(strings.TrimSpace(w.text(sub)), nil)
	}
	if w.dialect.IdentifierKinds[expr.Kind()] {
		name := w.text(expr)
		if gen := w.table.lookup(name); gen != nil {
			return variablePart(name, gen.value)
		}
		return variablePart(name, nil)
	}
	return variablePart(strings.TrimSpace(w.text(expr)), nil)
}

// binaryParts flattens a chain of + operators into ordered parts. Chains
// containing any other operator are not string constructions and report
// false.
func (w *walker) binaryParts(node *sitter.Node) ([]Part, bool) {
	if w.operatorText(node) != "+" {
		return nil, false
	}
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil {
		return nil, false
	}
	parts := w.flattenOperand(left)
	parts = append(parts, w.flattenOperand(right)...)
	return parts, true
}

func (w *walker) operatorText(node *sitter.Node) string {
	if opNode := node.ChildByFieldName("operator"); opNode != nil {
		return w.text(opNode)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "+" {
			return "+"
		}
	}
	return ""
}

func (w *walker) flattenOperand(node *sitter.Node) []Part {
	kind := node.Kind()
	switch {
	case kind == "parenthesized_expression":
		if inner := w.unparenthesize(node); inner != nil {
			return w.flattenOperand(inner)
		}
	case w.dialect.BinaryKinds[kind]:
		if parts, ok := w.binaryParts(node); ok {
			return parts
		}
	case w.dialect.StringKinds[kind] && !w.hasSubstitution(node):
		return []Part{literalPart(w.stringContent(node))}
	case w.dialect.StringKinds[kind] || w.dialect.TemplateKinds[kind]:
		v := w.templateValue(node)
		if s, ok := v.Resolve(); ok {
			return []Part{literalPart(s)}
		}
	case w.dialect.IdentifierKinds[kind]:
		name := w.text(node)
		if gen := w.table.lookup(name); gen != nil {
			return []Part{variablePart(name, gen.value)}
		}
		return []Part{variablePart(name, nil)}
	}
	return []Part{variablePart(strings.TrimSpace(w.text(node)), nil)}
}

func (w *walker) unparenthesize(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if k := child.Kind(); k != "(" && k != ")" {
			return child
		}
	}
	return nil
}

// --- node helpers ---

func (w *walker) text(node *sitter.Node) string {
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint(len(w.source)) {
		return ""
	}
	return string(w.source[start:end])
}

func (w *walker) position(node *sitter.Node) (line, col int) {
	p := node.StartPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

func (w *walker) contextLine(node *sitter.Node) string {
	row := int(node.StartPosition().Row)
	if row < 0 || row >= len(w.lines) {
		return ""
	}
	return strings.TrimSpace(w.lines[row])
}

func (w *walker) hasSubstitution(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && w.dialect.SubstitutionKinds[child.Kind()] {
			return true
		}
	}
	return false
}

// stringContent extracts the text between the quotes: the concatenation of
// the grammar's content and escape children when it exposes them, otherwise
// the node text with the dialect's quote characters trimmed.
func (w *walker) stringContent(node *sitter.Node) string {
	if len(w.dialect.StringContentKinds) == 0 {
		return strings.Trim(w.text(node), w.dialect.QuoteCutset)
	}
	var b strings.Builder
	found := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if w.dialect.StringContentKinds[child.Kind()] {
			b.WriteString(w.text(child))
			found = true
		}
	}
	if found {
		return b.String()
	}
	return strings.Trim(w.text(node), w.dialect.QuoteCutset)
}

func (w *walker) unwrapList(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	if w.dialect.ExpressionListKinds[node.Kind()] {
		return w.listChildren(node)
	}
	return []*sitter.Node{node}
}

func (w *walker) listChildren(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() == "," {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (w *walker) directIdentifiers(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && w.dialect.IdentifierKinds[child.Kind()] {
			out = append(out, child)
		}
	}
	return out
}

// attachUsage copies each generation's collected usage onto the finding
// that generation produced, if any.
func (w *walker) attachUsage() {
	for _, b := range w.table.vars {
		for _, gen := range b.gens {
			if gen.findingIdx < 0 || len(gen.usages) == 0 {
				continue
			}
			f := &w.findings[gen.findingIdx]
			f.UsageLocations = append(f.UsageLocations, gen.usages...)
			f.UsageCount = len(f.UsageLocations)
			api := 0
			for _, u := range f.UsageLocations {
				if u.IsAPICall {
					api++
				}
			}
			f.APICallCount = api
		}
	}
}
