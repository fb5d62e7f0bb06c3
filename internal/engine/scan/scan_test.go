package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelscan/internal/engine/parser"
	"modelscan/internal/engine/rules"
)

func testRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	return rules.Compile(rules.Document{
		ExactMatches:    []string{"gpt-4o", "claude-sonnet-4-5"},
		PartialPatterns: []string{"gpt-", "claude-"},
		ModelNameParts:  []string{"gpt", "-4o", "sonnet"},
		APICallPatterns: rules.APICallPatterns{
			FunctionNames:  []string{"chat.completions.create", "messages.create", "generate", "infer"},
			ParameterNames: []string{"model", "model_name"},
		},
	}, rules.Options{})
}

func scanSource(t *testing.T, path, src string, rs *rules.RuleSet) *Result {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	p := parser.NewParser(loader)
	file, err := p.Parse(path, []byte(src))
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return File(file, rs)
}

func ofType(findings []Finding, ft FindingType) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Type == ft {
			out = append(out, f)
		}
	}
	return out
}

func assignmentTo(t *testing.T, findings []Finding, variable string, line int) Finding {
	t.Helper()
	for _, f := range findings {
		if f.Type == TypeVariableAssignment && f.Variable == variable && f.Line == line {
			return f
		}
	}
	t.Fatalf("no variable_assignment finding for %q at line %d in %+v", variable, line, findings)
	return Finding{}
}

func TestLiteralFinding(t *testing.T) {
	res := scanSource(t, "app.js", `const model = "gpt-4o";`, testRules(t))

	literals := ofType(res.Findings, TypeStringLiteral)
	require.Len(t, literals, 1)
	assert.Equal(t, "gpt-4o", literals[0].Model)
	assert.Equal(t, 1, literals[0].Line)
	assert.Equal(t, 15, literals[0].Column)
	assert.Equal(t, `const model = "gpt-4o";`, literals[0].Code)
	assert.Equal(t, "app.js", literals[0].File)

	f := assignmentTo(t, res.Findings, "model", 1)
	assert.Equal(t, "gpt-4o", f.Model)
	assert.Equal(t, "gpt-4o", f.AssignedValue)
	assert.Equal(t, 7, f.Column)
}

func TestLiteralClassification(t *testing.T) {
	src := `
const exact = "gpt-4o";
const partial = "gpt-4o-audio-preview";
const part = "-4o";
const nothing = "hello world";
`
	res := scanSource(t, "classify.js", src, testRules(t))
	literals := ofType(res.Findings, TypeStringLiteral)
	require.Len(t, literals, 3)

	assert.Equal(t, "gpt-4o", literals[0].Model)
	assert.Empty(t, literals[0].Pattern)

	assert.Equal(t, "gpt-4o-audio-preview", literals[1].Model)
	assert.Equal(t, "gpt-", literals[1].Pattern)

	assert.Equal(t, "-4o", literals[2].Model)
	assert.True(t, literals[2].IsModelPart)
	assert.NotEmpty(t, literals[2].Note)
}

func TestConcatenationResolvesLikeTemplate(t *testing.T) {
	binary := `
const a = 'gpt';
const b = a + '-4o';
`
	template := "\nconst a = 'gpt';\nconst b = `${a}-4o`;\n"

	resBinary := scanSource(t, "binary.js", binary, testRules(t))
	resTemplate := scanSource(t, "template.js", template, testRules(t))

	fb := assignmentTo(t, resBinary.Findings, "b", 3)
	ft := assignmentTo(t, resTemplate.Findings, "b", 3)

	// Construction-method independence: both forms resolve to the same
	// model string.
	assert.Equal(t, "gpt-4o", fb.Model)
	assert.Equal(t, "gpt-4o", ft.Model)
	assert.Equal(t, fb.Model, ft.Model)

	assert.True(t, fb.IsBinaryConstruction)
	assert.Equal(t, []string{"gpt", "-4o"}, fb.Components)
	assert.Equal(t, "gpt-4o", fb.AssignedValue)

	assert.True(t, ft.IsTemplateConstruction)
	assert.Equal(t, []string{"a"}, ft.TemplateVariables)

	concats := ofType(resBinary.Findings, TypeStringConcatenation)
	require.Len(t, concats, 1)
	assert.Equal(t, "gpt-4o", concats[0].Model)
	assert.True(t, concats[0].IsBinaryConstruction)
}

func TestChainEmitsSingleConcatenationFinding(t *testing.T) {
	res := scanSource(t, "chain.js", `const x = 'g' + 'pt' + '-4o';`, testRules(t))

	concats := ofType(res.Findings, TypeStringConcatenation)
	require.Len(t, concats, 1)
	assert.Equal(t, []string{"g", "pt", "-4o"}, concats[0].Components)
	assert.Equal(t, "gpt-4o", concats[0].Model)
}

func TestSelfReferencingAssignment(t *testing.T) {
	src := `
model = "gpt-"
model = model + "4o"
`
	res := scanSource(t, "self.py", src, testRules(t))

	f := assignmentTo(t, res.Findings, "model", 3)
	assert.Equal(t, "gpt-4o", f.Model)
	assert.True(t, f.IsBinaryConstruction)
	assert.Equal(t, []string{"gpt-", "4o"}, f.Components)
}

func TestPythonFStringWithUsage(t *testing.T) {
	src := `
version = "4o"
model = f"gpt-{version}"
client.chat.completions.create(model=model)
`
	res := scanSource(t, "fstring.py", src, testRules(t))

	f := assignmentTo(t, res.Findings, "model", 3)
	assert.Equal(t, "gpt-4o", f.Model)
	assert.True(t, f.IsTemplateConstruction)
	assert.Equal(t, []string{"version"}, f.TemplateVariables)

	require.Equal(t, 1, f.UsageCount)
	require.Len(t, f.UsageLocations, 1)
	u := f.UsageLocations[0]
	assert.Equal(t, 4, u.Line)
	assert.Equal(t, "client.chat.completions.create", u.Function)
	assert.Equal(t, "model", u.Parameter)
	assert.True(t, u.IsAPICall)
	assert.Equal(t, 1, f.APICallCount)
	assert.Equal(t, "client.chat.completions.create(model=model)", u.Context)
}

func TestCompoundAssignmentAppendsFindings(t *testing.T) {
	src := `
model = "gpt-"
model += "4o"
model += "-mini"
`
	res := scanSource(t, "compound.py", src, testRules(t))

	first := assignmentTo(t, res.Findings, "model", 2)
	assert.Equal(t, "gpt-", first.Model)
	assert.Equal(t, "gpt-", first.Pattern)
	assert.False(t, first.IsCompoundAssignment)

	second := assignmentTo(t, res.Findings, "model", 3)
	assert.Equal(t, "gpt-4o", second.Model)
	assert.Equal(t, "gpt-4o", second.AssignedValue)
	assert.True(t, second.IsCompoundAssignment)

	third := assignmentTo(t, res.Findings, "model", 4)
	assert.Equal(t, "gpt-4o-mini", third.Model)
	assert.Equal(t, "gpt-", third.Pattern)
	assert.True(t, third.IsCompoundAssignment)

	// Earlier findings survive later += steps untouched.
	assignments := ofType(res.Findings, TypeVariableAssignment)
	assert.Len(t, assignments, 3)
}

func TestForwardReferenceStaysUnresolved(t *testing.T) {
	src := `
const b = later + '-4o';
const later = 'gpt';
`
	res := scanSource(t, "forward.js", src, testRules(t))

	f := assignmentTo(t, res.Findings, "b", 2)
	assert.Equal(t, ConstructedModel, f.Model)
	assert.True(t, f.IsBinaryConstruction)
	assert.Equal(t, []string{"${later}", "-4o"}, f.Components)
	assert.Equal(t, "later + '-4o'", f.AssignedValue)
}

func TestTemplateWithUnresolvableExpression(t *testing.T) {
	res := scanSource(t, "expr.js", "const m = `gpt-${pick()}`;", testRules(t))

	f := assignmentTo(t, res.Findings, "m", 1)
	assert.Equal(t, ConstructedModel, f.Model)
	assert.Equal(t, "gpt-", f.Pattern)
	assert.Equal(t, []string{"gpt-", "${pick()}"}, f.Components)
}

func TestUsageWindowsPerGeneration(t *testing.T) {
	src := `
model = "gpt-4o"
helper(model)
model = "claude-sonnet-4-5"
client.messages.create(model=model)
generate(model)
`
	res := scanSource(t, "windows.py", src, testRules(t))

	first := assignmentTo(t, res.Findings, "model", 2)
	require.Equal(t, 1, first.UsageCount)
	assert.Equal(t, 3, first.UsageLocations[0].Line)
	assert.Equal(t, "helper", first.UsageLocations[0].Function)
	assert.False(t, first.UsageLocations[0].IsAPICall)
	assert.Zero(t, first.APICallCount)

	second := assignmentTo(t, res.Findings, "model", 4)
	require.Equal(t, 2, second.UsageCount)
	assert.Equal(t, 2, second.APICallCount)
	assert.Equal(t, 5, second.UsageLocations[0].Line)
	assert.Equal(t, 6, second.UsageLocations[1].Line)
	assert.True(t, second.UsageLocations[0].IsAPICall)
	assert.Equal(t, "model", second.UsageLocations[0].Parameter)
	assert.True(t, second.UsageLocations[1].IsAPICall)
	assert.Empty(t, second.UsageLocations[1].Parameter)
}

func TestEmptyRuleSetYieldsNoFindings(t *testing.T) {
	empty := rules.Compile(rules.Document{}, rules.Options{})
	src := `
model = "gpt-4o"
client.chat.completions.create(model=model)
`
	res := scanSource(t, "empty.py", src, empty)
	assert.Empty(t, res.Findings)
}

func TestCaseFolding(t *testing.T) {
	src := `const m = "GPT-4O";`

	res := scanSource(t, "fold.js", src, testRules(t))
	literals := ofType(res.Findings, TypeStringLiteral)
	require.Len(t, literals, 1)
	// Exact findings report the canonical rule text.
	assert.Equal(t, "gpt-4o", literals[0].Model)

	sensitive := rules.Compile(rules.Document{ExactMatches: []string{"gpt-4o"}}, rules.Options{CaseSensitive: true})
	res = scanSource(t, "fold.js", src, sensitive)
	assert.Empty(t, res.Findings)
}

func TestGoConstAndUsage(t *testing.T) {
	src := `package main

const model = "gpt-4o"

func main() {
	generate(model)
}
`
	res := scanSource(t, "main.go", src, testRules(t))

	f := assignmentTo(t, res.Findings, "model", 3)
	assert.Equal(t, "gpt-4o", f.Model)
	require.Equal(t, 1, f.UsageCount)
	assert.Equal(t, 6, f.UsageLocations[0].Line)
	assert.Equal(t, "generate", f.UsageLocations[0].Function)
	assert.True(t, f.UsageLocations[0].IsAPICall)
}

func TestGoShortVarAndCompound(t *testing.T) {
	src := `package main

func pick() string {
	model := "gpt-"
	model += "4o"
	return model
}
`
	res := scanSource(t, "pick.go", src, testRules(t))

	first := assignmentTo(t, res.Findings, "model", 4)
	assert.Equal(t, "gpt-", first.Model)

	second := assignmentTo(t, res.Findings, "model", 5)
	assert.Equal(t, "gpt-4o", second.Model)
	assert.True(t, second.IsCompoundAssignment)
}

func TestJavaDeclarationAndUsage(t *testing.T) {
	src := `class Client {
    void run() {
        String model = "gpt-4o";
        api.generate(model);
    }
}
`
	res := scanSource(t, "Client.java", src, testRules(t))

	f := assignmentTo(t, res.Findings, "model", 3)
	assert.Equal(t, "gpt-4o", f.Model)
	require.Equal(t, 1, f.UsageCount)
	assert.Equal(t, "api.generate", f.UsageLocations[0].Function)
	assert.True(t, f.UsageLocations[0].IsAPICall)
}

func TestRustLetAndAlias(t *testing.T) {
	src := `fn main() {
    let model = "gpt-4o";
    let alias = model;
    infer(model);
}
`
	res := scanSource(t, "main.rs", src, testRules(t))

	f := assignmentTo(t, res.Findings, "model", 2)
	assert.Equal(t, "gpt-4o", f.Model)
	require.Equal(t, 1, f.UsageCount)

	alias := assignmentTo(t, res.Findings, "alias", 3)
	assert.Equal(t, "gpt-4o", alias.Model)
	assert.Equal(t, "gpt-4o", alias.AssignedValue)
}

func TestTypeScriptSharesJavaScriptShapes(t *testing.T) {
	src := `
const model: string = "gpt-4o";
client.chat.completions.create({ model: model });
`
	res := scanSource(t, "client.ts", src, testRules(t))

	f := assignmentTo(t, res.Findings, "model", 2)
	assert.Equal(t, "gpt-4o", f.Model)
	require.Equal(t, 1, f.UsageCount)
	assert.Equal(t, "model", f.UsageLocations[0].Parameter)
	assert.True(t, f.UsageLocations[0].IsAPICall)
	assert.Equal(t, 1, f.APICallCount)
}

func TestIgnoredOperatorsAndTargets(t *testing.T) {
	src := `
count = 3
count -= 1
obj.model = "gpt-4o"
`
	res := scanSource(t, "ignored.py", src, testRules(t))

	// -= never extends a binding and member targets are not tracked, but
	// the literal on the member assignment still reports.
	assert.Empty(t, ofType(res.Findings, TypeVariableAssignment))
	literals := ofType(res.Findings, TypeStringLiteral)
	require.Len(t, literals, 1)
	assert.Equal(t, "gpt-4o", literals[0].Model)
}

func TestScanIsDeterministic(t *testing.T) {
	src := `
const a = 'gpt';
const b = a + '-4o';
client.chat.completions.create({ model: b });
`
	first := scanSource(t, "det.js", src, testRules(t))
	second := scanSource(t, "det.js", src, testRules(t))
	assert.Equal(t, first.Findings, second.Findings)
}

func TestSummarize(t *testing.T) {
	findings := []Finding{
		{Type: TypeStringLiteral, Model: "gpt-4o"},
		{Type: TypeStringLiteral, Model: "gpt-4o"},
		{Type: TypeVariableAssignment, Model: "claude-sonnet-4-5"},
		{Type: TypeStringConcatenation, Model: ConstructedModel},
	}
	s := Summarize(findings)

	assert.Equal(t, 2, s.StringLiterals)
	assert.Equal(t, 1, s.VariableAssignments)
	assert.Equal(t, 1, s.StringConcatenations)
	// Constructed placeholders are not model names; duplicates collapse.
	assert.Equal(t, []string{"claude-sonnet-4-5", "gpt-4o"}, s.ModelsFound)
}

func TestMergeKeepsResultOrder(t *testing.T) {
	a := &Result{File: "a.py", Findings: []Finding{{Type: TypeStringLiteral, Model: "gpt-4o", File: "a.py"}}}
	b := &Result{File: "b.py", Findings: []Finding{{Type: TypeStringLiteral, Model: "claude-sonnet-4-5", File: "b.py"}}}

	agg := Merge([]*Result{a, b})
	require.Len(t, agg.Findings, 2)
	assert.Equal(t, "a.py", agg.Findings[0].File)
	assert.Equal(t, "b.py", agg.Findings[1].File)
	assert.Equal(t, []string{"claude-sonnet-4-5", "gpt-4o"}, agg.Summary.ModelsFound)
}
