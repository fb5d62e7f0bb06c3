package parser

// Dialect maps one grammar's node kinds onto the fixed set of syntactic
// shapes the tree walker understands. Everything downstream of the walker is
// language-neutral; adding a language means adding a grammar binding in the
// loader and one table here.
type Dialect struct {
	Language string

	// String literal node kinds. Literal nodes are terminal for the walk:
	// their quote and fragment children are not dispatched again.
	StringKinds map[string]bool
	// Named nodes carrying literal text inside a string or template node.
	StringContentKinds map[string]bool
	// Dedicated template-string kinds (JavaScript-family). Languages whose
	// interpolated strings reuse the plain string kind (Python f-strings)
	// mark them via SubstitutionKinds children instead.
	TemplateKinds map[string]bool
	// Interpolation holes inside a template (`${...}`, `{...}`).
	SubstitutionKinds map[string]bool

	// Declarator-shaped bindings: name/value (or pattern/value) fields.
	DeclarationKinds map[string]bool
	// Assignment-shaped bindings: left/right fields. When the node carries
	// an operator field, "+=" routes to the compound path and any operator
	// other than "=" and "+=" is ignored.
	AssignmentKinds map[string]bool
	// Dedicated compound-assignment kinds (JS/Python/Rust).
	AugmentedKinds map[string]bool

	BinaryKinds map[string]bool
	CallKinds   map[string]bool

	// Named-argument carriers: object `pair`s in JavaScript-family calls,
	// `keyword_argument`s in Python. Empty for languages without them.
	NamedArgKinds map[string]bool
	// Container kinds holding NamedArgKinds children (JS object literals).
	ObjectKinds map[string]bool

	IdentifierKinds map[string]bool
	// Kinds accepted as a named-argument key, besides plain identifiers
	// and quoted strings.
	PropertyKinds map[string]bool
	// Go assignment sides arrive as expression_list nodes that need
	// pairwise unwrapping.
	ExpressionListKinds map[string]bool

	// Fallback cutset for stripping string delimiters when the grammar has
	// no named content node (Go).
	QuoteCutset string
}

func kinds(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var javascriptDialect = &Dialect{
	Language:            "javascript",
	StringKinds:         kinds("string"),
	StringContentKinds:  kinds("string_fragment", "escape_sequence"),
	TemplateKinds:       kinds("template_string"),
	SubstitutionKinds:   kinds("template_substitution"),
	DeclarationKinds:    kinds("variable_declarator"),
	AssignmentKinds:     kinds("assignment_expression"),
	AugmentedKinds:      kinds("augmented_assignment_expression"),
	BinaryKinds:         kinds("binary_expression"),
	CallKinds:           kinds("call_expression"),
	NamedArgKinds:       kinds("pair"),
	ObjectKinds:         kinds("object"),
	IdentifierKinds:     kinds("identifier"),
	PropertyKinds:       kinds("property_identifier"),
	ExpressionListKinds: kinds(),
	QuoteCutset:         "'\"`",
}

var pythonDialect = &Dialect{
	Language:            "python",
	StringKinds:         kinds("string"),
	StringContentKinds:  kinds("string_content", "escape_sequence"),
	TemplateKinds:       kinds(),
	SubstitutionKinds:   kinds("interpolation"),
	DeclarationKinds:    kinds(),
	AssignmentKinds:     kinds("assignment"),
	AugmentedKinds:      kinds("augmented_assignment"),
	BinaryKinds:         kinds("binary_operator"),
	CallKinds:           kinds("call"),
	NamedArgKinds:       kinds("keyword_argument"),
	ObjectKinds:         kinds(),
	IdentifierKinds:     kinds("identifier"),
	PropertyKinds:       kinds(),
	ExpressionListKinds: kinds(),
	QuoteCutset:         "'\"",
}

var goDialect = &Dialect{
	Language:            "go",
	StringKinds:         kinds("interpreted_string_literal", "raw_string_literal"),
	StringContentKinds:  kinds(),
	TemplateKinds:       kinds(),
	SubstitutionKinds:   kinds(),
	DeclarationKinds:    kinds("var_spec", "const_spec"),
	AssignmentKinds:     kinds("short_var_declaration", "assignment_statement"),
	AugmentedKinds:      kinds(),
	BinaryKinds:         kinds("binary_expression"),
	CallKinds:           kinds("call_expression"),
	NamedArgKinds:       kinds(),
	ObjectKinds:         kinds(),
	IdentifierKinds:     kinds("identifier"),
	PropertyKinds:       kinds("field_identifier"),
	ExpressionListKinds: kinds("expression_list"),
	QuoteCutset:         "\"`",
}

var javaDialect = &Dialect{
	Language:            "java",
	StringKinds:         kinds("string_literal"),
	StringContentKinds:  kinds("string_fragment", "escape_sequence"),
	TemplateKinds:       kinds(),
	SubstitutionKinds:   kinds(),
	DeclarationKinds:    kinds("variable_declarator"),
	AssignmentKinds:     kinds("assignment_expression"),
	AugmentedKinds:      kinds(),
	BinaryKinds:         kinds("binary_expression"),
	CallKinds:           kinds("method_invocation"),
	NamedArgKinds:       kinds(),
	ObjectKinds:         kinds(),
	IdentifierKinds:     kinds("identifier"),
	PropertyKinds:       kinds(),
	ExpressionListKinds: kinds(),
	QuoteCutset:         "\"",
}

var rustDialect = &Dialect{
	Language:            "rust",
	StringKinds:         kinds("string_literal"),
	StringContentKinds:  kinds("string_content", "escape_sequence"),
	TemplateKinds:       kinds(),
	SubstitutionKinds:   kinds(),
	DeclarationKinds:    kinds("let_declaration"),
	AssignmentKinds:     kinds("assignment_expression"),
	AugmentedKinds:      kinds("compound_assignment_expr"),
	BinaryKinds:         kinds("binary_expression"),
	CallKinds:           kinds("call_expression"),
	NamedArgKinds:       kinds(),
	ObjectKinds:         kinds(),
	IdentifierKinds:     kinds("identifier"),
	PropertyKinds:       kinds(),
	ExpressionListKinds: kinds(),
	QuoteCutset:         "\"",
}

var dialects = map[string]*Dialect{
	"javascript": javascriptDialect,
	"typescript": javascriptDialect,
	"tsx":        javascriptDialect,
	"python":     pythonDialect,
	"go":         goDialect,
	"java":       javaDialect,
	"rust":       rustDialect,
}

// DialectFor returns the node-kind table for a language ID from the
// registry. TypeScript and TSX reuse the JavaScript table: the typescript
// grammar is a superset that keeps the same kind names for every shape the
// walker cares about.
func DialectFor(language string) (*Dialect, bool) {
	d, ok := dialects[language]
	return d, ok
}
