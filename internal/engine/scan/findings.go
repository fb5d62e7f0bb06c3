package scan

// FindingType is the closed set of finding categories the scanner emits.
type FindingType string

const (
	TypeStringLiteral       FindingType = "string_literal"
	TypeVariableAssignment  FindingType = "variable_assignment"
	TypeStringConcatenation FindingType = "string_concatenation"
)

// UsageLocation records one place a tracked variable flowed into a call
// argument after its binding.
type UsageLocation struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Context   string `json:"context"`
	Function  string `json:"function,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	IsAPICall bool   `json:"is_api_call"`
}

// Finding is one model-identifier occurrence. The optional fields are
// populated per finding type: Variable/AssignedValue for assignments,
// Components/TemplateVariables and the construction flags for built
// strings, UsageLocations for assignments whose variable later reached a
// call.
type Finding struct {
	Type    FindingType `json:"type"`
	Model   string      `json:"model"`
	Pattern string      `json:"pattern,omitempty"`

	Variable string `json:"variable,omitempty"`

	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Code   string `json:"code"`

	AssignedValue     string   `json:"assigned_value,omitempty"`
	Components        []string `json:"components,omitempty"`
	TemplateVariables []string `json:"template_variables,omitempty"`

	IsTemplateConstruction bool `json:"is_template_construction,omitempty"`
	IsBinaryConstruction   bool `json:"is_binary_construction,omitempty"`
	IsCompoundAssignment   bool `json:"is_compound_assignment,omitempty"`
	IsModelPart            bool `json:"is_model_part,omitempty"`

	Note string `json:"note,omitempty"`

	UsageLocations []UsageLocation `json:"usage_locations,omitempty"`
	UsageCount     int             `json:"usage_count,omitempty"`
	APICallCount   int             `json:"api_call_count,omitempty"`
}

// ConstructedModel is the model placeholder for constructions that could
// not be resolved to a flat string.
const ConstructedModel = "constructed"

// Result holds the findings of a single file, in source order.
type Result struct {
	File     string
	Language string
	Findings []Finding
}
