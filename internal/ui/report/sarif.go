package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"modelscan/internal/core/errors"
	"modelscan/internal/engine/scan"
	"modelscan/internal/shared/version"
)

const (
	ruleIDLiteral       = "AIM001"
	ruleIDAssignment    = "AIM002"
	ruleIDConcatenation = "AIM003"
)

type SARIFGenerator struct{}

func NewSARIFGenerator() *SARIFGenerator {
	return &SARIFGenerator{}
}

// Generate builds a SARIF v2.1.0 document. File URIs are emitted exactly as
// scanned (relative to the scan roots) so reports stay shareable.
func (g *SARIFGenerator) Generate(r *Report) ([]byte, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create sarif document")
	}

	run := sarif.NewRunWithInformationURI("modelscan", "")
	v := version.Version
	run.Tool.Driver.Version = &v

	run.AddRule(ruleIDLiteral).
		WithDescription("Hardcoded AI model identifier in a string literal").
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
	run.AddRule(ruleIDAssignment).
		WithDescription("AI model identifier assigned to a variable").
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
	run.AddRule(ruleIDConcatenation).
		WithDescription("AI model identifier built by string construction").
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "note"})

	for _, f := range r.Findings {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(filepath.ToSlash(f.File))).
				WithRegion(sarif.NewRegion().WithStartLine(f.Line).WithStartColumn(f.Column)),
		)
		result := sarif.NewRuleResult(sarifRuleID(f.Type)).
			WithMessage(sarif.NewTextMessage(sarifMessage(f))).
			WithLevel(sarifLevel(f)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	var buf bytes.Buffer
	if err := doc.PrettyWrite(&buf); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode sarif document")
	}
	return buf.Bytes(), nil
}

func sarifRuleID(t scan.FindingType) string {
	switch t {
	case scan.TypeVariableAssignment:
		return ruleIDAssignment
	case scan.TypeStringConcatenation:
		return ruleIDConcatenation
	default:
		return ruleIDLiteral
	}
}

func sarifLevel(f scan.Finding) string {
	if f.Model == scan.ConstructedModel || f.IsModelPart || f.Pattern != "" {
		return "note"
	}
	return "warning"
}

func sarifMessage(f scan.Finding) string {
	switch {
	case f.Model == scan.ConstructedModel:
		return fmt.Sprintf("AI model identifier constructed at runtime (%s)", f.Note)
	case f.Variable != "":
		return fmt.Sprintf("AI model %q assigned to variable %q", f.Model, f.Variable)
	default:
		return fmt.Sprintf("AI model %q referenced", f.Model)
	}
}
