package report

import (
	"fmt"
	"strings"
	"time"

	"modelscan/internal/shared/version"
)

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (g *MarkdownGenerator) Generate(r *Report) (string, error) {
	var b strings.Builder

	b.WriteString("---\n")
	b.WriteString("title: AI Model Scan Report\n")
	b.WriteString("scan_id: " + r.ScanID + "\n")
	b.WriteString("generated_at: " + r.ScanDate.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + version.Version + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# AI Model Scan Report\n\n")

	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| Roots | %s |\n", strings.Join(r.RootPaths, ", "))
	fmt.Fprintf(&b, "| Files Scanned | %d |\n", r.FilesScanned)
	fmt.Fprintf(&b, "| Files Skipped | %d |\n", r.FilesSkipped)
	fmt.Fprintf(&b, "| Duration | %dms |\n", r.DurationMS)
	fmt.Fprintf(&b, "| Total Findings | %d |\n", r.TotalFindings)
	fmt.Fprintf(&b, "| String Literals | %d |\n", r.Summary.StringLiterals)
	fmt.Fprintf(&b, "| Variable Assignments | %d |\n", r.Summary.VariableAssignments)
	fmt.Fprintf(&b, "| String Concatenations | %d |\n\n", r.Summary.StringConcatenations)

	if len(r.Summary.ModelsFound) > 0 {
		b.WriteString("## Models Found\n")
		for _, m := range r.Summary.ModelsFound {
			b.WriteString("- `" + m + "`\n")
		}
		b.WriteString("\n")
	}

	if len(r.Findings) > 0 {
		b.WriteString("## Findings\n")
		b.WriteString("| Type | Model | Variable | Location | Usage | API Calls | Note |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "| %s | `%s` | %s | %s:%d:%d | %d | %d | %s |\n",
				f.Type,
				f.Model,
				f.Variable,
				f.File, f.Line, f.Column,
				f.UsageCount,
				f.APICallCount,
				mdCell(f.Note),
			)
		}
		b.WriteString("\n")
	}

	if len(r.SkippedFiles) > 0 {
		b.WriteString("## Skipped Files\n")
		for _, s := range r.SkippedFiles {
			fmt.Fprintf(&b, "- %s (%s)\n", s.File, s.Reason)
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// mdCell keeps table rows on one line and unbroken by pipe characters.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
