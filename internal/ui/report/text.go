package report

import (
	"fmt"
	"strings"
)

type TextGenerator struct{}

func NewTextGenerator() *TextGenerator {
	return &TextGenerator{}
}

// Generate renders the console view: scan header, one block per finding,
// models list, skipped files.
func (g *TextGenerator) Generate(r *Report) (string, error) {
	var b strings.Builder
	divider := strings.Repeat("-", 40)

	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Scan %s at %s\n", r.ScanID, r.ScanDate.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Scanned %d files in %dms (%d skipped)\n\n", r.FilesScanned, r.DurationMS, r.FilesSkipped)

	if r.TotalFindings == 0 {
		b.WriteString("✅ No AI model identifiers found.\n")
	} else {
		fmt.Fprintf(&b, "🔍 FOUND %d AI MODEL IDENTIFIERS:\n", r.TotalFindings)
		for _, f := range r.Findings {
			label := f.Model
			if f.Variable != "" {
				label = fmt.Sprintf("%s (%s)", f.Model, f.Variable)
			}
			fmt.Fprintf(&b, "   [%s] %s at %s:%d:%d\n", f.Type, label, f.File, f.Line, f.Column)
			if f.Code != "" {
				fmt.Fprintf(&b, "      %s\n", f.Code)
			}
			if f.Note != "" {
				fmt.Fprintf(&b, "      note: %s\n", f.Note)
			}
			if f.UsageCount > 0 {
				fmt.Fprintf(&b, "      used %d time(s), %d API call(s)\n", f.UsageCount, f.APICallCount)
				for _, u := range f.UsageLocations {
					target := u.Function
					if u.Parameter != "" {
						target = fmt.Sprintf("%s(%s=...)", u.Function, u.Parameter)
					}
					fmt.Fprintf(&b, "         -> %s at %s:%d\n", target, u.File, u.Line)
				}
			}
		}
	}

	if len(r.Summary.ModelsFound) > 0 {
		fmt.Fprintf(&b, "\n📦 Models: %s\n", strings.Join(r.Summary.ModelsFound, ", "))
	}

	if len(r.SkippedFiles) > 0 {
		fmt.Fprintf(&b, "\n⏭️  SKIPPED %d FILE(S):\n", len(r.SkippedFiles))
		for _, s := range r.SkippedFiles {
			fmt.Fprintf(&b, "   %s (%s)\n", s.File, s.Reason)
		}
	}

	b.WriteString(divider + "\n")
	return b.String(), nil
}
