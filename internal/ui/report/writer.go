package report

import (
	"fmt"
	"os"

	"modelscan/internal/core/errors"
)

// Formats lists the supported output formats, in help-text order.
func Formats() []string {
	return []string{"json", "text", "markdown", "sarif", "tsv"}
}

// Render produces the report in the named format.
func Render(r *Report, format string) ([]byte, error) {
	switch format {
	case "", "json":
		return NewJSONGenerator().Generate(r)
	case "text":
		s, err := NewTextGenerator().Generate(r)
		return []byte(s), err
	case "markdown", "md":
		s, err := NewMarkdownGenerator().Generate(r)
		return []byte(s), err
	case "sarif":
		return NewSARIFGenerator().Generate(r)
	case "tsv":
		s, err := NewTSVGenerator().Generate(r)
		return []byte(s), err
	default:
		return nil, errors.Newf(errors.CodeConfig, "unsupported output format %q", format)
	}
}

// Write renders the report and writes it to path, or to stdout when path is
// empty or "-".
func Write(r *Report, format, path string) error {
	out, err := Render(r, format)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write report"), errors.CtxPath, path)
	}
	fmt.Fprintf(os.Stderr, "report written to %s\n", path)
	return nil
}
