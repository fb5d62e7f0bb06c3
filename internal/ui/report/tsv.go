package report

import (
	"fmt"
	"strings"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

func (g *TSVGenerator) Generate(r *Report) (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tModel\tPattern\tVariable\tFile\tLine\tColumn\tUsageCount\tAPICallCount\n")
	for _, f := range r.Findings {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			f.Type,
			f.Model,
			f.Pattern,
			f.Variable,
			f.File,
			f.Line,
			f.Column,
			f.UsageCount,
			f.APICallCount,
		))
	}

	return buf.String(), nil
}
