package report

import (
	"encoding/json"

	"modelscan/internal/core/errors"
)

type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (g *JSONGenerator) Generate(r *Report) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "encode report")
	}
	return append(out, '\n'), nil
}
