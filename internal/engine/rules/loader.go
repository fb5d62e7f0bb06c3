package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelscan/internal/core/errors"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed ai-models.json
var defaultDoc []byte

// Default compiles the embedded rule set shipped with the binary.
func Default(opts Options) *RuleSet {
	doc, err := decodeJSON(defaultDoc)
	if err != nil {
		// The embedded document is validated by tests; reaching this means a
		// broken build, not a runtime condition.
		panic(fmt.Sprintf("embedded rule set invalid: %v", err))
	}
	return Compile(doc, opts)
}

// Load reads and compiles a rule file. The codec is chosen by extension
// (.json, .yaml/.yml, .toml); unknown fields are rejected. Failures are
// CONFIG_ERROR: matching without a valid rule set is meaningless, so the
// caller aborts before scanning anything.
func Load(path string, opts Options) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "read rules file")
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		doc, err = decodeJSON(data)
	case ".yaml", ".yml":
		doc, err = decodeYAML(data)
	case ".toml":
		doc, err = decodeTOML(data)
	default:
		return nil, errors.Newf(errors.CodeConfig, "unsupported rules format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfig, "decode rules file"), errors.CtxPath, path)
	}
	return Compile(doc, opts), nil
}

func decodeJSON(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func decodeYAML(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func decodeTOML(data []byte) (Document, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return Document{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Document{}, fmt.Errorf("unknown field %q", undecoded[0].String())
	}
	return doc, nil
}
