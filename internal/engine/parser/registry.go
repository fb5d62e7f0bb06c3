package parser

import (
	"fmt"
	"sort"
	"strings"
)

// LanguageSpec describes one supported language: how files are recognized
// and whether the language participates in the current scan.
type LanguageSpec struct {
	Name             string
	Extensions       []string
	TestFileSuffixes []string
	Enabled          bool
}

// LanguageOverride adjusts a registry entry from configuration.
type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
}

// DefaultLanguageRegistry returns the built-in language set. Keys are
// language IDs; every ID here has a grammar binding in the loader and a
// dialect table in dialect.go.
func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"javascript": {
			Name:             "javascript",
			Extensions:       []string{".js", ".jsx", ".mjs", ".cjs"},
			TestFileSuffixes: []string{".test.js", ".spec.js", ".test.jsx", ".spec.jsx"},
			Enabled:          true,
		},
		"typescript": {
			Name:             "typescript",
			Extensions:       []string{".ts", ".mts", ".cts"},
			TestFileSuffixes: []string{".test.ts", ".spec.ts"},
			Enabled:          true,
		},
		"tsx": {
			Name:             "tsx",
			Extensions:       []string{".tsx"},
			TestFileSuffixes: []string{".test.tsx", ".spec.tsx"},
			Enabled:          true,
		},
		"python": {
			Name:             "python",
			Extensions:       []string{".py"},
			TestFileSuffixes: []string{"_test.py"},
			Enabled:          true,
		},
		"go": {
			Name:             "go",
			Extensions:       []string{".go"},
			TestFileSuffixes: []string{"_test.go"},
			Enabled:          true,
		},
		"java": {
			Name:             "java",
			Extensions:       []string{".java"},
			TestFileSuffixes: []string{"Test.java", "Tests.java"},
			Enabled:          true,
		},
		"rust": {
			Name:             "rust",
			Extensions:       []string{".rs"},
			Enabled:          true,
		},
	}
}

// BuildLanguageRegistry applies configuration overrides on top of the
// default registry. Overrides may only address known languages; extension
// lists replace the defaults when provided.
func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[string]LanguageSpec, error) {
	registry := DefaultLanguageRegistry()
	for lang, ov := range overrides {
		spec, ok := registry[lang]
		if !ok {
			return nil, fmt.Errorf("unknown language in overrides: %q", lang)
		}
		if ov.Enabled != nil {
			spec.Enabled = *ov.Enabled
		}
		if len(ov.Extensions) > 0 {
			exts := make([]string, 0, len(ov.Extensions))
			for _, ext := range ov.Extensions {
				ext = strings.ToLower(strings.TrimSpace(ext))
				if ext == "" {
					continue
				}
				if !strings.HasPrefix(ext, ".") {
					ext = "." + ext
				}
				exts = append(exts, ext)
			}
			spec.Extensions = exts
		}
		registry[lang] = spec
	}
	return registry, nil
}

func cloneLanguageRegistry(registry map[string]LanguageSpec) map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(registry))
	for lang, spec := range registry {
		clone := spec
		clone.Extensions = append([]string(nil), spec.Extensions...)
		clone.TestFileSuffixes = append([]string(nil), spec.TestFileSuffixes...)
		out[lang] = clone
	}
	return out
}

func sortedLanguageIDs(registry map[string]LanguageSpec) []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
