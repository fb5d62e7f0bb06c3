package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"modelscan/internal/core/errors"
	"modelscan/internal/shared/util"
	"modelscan/internal/ui/report"
)

// defaultSkipDirs are pruned from every walk regardless of config.
var defaultSkipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"venv":         true,
	"__pycache__":  true,
	"vendor":       true,
	"target":       true,
}

// collectFiles expands the scan roots into the sorted list of files to
// scan. A root may be a single file; directories are walked recursively
// with default and configured exclusions applied.
func (s *Service) collectFiles(roots []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfig, "stat scan path"), errors.CtxPath, root)
		}

		if !info.IsDir() {
			if s.ShouldScanFile(root) && !seen[root] {
				seen[root] = true
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && s.ShouldSkipDir(filepath.Base(path)) {
					return filepath.SkipDir
				}
				return nil
			}

			if !s.ShouldScanFile(path) {
				return nil
			}
			if seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk scan path"), errors.CtxPath, root)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ShouldScanFile reports whether a scan would pick up the path: supported
// extension, not a skipped test file, not excluded.
func (s *Service) ShouldScanFile(path string) bool {
	if !s.parser.IsSupportedPath(path) {
		return false
	}
	if !s.cfg.Scan.IncludeTests && s.parser.IsTestFile(path) {
		return false
	}
	return !s.excludes.matchFile(path)
}

// ShouldSkipDir reports whether a directory name is pruned from walks.
func (s *Service) ShouldSkipDir(name string) bool {
	return defaultSkipDirs[name] || s.excludes.matchDir(name)
}

// excludeMatcher compiles the configured exclusion globs once per scan
// service. Patterns without a path separator match directory and file base
// names (so directories can be pruned during the walk); patterns with a
// separator match the slash-normalized file path.
type excludeMatcher struct {
	names []glob.Glob
	paths []glob.Glob
}

func newExcludeMatcher(patterns []string) (*excludeMatcher, error) {
	m := &excludeMatcher{}
	for _, p := range patterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if util.ContainsPathSeparator(trimmed) {
			g, err := glob.Compile(util.NormalizePatternPath(trimmed), '/')
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
			}
			m.paths = append(m.paths, g)
			continue
		}
		g, err := glob.Compile(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		m.names = append(m.names, g)
	}
	return m, nil
}

func (m *excludeMatcher) matchDir(base string) bool {
	for _, g := range m.names {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (m *excludeMatcher) matchFile(path string) bool {
	base := filepath.Base(path)
	for _, g := range m.names {
		if g.Match(base) {
			return true
		}
	}
	if len(m.paths) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, g := range m.paths {
		if g.Match(slashPath) {
			return true
		}
	}
	return false
}

func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeParse, "read file"), errors.CtxPath, path)
	}
	return content, nil
}

func sortSkipped(skipped []report.SkippedFile) {
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].File < skipped[j].File })
}
