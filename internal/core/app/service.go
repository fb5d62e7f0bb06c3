package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"modelscan/internal/core/config"
	"modelscan/internal/core/errors"
	"modelscan/internal/data/history"
	"modelscan/internal/engine/parser"
	"modelscan/internal/engine/rules"
	"modelscan/internal/engine/scan"
	"modelscan/internal/shared/observability"
	"modelscan/internal/ui/report"
)

// Service owns one scan pipeline: file discovery, parsing, per-file
// scanning, deterministic merge, and the optional history hook. A Service
// is safe for sequential reuse (watch mode re-scans through the same one).
type Service struct {
	cfg      *config.Config
	rules    *rules.RuleSet
	loader   *parser.GrammarLoader
	parser   *parser.Parser
	excludes *excludeMatcher
	history  *history.Store
}

func NewService(cfg *config.Config, rs *rules.RuleSet) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if rs == nil {
		return nil, fmt.Errorf("rule set is required")
	}

	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load grammars")
	}

	excludes, err := newExcludeMatcher(cfg.Scan.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "compile exclude patterns")
	}

	svc := &Service{
		cfg:      cfg,
		rules:    rs,
		loader:   loader,
		parser:   parser.NewParser(loader),
		excludes: excludes,
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeStorage, "open history store"), errors.CtxPath, cfg.History.Path)
		}
		svc.history = store
	}

	return svc, nil
}

func (s *Service) Close() error {
	if s == nil || s.history == nil {
		return nil
	}
	return s.history.Close()
}

// Parser exposes the path classifier so the watcher can filter events
// without re-deriving extension rules.
func (s *Service) Parser() *parser.Parser {
	return s.parser
}

func (s *Service) Rules() *rules.RuleSet {
	return s.rules
}

// Scan walks the given roots (config scan paths when empty), scans every
// supported file, and merges per-file results in path order. Cancellation
// is file-grained: findings from files that completed before the context
// was cancelled are still returned, alongside the context error.
func (s *Service) Scan(ctx context.Context, roots []string) (*report.Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "scan")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if len(roots) == 0 {
		roots = s.cfg.Scan.Paths
	}
	roots = normalizeScanRoots(roots)
	if len(roots) == 0 {
		return nil, errors.New(errors.CodeConfig, "no scan paths given")
	}

	files, err := s.collectFiles(roots)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "collect_files")
	}

	results := make([]*scan.Result, len(files))
	skipped := make([]report.SkippedFile, 0)
	var skippedMu sync.Mutex

	guard := make(chan struct{}, s.cfg.Scan.WorkerCount())
	var wg sync.WaitGroup
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		guard <- struct{}{}
		wg.Add(1)
		go func(idx int, filePath string) {
			defer wg.Done()
			defer func() { <-guard }()

			result, err := s.scanFile(ctx, filePath)
			if err != nil {
				slog.Warn("skipping file", "path", filePath, "error", err)
				observability.FilesSkippedTotal.Inc()
				skippedMu.Lock()
				skipped = append(skipped, report.SkippedFile{File: filePath, Reason: err.Error()})
				skippedMu.Unlock()
				return
			}
			results[idx] = result
		}(i, path)
	}
	wg.Wait()

	sortSkipped(skipped)
	agg := scan.Merge(results)

	filesScanned := 0
	for _, r := range results {
		if r != nil {
			filesScanned++
		}
	}

	rep := report.New(roots, agg, filesScanned, skipped, time.Since(start))

	observability.FilesScannedTotal.Add(float64(filesScanned))
	observability.ScanDuration.Observe(time.Since(start).Seconds())
	for _, f := range agg.Findings {
		observability.FindingsTotal.WithLabelValues(string(f.Type)).Inc()
	}
	span.SetAttributes(
		attribute.Int("scan.files", filesScanned),
		attribute.Int("scan.findings", rep.TotalFindings),
	)

	if err := ctx.Err(); err != nil {
		return rep, err
	}

	if s.history != nil {
		if err := s.recordSnapshot(rep); err != nil {
			slog.Warn("failed to record history snapshot", "error", err)
		} else {
			observability.HistorySnapshotsTotal.Inc()
		}
	}

	return rep, nil
}

func (s *Service) scanFile(ctx context.Context, path string) (*scan.Result, error) {
	_, span := observability.Tracer.Start(ctx, "scan.file", trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	content, err := readFile(path)
	if err != nil {
		return nil, err
	}

	parseStart := time.Now()
	file, err := s.parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	observability.ParsingDuration.WithLabelValues(file.Language).Observe(time.Since(parseStart).Seconds())

	return scan.File(file, s.rules), nil
}

func (s *Service) recordSnapshot(rep *report.Report) error {
	summaryJSON, err := json.Marshal(rep.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	gitRoot := "."
	if len(rep.RootPaths) > 0 {
		gitRoot = rep.RootPaths[0]
	}
	commitHash, commitTime := history.ResolveGitMetadata(gitRoot)

	return s.history.SaveSnapshot(history.Snapshot{
		ScanID:               rep.ScanID,
		Timestamp:            rep.ScanDate,
		CommitHash:           commitHash,
		CommitTimestamp:      commitTime,
		Roots:                rep.RootPaths,
		FilesScanned:         rep.FilesScanned,
		FilesSkipped:         rep.FilesSkipped,
		DurationMS:           rep.DurationMS,
		TotalFindings:        rep.TotalFindings,
		StringLiterals:       rep.Summary.StringLiterals,
		VariableAssignments:  rep.Summary.VariableAssignments,
		StringConcatenations: rep.Summary.StringConcatenations,
		Models:               rep.Summary.ModelsFound,
		SummaryJSON:          string(summaryJSON),
	})
}

// normalizeScanRoots trims, cleans, and dedupes scan roots. Roots stay as
// given rather than absolute so report paths are stable across machines.
func normalizeScanRoots(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		clean := filepath.Clean(trimmed)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		cleaned = append(cleaned, clean)
	}
	return cleaned
}
