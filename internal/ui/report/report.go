// Package report renders scan results: a JSON envelope that is the primary
// machine-readable artifact, plus text, markdown, SARIF, and TSV views of
// the same data.
package report

import (
	"time"

	"github.com/google/uuid"

	"modelscan/internal/engine/scan"
)

// SkippedFile records one file the scan could not analyze and why.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report is the envelope around one scan's findings. Field names are part
// of the output contract; consumers diff reports across scans.
type Report struct {
	ScanID        string         `json:"scan_id"`
	ScanDate      time.Time      `json:"scan_date"`
	RootPaths     []string       `json:"root_paths"`
	FilesScanned  int            `json:"files_scanned"`
	FilesSkipped  int            `json:"files_skipped"`
	SkippedFiles  []SkippedFile  `json:"skipped_files"`
	DurationMS    int64          `json:"duration_ms"`
	TotalFindings int            `json:"total_findings"`
	Findings      []scan.Finding `json:"findings"`
	Summary       scan.Summary   `json:"summary"`
}

// New assembles the envelope. Slices are normalized to empty, never null,
// so downstream JSON consumers can index without nil checks.
func New(rootPaths []string, agg scan.Aggregate, filesScanned int, skipped []SkippedFile, duration time.Duration) *Report {
	if rootPaths == nil {
		rootPaths = []string{}
	}
	if skipped == nil {
		skipped = []SkippedFile{}
	}
	findings := agg.Findings
	if findings == nil {
		findings = []scan.Finding{}
	}
	summary := agg.Summary
	if summary.ModelsFound == nil {
		summary.ModelsFound = []string{}
	}
	return &Report{
		ScanID:        uuid.New().String(),
		ScanDate:      time.Now().UTC(),
		RootPaths:     rootPaths,
		FilesScanned:  filesScanned,
		FilesSkipped:  len(skipped),
		SkippedFiles:  skipped,
		DurationMS:    duration.Milliseconds(),
		TotalFindings: len(findings),
		Findings:      findings,
		Summary:       summary,
	}
}
