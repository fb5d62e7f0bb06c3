package history

import "time"

const SchemaVersion = 1

// Snapshot is one persisted scan outcome. SummaryJSON carries the report
// summary as an opaque blob so the store stays decoupled from the scan
// package.
type Snapshot struct {
	SchemaVersion        int       `json:"schema_version"`
	ScanID               string    `json:"scan_id"`
	Timestamp            time.Time `json:"timestamp"`
	CommitHash           string    `json:"commit_hash,omitempty"`
	CommitTimestamp      time.Time `json:"commit_timestamp,omitempty"`
	Roots                []string  `json:"roots"`
	FilesScanned         int       `json:"files_scanned"`
	FilesSkipped         int       `json:"files_skipped"`
	DurationMS           int64     `json:"duration_ms"`
	TotalFindings        int       `json:"total_findings"`
	StringLiterals       int       `json:"string_literals"`
	VariableAssignments  int       `json:"variable_assignments"`
	StringConcatenations int       `json:"string_concatenations"`
	Models               []string  `json:"models"`
	SummaryJSON          string    `json:"summary_json,omitempty"`
}

type TrendPoint struct {
	Timestamp           time.Time `json:"timestamp"`
	ScanID              string    `json:"scan_id"`
	CommitHash          string    `json:"commit_hash,omitempty"`
	FilesScanned        int       `json:"files_scanned"`
	TotalFindings       int       `json:"total_findings"`
	StringLiterals      int       `json:"string_literals"`
	VariableAssignments int       `json:"variable_assignments"`
	Concatenations      int       `json:"string_concatenations"`
	ModelCount          int       `json:"model_count"`
	DeltaFiles          int       `json:"delta_files"`
	DeltaFindings       int       `json:"delta_findings"`
	DeltaModels         int       `json:"delta_models"`
	FindingGrowthPct    float64   `json:"finding_growth_pct"`
	AvgFindings         float64   `json:"avg_findings"`
	WindowHours         float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}
