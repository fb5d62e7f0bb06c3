package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveSnapshot(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(snapshot.ScanID) == "" {
		return fmt.Errorf("snapshot scan_id must not be empty")
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	commitTS := ""
	if !snapshot.CommitTimestamp.IsZero() {
		commitTS = snapshot.CommitTimestamp.UTC().Format(time.RFC3339Nano)
	}
	rootsJSON, err := marshalStrings(snapshot.Roots)
	if err != nil {
		return fmt.Errorf("encode snapshot roots: %w", err)
	}
	modelsJSON, err := marshalStrings(snapshot.Models)
	if err != nil {
		return fmt.Errorf("encode snapshot models: %w", err)
	}
	summaryJSON := strings.TrimSpace(snapshot.SummaryJSON)
	if summaryJSON == "" {
		summaryJSON = "{}"
	}

	query := `
INSERT INTO snapshots (
  scan_id, schema_version, ts_utc, commit_hash, commit_ts_utc, roots_json,
  files_scanned, files_skipped, duration_ms, total_findings, string_literals,
  variable_assignments, string_concatenations, models_json, summary_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(scan_id) DO UPDATE SET
  schema_version=excluded.schema_version,
  ts_utc=excluded.ts_utc,
  commit_hash=excluded.commit_hash,
  commit_ts_utc=excluded.commit_ts_utc,
  roots_json=excluded.roots_json,
  files_scanned=excluded.files_scanned,
  files_skipped=excluded.files_skipped,
  duration_ms=excluded.duration_ms,
  total_findings=excluded.total_findings,
  string_literals=excluded.string_literals,
  variable_assignments=excluded.variable_assignments,
  string_concatenations=excluded.string_concatenations,
  models_json=excluded.models_json,
  summary_json=excluded.summary_json
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.ScanID,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.CommitHash,
			commitTS,
			rootsJSON,
			snapshot.FilesScanned,
			snapshot.FilesSkipped,
			snapshot.DurationMS,
			snapshot.TotalFindings,
			snapshot.StringLiterals,
			snapshot.VariableAssignments,
			snapshot.StringConcatenations,
			modelsJSON,
			summaryJSON,
		)
		return err
	})
}

const snapshotColumns = `
  scan_id, schema_version, ts_utc, commit_hash, commit_ts_utc, roots_json,
  files_scanned, files_skipped, duration_ms, total_findings, string_literals,
  variable_assignments, string_concatenations, models_json, summary_json
`

// LoadSnapshots returns snapshots in ascending time order, optionally
// bounded by since.
func (s *Store) LoadSnapshots(since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT` + snapshotColumns + `FROM snapshots`
	args := make([]any, 0, 1)
	if !since.IsZero() {
		query += " WHERE ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, scan_id ASC"

	return s.querySnapshots(query, args...)
}

// ListSnapshots returns the most recent snapshots, newest first.
func (s *Store) ListSnapshots(limit int) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT` + snapshotColumns + `FROM snapshots ORDER BY ts_utc DESC, scan_id DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.querySnapshots(query, args...)
}

func (s *Store) GetSnapshot(scanID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT` + snapshotColumns + `FROM snapshots WHERE scan_id = ?`
	snapshots, err := s.querySnapshots(query, strings.TrimSpace(scanID))
	if err != nil {
		return Snapshot{}, err
	}
	if len(snapshots) == 0 {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return snapshots[0], nil
}

func (s *Store) querySnapshots(query string, args ...any) ([]Snapshot, error) {
	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw       string
			commitTSRaw string
			rootsJSON   string
			modelsJSON  string
			snapshot    Snapshot
		)
		if err := rows.Scan(
			&snapshot.ScanID,
			&snapshot.SchemaVersion,
			&tsRaw,
			&snapshot.CommitHash,
			&commitTSRaw,
			&rootsJSON,
			&snapshot.FilesScanned,
			&snapshot.FilesSkipped,
			&snapshot.DurationMS,
			&snapshot.TotalFindings,
			&snapshot.StringLiterals,
			&snapshot.VariableAssignments,
			&snapshot.StringConcatenations,
			&modelsJSON,
			&snapshot.SummaryJSON,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()

		if commitTSRaw != "" {
			commitTS, err := time.Parse(time.RFC3339Nano, commitTSRaw)
			if err != nil {
				return nil, fmt.Errorf("parse commit timestamp %q: %w", commitTSRaw, err)
			}
			snapshot.CommitTimestamp = commitTS.UTC()
		}

		if snapshot.Roots, err = unmarshalStrings(rootsJSON); err != nil {
			return nil, fmt.Errorf("decode snapshot roots: %w", err)
		}
		if snapshot.Models, err = unmarshalStrings(modelsJSON); err != nil {
			return nil, fmt.Errorf("decode snapshot models: %w", err)
		}

		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
