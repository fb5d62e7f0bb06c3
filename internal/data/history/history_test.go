package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	first := Snapshot{
		ScanID:         "scan-1",
		Timestamp:      base,
		Roots:          []string{"."},
		FilesScanned:   8,
		TotalFindings:  3,
		StringLiterals: 3,
		Models:         []string{"gpt-4o"},
	}
	dup := Snapshot{
		ScanID:              "scan-1",
		Timestamp:           base,
		Roots:               []string{"."},
		FilesScanned:        9,
		TotalFindings:       5,
		StringLiterals:      4,
		VariableAssignments: 1,
		Models:              []string{"gpt-4o", "claude-sonnet-4"},
	}
	second := Snapshot{
		ScanID:               "scan-2",
		Timestamp:            base.Add(2 * time.Hour),
		CommitHash:           "abc123def456",
		CommitTimestamp:      base.Add(-30 * time.Minute),
		Roots:                []string{"src", "lib"},
		FilesScanned:         12,
		FilesSkipped:         1,
		DurationMS:           420,
		TotalFindings:        7,
		StringLiterals:       4,
		VariableAssignments:  2,
		StringConcatenations: 1,
		Models:               []string{"claude-sonnet-4"},
		SummaryJSON:          `{"total_findings":7}`,
	}

	if err := store.SaveSnapshot(first); err != nil {
		t.Fatalf("save first snapshot: %v", err)
	}
	if err := store.SaveSnapshot(dup); err != nil {
		t.Fatalf("save duplicate snapshot: %v", err)
	}
	if err := store.SaveSnapshot(second); err != nil {
		t.Fatalf("save second snapshot: %v", err)
	}

	got, err := store.LoadSnapshots(base.Add(1 * time.Hour))
	if err != nil {
		t.Fatalf("load snapshots: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 snapshot after since filter, got %d", len(got))
	}
	if got[0].ScanID != "scan-2" || got[0].TotalFindings != 7 {
		t.Fatalf("unexpected filtered snapshot: %+v", got[0])
	}
	if got[0].CommitHash != "abc123def456" || !got[0].CommitTimestamp.Equal(base.Add(-30*time.Minute)) {
		t.Fatalf("expected commit metadata to roundtrip, got %+v", got[0])
	}
	if len(got[0].Roots) != 2 || got[0].Roots[1] != "lib" {
		t.Fatalf("expected roots to roundtrip, got %v", got[0].Roots)
	}
	if got[0].SummaryJSON != `{"total_findings":7}` {
		t.Fatalf("expected summary json to roundtrip, got %q", got[0].SummaryJSON)
	}

	// Duplicate scan_id should have upserted the first row.
	all, err := store.LoadSnapshots(time.Time{})
	if err != nil {
		t.Fatalf("load all snapshots: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected deduplicated 2 snapshots, got %d", len(all))
	}
	if all[0].TotalFindings != 5 || len(all[0].Models) != 2 {
		t.Fatalf("expected upserted first snapshot, got %+v", all[0])
	}
}

func TestStore_ListSnapshotsNewestFirst(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"scan-1", "scan-2", "scan-3"} {
		err := store.SaveSnapshot(Snapshot{
			ScanID:        id,
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
			TotalFindings: i,
		})
		if err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	got, err := store.ListSnapshots(2)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
	if got[0].ScanID != "scan-3" || got[1].ScanID != "scan-2" {
		t.Fatalf("expected newest-first order, got %s then %s", got[0].ScanID, got[1].ScanID)
	}
}

func TestStore_GetSnapshot(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	if err := store.SaveSnapshot(Snapshot{ScanID: "scan-1", Timestamp: base, TotalFindings: 4}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetSnapshot("scan-1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if got.TotalFindings != 4 {
		t.Fatalf("expected total_findings=4, got %d", got.TotalFindings)
	}

	_, err = store.GetSnapshot("missing")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestStore_SaveSnapshotRejectsEmptyScanID(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	err = store.SaveSnapshot(Snapshot{Timestamp: time.Now()})
	if err == nil || !strings.Contains(err.Error(), "scan_id") {
		t.Fatalf("expected scan_id validation error, got %v", err)
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := Open(tmpDir)
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1)
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildTrendReport(t *testing.T) {
	base := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	snapshots := []Snapshot{
		{ScanID: "scan-1", Timestamp: base, FilesScanned: 5, TotalFindings: 4, Models: []string{"gpt-4o"}},
		{ScanID: "scan-2", Timestamp: base.Add(2 * time.Hour), FilesScanned: 8, TotalFindings: 6, Models: []string{"gpt-4o", "claude-sonnet-4"}},
		{ScanID: "scan-3", Timestamp: base.Add(27 * time.Hour), FilesScanned: 9, TotalFindings: 3, Models: []string{"claude-sonnet-4"}},
	}

	report, err := BuildTrendReport(snapshots, 24*time.Hour)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.ScanCount != 3 {
		t.Fatalf("expected scan_count=3, got %d", report.ScanCount)
	}
	if report.Points[1].DeltaFindings != 2 {
		t.Fatalf("expected delta_findings=2, got %d", report.Points[1].DeltaFindings)
	}
	if report.Points[1].DeltaModels != 1 {
		t.Fatalf("expected delta_models=1, got %d", report.Points[1].DeltaModels)
	}
	if report.Points[1].FindingGrowthPct != 50 {
		t.Fatalf("expected finding growth pct=50, got %v", report.Points[1].FindingGrowthPct)
	}
	if report.Points[1].AvgFindings != 5 {
		t.Fatalf("expected avg_findings=5 within window, got %v", report.Points[1].AvgFindings)
	}
	// Third point sits outside the 24h window of the first two.
	if report.Points[2].AvgFindings != 3 {
		t.Fatalf("expected avg_findings=3 for isolated point, got %v", report.Points[2].AvgFindings)
	}
}

func TestBuildTrendReport_NoSnapshots(t *testing.T) {
	_, err := BuildTrendReport(nil, time.Hour)
	if err == nil {
		t.Fatal("expected error for empty snapshot list")
	}
}

func TestIsCorruptError(t *testing.T) {
	if !IsCorruptError(errors.New("database disk image is malformed")) {
		t.Fatal("expected malformed sqlite message to be treated as corrupt")
	}
	if IsCorruptError(nil) {
		t.Fatal("expected nil to not be corrupt")
	}
}

func TestResolveGitMetadata_NonRepo(t *testing.T) {
	hash, ts := ResolveGitMetadata(t.TempDir())
	if hash != "" || !ts.IsZero() {
		t.Fatalf("expected zero metadata outside a repo, got %q %v", hash, ts)
	}
}
