package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelscan.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
version = 1

[scan]
paths = ["./src", "./lib"]
workers = 4
include_tests = true
exclude = ["**/node_modules/**", "**/.git/**"]
fail_on_findings = true

[rules]
path = "rules.yaml"

[matching]
case_sensitive = true

[output]
format = "sarif"
path = "out/report.sarif"

[history]
enabled = true
path = "scans.db"

[watch]
debounce_ms = 250
max_rescans_per_minute = 10

[logging]
level = "debug"

[observability]
port = 9100
otlp_endpoint = "localhost:4317"
enable_tracing = true
enable_metrics = true
`
	path := writeConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Scan.Paths) != 2 || cfg.Scan.Paths[0] != "./src" {
		t.Errorf("unexpected scan.paths: %v", cfg.Scan.Paths)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Scan.Workers)
	}
	if !cfg.Scan.IncludeTests {
		t.Error("expected include_tests true")
	}
	if !cfg.Scan.FailOnFindings {
		t.Error("expected fail_on_findings true")
	}
	if !cfg.Matching.CaseSensitive {
		t.Error("expected case_sensitive true")
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("expected format sarif, got %q", cfg.Output.Format)
	}
	if cfg.Watch.Debounce() != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", cfg.Watch.Debounce())
	}
	if cfg.Observability.Port != 9100 {
		t.Errorf("expected observability port 9100, got %d", cfg.Observability.Port)
	}

	// File paths resolve relative to the config file location.
	dir := filepath.Dir(path)
	if cfg.Rules.Path != filepath.Join(dir, "rules.yaml") {
		t.Errorf("expected rebased rules path, got %q", cfg.Rules.Path)
	}
	if cfg.History.Path != filepath.Join(dir, "scans.db") {
		t.Errorf("expected rebased history path, got %q", cfg.History.Path)
	}
	if cfg.Output.Path != filepath.Join(dir, "out/report.sarif") {
		t.Errorf("expected rebased output path, got %q", cfg.Output.Path)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `version = 1`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Scan.Paths) != 1 || cfg.Scan.Paths[0] != "." {
		t.Errorf("expected default scan.paths [.], got %v", cfg.Scan.Paths)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected default format json, got %q", cfg.Output.Format)
	}
	if filepath.Base(cfg.History.Path) != "modelscan-history.db" {
		t.Errorf("expected default history path, got %q", cfg.History.Path)
	}
	if cfg.Watch.DebounceMS != 400 {
		t.Errorf("expected default debounce_ms 400, got %d", cfg.Watch.DebounceMS)
	}
	if cfg.Watch.MaxRescansPerMinute != 30 {
		t.Errorf("expected default max_rescans_per_minute 30, got %d", cfg.Watch.MaxRescansPerMinute)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default logging level info, got %q", cfg.Logging.Level)
	}
}

func TestLoadError(t *testing.T) {
	if _, err := Load("nonexistent.toml"); err == nil {
		t.Error("expected error for nonexistent file")
	}

	path := writeConfig(t, "bad = toml = format")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{
			name:    "unsupported version",
			content: `version = 3`,
			errSub:  "unsupported config version",
		},
		{
			name: "negative workers",
			content: `
[scan]
workers = -1
`,
			errSub: "scan.workers must be >= 0",
		},
		{
			name: "bad exclude glob",
			content: `
[scan]
exclude = ["[invalid"]
`,
			errSub: "scan.exclude[0]",
		},
		{
			name: "bad rules extension",
			content: `
[rules]
path = "rules.txt"
`,
			errSub: "rules.path must point to",
		},
		{
			name: "unknown output format",
			content: `
[output]
format = "xml"
`,
			errSub: "output.format must be one of",
		},
		{
			name: "negative debounce",
			content: `
[watch]
debounce_ms = -5
`,
			errSub: "watch.debounce_ms must be >= 0",
		},
		{
			name: "unknown log level",
			content: `
[logging]
level = "loud"
`,
			errSub: "logging.level must be one of",
		},
		{
			name: "tracing without endpoint",
			content: `
[observability]
enable_tracing = true
`,
			errSub: "observability.otlp_endpoint must not be empty",
		},
		{
			name: "port out of range",
			content: `
[observability]
port = 70000
`,
			errSub: "observability.port must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected built-in defaults, got format %q", cfg.Output.Format)
	}

	content := `
[output]
format = "text"
`
	if err := os.WriteFile(DefaultFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected format from %s, got %q", DefaultFile, cfg.Output.Format)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MODELSCAN_SCAN_WORKERS", "8")
	t.Setenv("MODELSCAN_OUTPUT_FORMAT", "sarif")
	t.Setenv("MODELSCAN_HISTORY_ENABLED", "true")
	t.Setenv("MODELSCAN_WATCH_DEBOUNCE_MS", "not-a-number")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Scan.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Scan.Workers)
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("expected format sarif, got %q", cfg.Output.Format)
	}
	if !cfg.History.Enabled {
		t.Error("expected history enabled")
	}
	if cfg.Watch.DebounceMS != 400 {
		t.Errorf("expected invalid int override ignored, got %d", cfg.Watch.DebounceMS)
	}
}

func TestScanWorkerCount(t *testing.T) {
	if got := (Scan{Workers: 3}).WorkerCount(); got != 3 {
		t.Fatalf("expected 3 workers, got %d", got)
	}
	if got := (Scan{}).WorkerCount(); got < 1 {
		t.Fatalf("expected at least one worker, got %d", got)
	}
}

func TestWatchRescansPerSecond(t *testing.T) {
	w := Watch{MaxRescansPerMinute: 30}
	if got := w.RescansPerSecond(); got != 0.5 {
		t.Fatalf("expected 0.5 rescans/s, got %v", got)
	}
}
