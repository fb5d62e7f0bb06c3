package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"modelscan/internal/core/errors"
)

// DefaultFile is the config file probed in the working directory when no
// --config flag is given.
const DefaultFile = "modelscan.toml"

type Config struct {
	Version       int           `toml:"version"`
	Scan          Scan          `toml:"scan"`
	Rules         Rules         `toml:"rules"`
	Matching      Matching      `toml:"matching"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Watch         Watch         `toml:"watch"`
	Logging       Logging       `toml:"logging"`
	Observability Observability `toml:"observability"`
}

type Scan struct {
	Paths          []string `toml:"paths"`
	Workers        int      `toml:"workers"`
	IncludeTests   bool     `toml:"include_tests"`
	Exclude        []string `toml:"exclude"`
	FailOnFindings bool     `toml:"fail_on_findings"`
}

type Rules struct {
	Path string `toml:"path"`
}

type Matching struct {
	CaseSensitive bool `toml:"case_sensitive"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	DebounceMS          int `toml:"debounce_ms"`
	MaxRescansPerMinute int `toml:"max_rescans_per_minute"`
}

type Logging struct {
	Level string `toml:"level"`
}

type Observability struct {
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
	EnableMetrics bool   `toml:"enable_metrics"`
}

// WorkerCount resolves the configured worker count; 0 means one worker
// per available CPU.
func (s Scan) WorkerCount() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (w Watch) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// RescansPerSecond converts the per-minute rescan cap into the rate
// expected by the watch limiter.
func (w Watch) RescansPerSecond() float64 {
	return float64(w.MaxRescansPerMinute) / 60.0
}

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfig, "read config file"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfig, "parse config file"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateScan(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateRules(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateOutput(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateLogging(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfig, "invalid config")
	}

	cfg.rebasePaths(filepath.Dir(path))

	return &cfg, nil
}

// LoadOrDefault loads the given path when set. Otherwise it probes
// DefaultFile in the working directory, then the user config directory
// (modelscan/config.toml), and falls back to built-in defaults when no
// file exists.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		userPath := filepath.Join(userDir, "modelscan", "config.toml")
		if _, err := os.Stat(userPath); err == nil {
			return Load(userPath)
		}
	}
	return Default(), nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Scan.Paths) == 0 {
		cfg.Scan.Paths = []string{"."}
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "json"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "modelscan-history.db"
	}

	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
	if cfg.Watch.MaxRescansPerMinute == 0 {
		cfg.Watch.MaxRescansPerMinute = 30
	}

	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
}

// rebasePaths resolves file paths relative to the config file location.
// Scan roots stay relative to the working directory since they usually
// arrive as CLI arguments.
func (c *Config) rebasePaths(dir string) {
	c.Rules.Path = rebase(dir, c.Rules.Path)
	c.History.Path = rebase(dir, c.History.Path)
	c.Output.Path = rebase(dir, c.Output.Path)
}

func rebase(dir, path string) string {
	if strings.TrimSpace(path) == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
