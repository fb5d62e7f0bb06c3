package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	for i, path := range cfg.Scan.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("scan.paths[%d] must not be empty", i)
		}
	}
	for i, pattern := range cfg.Scan.Exclude {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("scan.exclude[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("scan.exclude[%d] pattern %q is invalid: %w", i, pattern, err)
		}
	}
	return nil
}

func validateRules(cfg *Config) error {
	path := strings.TrimSpace(cfg.Rules.Path)
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".toml":
		return nil
	default:
		return fmt.Errorf("rules.path must point to a .json, .yaml, .yml or .toml file, got %q", path)
	}
}

func validateOutput(cfg *Config) error {
	format := strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	switch format {
	case "json", "text", "markdown", "md", "sarif", "tsv":
		return nil
	default:
		return fmt.Errorf("output.format must be one of: json, text, markdown, sarif, tsv")
	}
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must be >= 0, got %d", cfg.Watch.DebounceMS)
	}
	if cfg.Watch.MaxRescansPerMinute < 1 {
		return fmt.Errorf("watch.max_rescans_per_minute must be >= 1, got %d", cfg.Watch.MaxRescansPerMinute)
	}
	return nil
}

func validateLogging(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
}

func validateObservability(cfg *Config) error {
	obs := cfg.Observability
	if obs.Port < 0 || obs.Port > 65535 {
		return fmt.Errorf("observability.port must be between 0 and 65535, got %d", obs.Port)
	}
	if obs.EnableTracing && strings.TrimSpace(obs.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint must not be empty when observability.enable_tracing=true")
	}
	return nil
}
