package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: MODELSCAN_[SECTION]_[KEY]
// (e.g., MODELSCAN_OUTPUT_FORMAT).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvInt(&cfg.Scan.Workers, "MODELSCAN_SCAN_WORKERS")
	setEnvBool(&cfg.Scan.IncludeTests, "MODELSCAN_SCAN_INCLUDE_TESTS")
	setEnvBool(&cfg.Scan.FailOnFindings, "MODELSCAN_SCAN_FAIL_ON_FINDINGS")

	// Rules and matching
	setEnvString(&cfg.Rules.Path, "MODELSCAN_RULES_PATH")
	setEnvBool(&cfg.Matching.CaseSensitive, "MODELSCAN_MATCHING_CASE_SENSITIVE")

	// Output
	setEnvString(&cfg.Output.Format, "MODELSCAN_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "MODELSCAN_OUTPUT_PATH")

	// History
	setEnvBool(&cfg.History.Enabled, "MODELSCAN_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "MODELSCAN_HISTORY_PATH")

	// Watch
	setEnvInt(&cfg.Watch.DebounceMS, "MODELSCAN_WATCH_DEBOUNCE_MS")
	setEnvInt(&cfg.Watch.MaxRescansPerMinute, "MODELSCAN_WATCH_MAX_RESCANS_PER_MINUTE")

	// Logging
	setEnvString(&cfg.Logging.Level, "MODELSCAN_LOGGING_LEVEL")

	// Observability
	setEnvInt(&cfg.Observability.Port, "MODELSCAN_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "MODELSCAN_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "MODELSCAN_OBSERVABILITY_ENABLE_TRACING")
	setEnvBool(&cfg.Observability.EnableMetrics, "MODELSCAN_OBSERVABILITY_ENABLE_METRICS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}
