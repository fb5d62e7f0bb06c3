// Package cli wires the command tree: scan, watch, history, rules, and
// version. Commands return errors; Execute maps them onto process exit
// codes so main stays a one-liner.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"modelscan/internal/core/config"
	"modelscan/internal/engine/rules"
	"modelscan/internal/shared/observability"
)

// errFindingsPresent signals exit code 2: the scan itself succeeded, but
// findings exist and --fail-on-findings is set.
var errFindingsPresent = errors.New("model identifiers found")

var (
	flagConfigPath string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "modelscan [command]",
	Short:        "Find hardcoded AI model identifiers in source trees",
	SilenceUsage: true,
	Long: `modelscan parses source files with tree-sitter and reports hardcoded AI
model identifiers: string literals, variable assignments that later reach
API calls, and identifiers built from concatenation or templates.`,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default: ./modelscan.toml, then the user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// Execute runs the command tree and returns the process exit code:
// 0 success, 1 fatal error, 2 findings present with --fail-on-findings.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFindingsPresent):
		return 2
	default:
		return 1
	}
}

// loadConfig resolves the effective configuration (file or defaults, then
// environment overrides) and installs the logger. The returned cleanup
// closes the log file in UI mode.
func loadConfig(uiMode bool) (*config.Config, func(), error) {
	cfg, err := config.LoadOrDefault(flagConfigPath)
	if err != nil {
		return nil, nil, err
	}
	config.ApplyEnvOverrides(cfg)

	level := cfg.Logging.Level
	if strings.TrimSpace(flagLogLevel) != "" {
		level = flagLogLevel
	}
	cleanup, err := configureLogging(level, uiMode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cleanup, nil
}

// loadRules compiles the configured rule file, or the embedded defaults
// when no path is set.
func loadRules(cfg *config.Config) (*rules.RuleSet, error) {
	opts := rules.Options{CaseSensitive: cfg.Matching.CaseSensitive}
	if strings.TrimSpace(cfg.Rules.Path) != "" {
		return rules.Load(cfg.Rules.Path, opts)
	}
	return rules.Default(opts), nil
}

// configureLogging sets the default slog logger. Reports own stdout, so
// logs always go to stderr; in UI mode the alternate screen owns the
// terminal and logs go to a state file instead. Log file problems degrade
// to stderr with a warning rather than aborting.
func configureLogging(levelName string, uiMode bool) (func(), error) {
	level, err := parseLogLevel(levelName)
	if err != nil {
		return nil, err
	}

	output := os.Stderr
	closeFn := func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
				closeFn = func() { _ = f.Close() }
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", name)
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "modelscan", "modelscan.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "modelscan", "modelscan.log")
	}

	return "modelscan.log"
}

// setupTracing installs the OTLP exporter when tracing is configured. The
// returned func flushes pending spans and is safe to call when tracing is
// off. Exporter failures log a warning and leave the no-op tracer in place.
func setupTracing(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Observability.EnableTracing || strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return func() {}
	}
	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		return func() {}
	}
	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}
}
