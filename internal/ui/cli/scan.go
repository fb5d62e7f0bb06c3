package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"modelscan/internal/core/app"
	"modelscan/internal/core/config"
	"modelscan/internal/ui/report"
)

var (
	flagScanRules          string
	flagScanFormat         string
	flagScanOutput         string
	flagScanWorkers        int
	flagScanIncludeTests   bool
	flagScanExclude        []string
	flagScanCaseSensitive  bool
	flagScanFailOnFindings bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan paths once and write a findings report",
	Long: `Scan walks the given paths (default: scan.paths from the config, then the
working directory), parses every supported source file, and writes a report
of all AI model identifiers it finds.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagScanRules, "rules", "", "Rule file (json, yaml, or toml; default: embedded rules)")
	scanCmd.Flags().StringVar(&flagScanFormat, "format", "", "Report format: "+strings.Join(report.Formats(), ", "))
	scanCmd.Flags().StringVarP(&flagScanOutput, "output", "o", "", "Write the report to this file instead of stdout")
	scanCmd.Flags().IntVar(&flagScanWorkers, "workers", 0, "Parallel file workers (0 = one per CPU)")
	scanCmd.Flags().BoolVar(&flagScanIncludeTests, "include-tests", false, "Scan test files too")
	scanCmd.Flags().StringArrayVar(&flagScanExclude, "exclude", nil, "Glob for files or directories to skip (repeatable)")
	scanCmd.Flags().BoolVar(&flagScanCaseSensitive, "case-sensitive", false, "Match model names case-sensitively")
	scanCmd.Flags().BoolVar(&flagScanFailOnFindings, "fail-on-findings", false, "Exit with code 2 when findings are present")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer cleanup()

	applyScanFlags(cmd, cfg)

	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}

	svc, err := app.NewService(cfg, rs)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flushTraces := setupTracing(ctx, cfg)
	defer flushTraces()

	rep, err := svc.Scan(ctx, args)
	if err != nil {
		return err
	}

	if err := report.Write(rep, cfg.Output.Format, cfg.Output.Path); err != nil {
		return err
	}
	if writesToFile(cfg.Output.Path) {
		printScanSummary(rep)
	}

	if cfg.Scan.FailOnFindings && rep.TotalFindings > 0 {
		return fmt.Errorf("%w: %d findings across %d files", errFindingsPresent, rep.TotalFindings, rep.FilesScanned)
	}
	return nil
}

// applyScanFlags folds explicitly-set flags over the loaded config; unset
// flags keep the config value.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("rules") {
		cfg.Rules.Path = flagScanRules
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = flagScanFormat
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path = flagScanOutput
	}
	if cmd.Flags().Changed("workers") {
		cfg.Scan.Workers = flagScanWorkers
	}
	if cmd.Flags().Changed("include-tests") {
		cfg.Scan.IncludeTests = flagScanIncludeTests
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, flagScanExclude...)
	}
	if cmd.Flags().Changed("case-sensitive") {
		cfg.Matching.CaseSensitive = flagScanCaseSensitive
	}
	if cmd.Flags().Changed("fail-on-findings") {
		cfg.Scan.FailOnFindings = flagScanFailOnFindings
	}
}

func writesToFile(path string) bool {
	return path != "" && path != "-"
}

// printScanSummary writes a one-line styled summary to stderr. Used when
// the report itself went to a file, so the terminal still shows the
// outcome.
func printScanSummary(rep *report.Report) {
	line := statusStyle.Render(fmt.Sprintf("%d files in %dms", rep.FilesScanned, rep.DurationMS))
	if rep.TotalFindings == 0 {
		fmt.Fprintf(os.Stderr, "%s %s\n", successStyle.Render("✅ No model identifiers found"), line)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n",
		findingStyle.Render(fmt.Sprintf("🔍 %d findings", rep.TotalFindings)),
		modelStyle.Render(fmt.Sprintf("%d models", len(rep.Summary.ModelsFound))),
		line)
}
