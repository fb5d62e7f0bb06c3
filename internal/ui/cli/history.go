package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"modelscan/internal/core/config"
	"modelscan/internal/data/history"
	"modelscan/internal/shared/util"
	"modelscan/internal/ui/report"
)

var (
	flagHistoryLimit  int
	flagHistorySince  string
	flagHistoryWindow string
	flagHistoryTSV    string
	flagHistoryJSON   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded scan snapshots",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots with trend deltas, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Print one snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyListCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum snapshots to list (0 = no limit with --since)")
	historyListCmd.Flags().StringVar(&flagHistorySince, "since", "", "Include snapshots at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	historyListCmd.Flags().StringVar(&flagHistoryWindow, "window", "24h", "Moving-window duration for the findings average")
	historyListCmd.Flags().StringVar(&flagHistoryTSV, "tsv", "", "Write the trend report as TSV to this path")
	historyListCmd.Flags().StringVar(&flagHistoryJSON, "json", "", "Write the trend report as JSON to this path")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer cleanup()

	since, err := parseSince(flagHistorySince)
	if err != nil {
		return err
	}
	window, err := parseHistoryWindow(flagHistoryWindow)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		fmt.Println("No history database found. Enable [history] in the config and run a scan.")
		return nil
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots, err := loadSnapshotsForTrend(store, since, flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Println("No snapshots recorded yet. Enable [history] in the config and run a scan.")
		return nil
	}

	trend, err := history.BuildTrendReport(snapshots, window)
	if err != nil {
		return err
	}

	fmt.Printf("History: %d snapshots from %s to %s\n",
		trend.ScanCount,
		trend.Since.Format("2006-01-02 15:04:05"),
		trend.Until.Format("2006-01-02 15:04:05"))
	for _, point := range trend.Points {
		fmt.Printf("  %s  %s  files=%d findings=%d (%+d) models=%d (%+d) avg=%.2f",
			point.Timestamp.Format("2006-01-02 15:04:05"),
			shortID(point.ScanID),
			point.FilesScanned,
			point.TotalFindings,
			point.DeltaFindings,
			point.ModelCount,
			point.DeltaModels,
			point.AvgFindings,
		)
		if point.CommitHash != "" {
			fmt.Printf("  commit=%s", point.CommitHash)
		}
		fmt.Println()
	}

	if flagHistoryTSV != "" {
		tsv, err := report.RenderTrendTSV(trend)
		if err != nil {
			return fmt.Errorf("render trend TSV: %w", err)
		}
		if err := writeBytes(flagHistoryTSV, tsv); err != nil {
			return fmt.Errorf("write trend TSV %q: %w", flagHistoryTSV, err)
		}
	}

	if flagHistoryJSON != "" {
		raw, err := report.RenderTrendJSON(trend)
		if err != nil {
			return fmt.Errorf("render trend JSON: %w", err)
		}
		if err := writeBytes(flagHistoryJSON, raw); err != nil {
			return fmt.Errorf("write trend JSON %q: %w", flagHistoryJSON, err)
		}
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig(false)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot, err := store.GetSnapshot(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		if history.IsCorruptError(err) {
			return nil, fmt.Errorf("history database %s looks corrupt (delete it to start fresh): %w", cfg.History.Path, err)
		}
		return nil, err
	}
	return store, nil
}

// loadSnapshotsForTrend returns snapshots in chronological order, which is
// what delta computation needs. Without --since the newest `limit` rows are
// selected and reversed; with --since the range is loaded ascending and the
// limit keeps the most recent rows.
func loadSnapshotsForTrend(store *history.Store, since time.Time, limit int) ([]history.Snapshot, error) {
	if since.IsZero() {
		recent, err := store.ListSnapshots(limit)
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
			recent[i], recent[j] = recent[j], recent[i]
		}
		return recent, nil
	}

	all, err := store.LoadSnapshots(since)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--window must be > 0, got %q", value)
	}
	return d, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeBytes(path string, data []byte) error {
	return util.WriteFileWithDirs(path, data, 0o644)
}
