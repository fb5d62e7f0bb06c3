package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"modelscan/internal/core/app"
	"modelscan/internal/core/errors"
	"modelscan/internal/core/watcher"
	"modelscan/internal/shared/observability"
	"modelscan/internal/shared/util"
	"modelscan/internal/ui/report"
)

var (
	flagWatchInterval time.Duration
	flagWatchUI       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch paths and re-scan on changes",
	Long: `Watch runs an initial scan and then re-scans whenever a supported source
file under the given paths changes. Results render as a one-line summary
per scan, or in the interactive findings browser with --ui.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 0, "Debounce window between a change and the rescan (default: config debounce_ms)")
	watchCmd.Flags().BoolVar(&flagWatchUI, "ui", false, "Render results in the interactive findings browser")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig(flagWatchUI)
	if err != nil {
		return err
	}
	defer cleanup()

	if cmd.Flags().Changed("interval") {
		if flagWatchInterval <= 0 {
			return fmt.Errorf("--interval must be > 0, got %s", flagWatchInterval)
		}
		cfg.Watch.DebounceMS = int(flagWatchInterval / time.Millisecond)
	}

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

	if cfg.Observability.Port > 0 {
		server := observability.NewServer(fmt.Sprintf(":%d", cfg.Observability.Port), cfg.Observability.EnableMetrics, app.NewHealthService(svc).Check)
		if err := server.Start(ctx); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "start observability server")
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	roots := args
	if len(roots) == 0 {
		roots = cfg.Scan.Paths
	}

	rep, err := svc.Scan(ctx, roots)
	if err != nil {
		return err
	}

	// A single slot coalesces bursts: changes arriving during a scan fold
	// into one pending rescan.
	rescan := make(chan struct{}, 1)
	w, err := watcher.New(cfg.Watch.Debounce(), svc.ShouldScanFile, svc.ShouldSkipDir, func(paths []string) {
		slog.Debug("change detected", "files", len(paths))
		select {
		case rescan <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeWatch, "create watcher")
	}
	defer w.Close()

	if err := w.Watch(roots); err != nil {
		return errors.Wrap(err, errors.CodeWatch, "watch scan paths")
	}

	limiter := util.NewLimiter(cfg.Watch.RescansPerSecond(), 1)
	runRescan := func() (*report.Report, error) {
		if err := limiter.Wait(ctx, 1); err != nil {
			return nil, err
		}
		observability.RescansTotal.Inc()
		return svc.Scan(ctx, roots)
	}

	if flagWatchUI {
		return runBrowser(ctx, rep, rescan, runRescan)
	}

	printWatchSummary(rep)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rescan:
			next, err := runRescan()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("rescan failed", "error", err)
				continue
			}
			printWatchSummary(next)
		}
	}
}

// runBrowser drives the findings browser: the rescan loop feeds fresh
// reports into the program until the user quits or the context ends.
func runBrowser(ctx context.Context, rep *report.Report, rescan <-chan struct{}, runRescan func() (*report.Report, error)) error {
	p := tea.NewProgram(newBrowserModel(rep), tea.WithAltScreen())

	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Quit()
				return
			case <-rescan:
				next, err := runRescan()
				if err != nil {
					if ctx.Err() != nil {
						p.Quit()
						return
					}
					slog.Error("rescan failed", "error", err)
					continue
				}
				p.Send(reportMsg{report: next})
			}
		}
	}()

	_, err := p.Run()
	return err
}

// printWatchSummary emits one styled line per completed scan.
func printWatchSummary(rep *report.Report) {
	ts := statusStyle.Render(rep.ScanDate.Local().Format("15:04:05"))
	tail := statusStyle.Render(fmt.Sprintf("(%d files, %dms)", rep.FilesScanned, rep.DurationMS))
	if rep.TotalFindings == 0 {
		fmt.Printf("%s %s %s\n", ts, successStyle.Render("✅ clean"), tail)
		return
	}
	fmt.Printf("%s %s %s %s\n",
		ts,
		findingStyle.Render(fmt.Sprintf("🔍 %d findings", rep.TotalFindings)),
		modelStyle.Render(strings.Join(rep.Summary.ModelsFound, ", ")),
		tail)
}
