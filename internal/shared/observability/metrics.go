package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modelscan_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modelscan_scan_seconds",
		Help:    "Wall-clock time for a full scan across all roots.",
		Buckets: prometheus.DefBuckets,
	})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelscan_files_scanned_total",
		Help: "Total number of source files analyzed.",
	})

	FilesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelscan_files_skipped_total",
		Help: "Total number of files skipped due to read or parse failures.",
	})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelscan_findings_total",
		Help: "Total number of model identifier findings by type.",
	}, []string{"type"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelscan_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelscan_rescans_total",
		Help: "Total number of rescans triggered in watch mode.",
	})

	HistorySnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelscan_history_snapshots_total",
		Help: "Total number of scan snapshots persisted to the history store.",
	})
)
