package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "modmatch"

// BatchMetrics tracks folder outcomes for one batch process.
type BatchMetrics struct {
	registry *prometheus.Registry

	foldersTotal   *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	matchDuration  *prometheus.HistogramVec
	bytesScanned   *prometheus.CounterVec
	fallbacksTotal prometheus.Counter
	inFlight       prometheus.Gauge
}

// NewBatchMetrics registers the batch collectors in a fresh registry.
func NewBatchMetrics() *BatchMetrics {
	registry := prometheus.NewRegistry()

	foldersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "folders_total",
			Help:      "Folders matched by final status and deciding stage.",
		},
		[]string{"status", "stage"},
	)
	failuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "folder_failures_total",
			Help:      "Folders that could not be matched, by outcome.",
		},
		[]string{"outcome"},
	)
	matchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "match_duration_seconds",
			Help:      "Time spent scanning and matching one folder, by signal mode.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"mode"},
	)
	bytesScanned := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "bytes_scanned_total",
			Help:      "INI bytes read by the signal collector, by mode.",
		},
		[]string{"mode"},
	)
	fallbacksTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "full_fallbacks_total",
			Help:      "Folders re-evaluated in Full mode after an inconclusive Quick pass.",
		},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "folders_in_flight",
			Help:      "Folders currently being matched.",
		},
	)

	registry.MustRegister(foldersTotal, failuresTotal, matchDuration, bytesScanned, fallbacksTotal, inFlight)

	return &BatchMetrics{
		registry:       registry,
		foldersTotal:   foldersTotal,
		failuresTotal:  failuresTotal,
		matchDuration:  matchDuration,
		bytesScanned:   bytesScanned,
		fallbacksTotal: fallbacksTotal,
		inFlight:       inFlight,
	}
}

// Registry exposes the underlying registry.
func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// StartFolder marks one folder in flight.
func (m *BatchMetrics) StartFolder() {
	m.inFlight.Inc()
}

// FinishFolder records a decided folder.
func (m *BatchMetrics) FinishFolder(status, stage string, duration time.Duration) {
	m.inFlight.Dec()
	m.foldersTotal.WithLabelValues(status, stage).Inc()
	m.matchDuration.WithLabelValues("total").Observe(duration.Seconds())
}

// FailFolder records a folder that errored before a decision.
func (m *BatchMetrics) FailFolder(outcome string) {
	m.inFlight.Dec()
	m.failuresTotal.WithLabelValues(outcome).Inc()
}

// ObservePass records one collector pass in mode.
func (m *BatchMetrics) ObservePass(mode string, bytes int64, duration time.Duration) {
	if bytes > 0 {
		m.bytesScanned.WithLabelValues(mode).Add(float64(bytes))
	}
	m.matchDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// ObserveFallback counts a Quick to Full re-evaluation.
func (m *BatchMetrics) ObserveFallback() {
	m.fallbacksTotal.Inc()
}

// WriteTextfile writes the registry in text exposition format to path,
// creating the parent directory.
func (m *BatchMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
