// Package metrics provides Prometheus metrics for the constant-inference
// pipeline: evidence volumes, per-pass timings, and converged chart counts.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every metric the pipeline publishes.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Evidence volume
	playRecordsProcessed prometheus.Counter
	snapshotsProcessed   prometheus.Counter
	narrowings           prometheus.Counter
	contradictions       prometheus.Counter

	// Fixpoint progress
	passesRun    prometheus.Counter
	passDuration prometheus.Histogram

	// Converged chart state, labeled by status
	chartsByStatus *prometheus.GaugeVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(sub string) Option {
	return func(m *Manager) {
		if sub != "" {
			m.subsystem = sub
		}
	}
}

// WithPassDurationBuckets sets custom histogram buckets for pass timings.
func WithPassDurationBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// NewManager creates a metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "constprop",
		subsystem: "estimate",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)
	m.playRecordsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "play_records_processed_total",
		Help: "Play records consumed by the new-evidence pass.",
	})
	m.snapshotsProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshots_processed_total",
		Help: "Rating-target snapshots consumed by order-evidence passes.",
	})
	m.narrowings = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "narrowings_total",
		Help: "Candidate-set shrink operations that changed a chart.",
	})
	m.contradictions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "contradictions_total",
		Help: "Narrow attempts that would have emptied a candidate set.",
	})
	m.passesRun = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "passes_total",
		Help: "Fixpoint passes executed.",
	})
	m.passDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "pass_duration_seconds",
		Help:    "Wall time of one fixpoint pass over all users.",
		Buckets: m.buckets,
	})
	m.chartsByStatus = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "charts",
		Help: "Charts per candidate-store status.",
	}, []string{"status"})

	return m
}

// Handler exposes the manager's registry over HTTP.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global manager instance; the pipeline records through package functions.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// AddPlayRecords counts consumed play records.
func AddPlayRecords(n int) { globalManager.playRecordsProcessed.Add(float64(n)) }

// AddSnapshots counts consumed rating-target snapshots.
func AddSnapshots(n int) { globalManager.snapshotsProcessed.Add(float64(n)) }

// IncNarrowing counts one candidate-set shrink.
func IncNarrowing() { globalManager.narrowings.Inc() }

// AddContradictions counts newly recorded contradictions.
func AddContradictions(n int) {
	if n > 0 {
		globalManager.contradictions.Add(float64(n))
	}
}

// IncPass counts one fixpoint pass and observes its duration.
func IncPass(d time.Duration) {
	globalManager.passesRun.Inc()
	globalManager.passDuration.Observe(d.Seconds())
}

// SetChartsByStatus publishes the current chart count for one status label.
func SetChartsByStatus(status string, n int) {
	globalManager.chartsByStatus.WithLabelValues(status).Set(float64(n))
}

// Handler exposes the global registry over HTTP.
func Handler() http.Handler { return globalManager.Handler() }
