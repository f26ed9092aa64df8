package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec // labels: status={SUCCESS,FAILED}
	RunDuration      prometheus.Histogram
	LastSuccess      prometheus.Gauge
	SchedulerRunning prometheus.Gauge

	// Catalog retrieval metrics.
	FetchDuration *prometheus.HistogramVec // labels: feed={current,historical}
	FetchErrors   *prometheus.CounterVec   // labels: feed
	CatalogCache  *prometheus.CounterVec   // labels: feed, result={hit,miss}

	// Normalization and estimation metrics.
	EventsNormalized *prometheus.CounterVec // labels: feed
	NodesSkipped     *prometheus.CounterVec // labels: feed, reason
	ProbabilityCells prometheus.Gauge
	WindowYears      prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.LastSuccess,
		m.SchedulerRunning,
		m.FetchDuration,
		m.FetchErrors,
		m.CatalogCache,
		m.EventsNormalized,
		m.NodesSkipped,
		m.ProbabilityCells,
		m.WindowYears,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-estimate-store run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "scheduler_running",
			Help:      "1 when the scheduled loop is active, 0 when shut down.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_etl",
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Catalog download and decode duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"feed"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "catalog_fetch_errors_total",
			Help:      "Catalog retrieval failures by feed.",
		}, []string{"feed"}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "catalog_cache_total",
			Help:      "Catalog cache lookups by feed and result.",
		}, []string{"feed", "result"}),
		EventsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "events_normalized_total",
			Help:      "Canonical events produced by feed.",
		}, []string{"feed"}),
		NodesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_etl",
			Name:      "nodes_skipped_total",
			Help:      "Raw catalog nodes dropped during normalization by feed and reason.",
		}, []string{"feed", "reason"}),
		ProbabilityCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "probability_cells",
			Help:      "Number of (region, intensity) cells in the latest analysis.",
		}),
		WindowYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_etl",
			Name:      "analysis_window_years",
			Help:      "Length of the observation window used by the latest analysis.",
		}),
	}
}
