package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one
// pipeline run. The process is a batch job with no listener, so values are
// gathered and logged in the final report rather than scraped.
type Metrics struct {
	ObjectsListed    prometheus.Counter
	ObjectsFiltered  prometheus.Counter
	UnparseableNames prometheus.Counter
	PipelineRunning  prometheus.Gauge

	Fetches       *prometheus.CounterVec // labels: outcome={fetched,failed,skipped}
	FetchDuration prometheus.Histogram

	Conversions        *prometheus.CounterVec // labels: outcome={converted,failed}
	ConversionDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ObjectsListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tigerrad",
			Name:      "objects_listed_total",
			Help:      "Total objects returned by the archive listing.",
		}),
		ObjectsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tigerrad",
			Name:      "objects_filtered_total",
			Help:      "Objects inside the time window and queued for fetching.",
		}),
		UnparseableNames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tigerrad",
			Name:      "unparseable_names_total",
			Help:      "Listed objects whose basename carried no parseable scan time.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tigerrad",
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 otherwise.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tigerrad",
			Name:      "fetches_total",
			Help:      "Object fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tigerrad",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single object fetch.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tigerrad",
			Name:      "conversions_total",
			Help:      "Profile conversions by outcome.",
		}, []string{"outcome"}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tigerrad",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of a single converter call.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
	}

	prometheus.MustRegister(
		m.ObjectsListed,
		m.ObjectsFiltered,
		m.UnparseableNames,
		m.PipelineRunning,
		m.Fetches,
		m.FetchDuration,
		m.Conversions,
		m.ConversionDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ObjectsListed:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tigerrad", Name: "objects_listed_total"}),
		ObjectsFiltered:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tigerrad", Name: "objects_filtered_total"}),
		UnparseableNames:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tigerrad", Name: "unparseable_names_total"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "tigerrad", Name: "pipeline_running"}),
		Fetches:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "tigerrad", Name: "fetches_total"}, []string{"outcome"}),
		FetchDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "tigerrad", Name: "fetch_duration_seconds"}),
		Conversions:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "tigerrad", Name: "conversions_total"}, []string{"outcome"}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "tigerrad", Name: "conversion_duration_seconds"}),
	}
}
