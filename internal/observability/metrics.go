package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// readings pipeline.
type Metrics struct {
	ReadingsConsumed prometheus.Counter
	ReadingsProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	ReadingsExcluded prometheus.Counter // readings from sites outside the catchment boundary
	SitesAdmitted    prometheus.Gauge
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catchment",
			Name:      "readings_consumed_total",
			Help:      "Total readings read from the source topic.",
		}),
		ReadingsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catchment",
			Name:      "readings_produced_total",
			Help:      "Total enriched readings written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catchment",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		ReadingsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catchment",
			Name:      "readings_excluded_total",
			Help:      "Total readings dropped because their site falls outside the catchment boundary.",
		}),
		SitesAdmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catchment",
			Name:      "sites_admitted",
			Help:      "Number of sites currently admitted to the catchment.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catchment",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catchment",
			Name:      "batch_size",
			Help:      "Number of readings per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catchment",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.ReadingsConsumed,
		m.ReadingsProduced,
		m.TransformErrors,
		m.ReadingsExcluded,
		m.SitesAdmitted,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "catchment", Name: "readings_consumed_total"}),
		ReadingsProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "catchment", Name: "readings_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "catchment", Name: "transform_errors_total"}),
		ReadingsExcluded:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "catchment", Name: "readings_excluded_total"}),
		SitesAdmitted:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "catchment", Name: "sites_admitted"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "catchment", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "catchment", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "catchment", Name: "batch_processing_duration_seconds"}),
	}
}
