package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks pipeline activity on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	entitiesExtracted *prometheus.CounterVec
	mappingsCreated   *prometheus.CounterVec
	invalidRecords    *prometheus.CounterVec
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

// NewMetrics builds and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entitiesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskdata",
			Name:      "entities_extracted_total",
			Help:      "Entity records extracted, by entity type.",
		}, []string{"entity_type"}),
		mappingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskdata",
			Name:      "mappings_created_total",
			Help:      "Relationship mappings created, by mapping table.",
		}, []string{"mapping_type"}),
		invalidRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskdata",
			Name:      "invalid_records_total",
			Help:      "Records failing validation, by entity type.",
		}, []string{"entity_type"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskdata",
			Name:      "runs_total",
			Help:      "Pipeline runs, by terminal status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskdata",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.entitiesExtracted,
		m.mappingsCreated,
		m.invalidRecords,
		m.runsTotal,
		m.runDuration,
	)
	return m
}

// Registry exposes the underlying registry for scraping or inspection.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
