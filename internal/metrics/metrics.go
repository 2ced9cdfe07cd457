// Package metrics exposes Prometheus instrumentation for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ingestRunsTotal     *prometheus.CounterVec
	ingestScannedTotal  prometheus.Counter
	ingestUpsertedTotal prometheus.Counter
	ingestErrorsTotal   prometheus.Counter
}

// New creates the registry and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.ingestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_runs_total",
		Help: "Total number of ingestion runs.",
	}, []string{"status"})
	m.ingestScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_objects_scanned_total",
		Help: "Total number of objects scanned across ingestion runs.",
	})
	m.ingestUpsertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_upserted_total",
		Help: "Total number of rows upserted across ingestion runs.",
	})
	m.ingestErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_errors_total",
		Help: "Total number of per-object and listing errors across ingestion runs.",
	})

	reg.MustRegister(
		m.ingestRunsTotal,
		m.ingestScannedTotal,
		m.ingestUpsertedTotal,
		m.ingestErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveIngestRun records the outcome of one ingestion run.
func (m *Metrics) ObserveIngestRun(status string, scanned, upserted, errors int) {
	m.ingestRunsTotal.WithLabelValues(status).Inc()
	m.ingestScannedTotal.Add(float64(scanned))
	m.ingestUpsertedTotal.Add(float64(upserted))
	m.ingestErrorsTotal.Add(float64(errors))
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
