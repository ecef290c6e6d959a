// Package metrics provides observability for matrix ingestion and search.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ingestion outcomes and search latency.
type Metrics struct {
	IngestsTotal      prometheus.Counter
	IngestFailures    prometheus.Counter
	IngestedTeams     prometheus.Gauge
	IngestedAccesses  prometheus.Gauge
	IngestDuration    prometheus.Histogram
	SuggestDuration   prometheus.Histogram
	SuggestResultSize prometheus.Histogram
}

// New registers all matrix metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		IngestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rbac_ingests_total",
			Help: "Total number of successful matrix ingestions",
		}),
		IngestFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rbac_ingest_failures_total",
			Help: "Total number of failed matrix ingestions",
		}),
		IngestedTeams: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rbac_matrix_teams",
			Help: "Teams in the most recently ingested matrix",
		}),
		IngestedAccesses: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rbac_matrix_accesses",
			Help: "Accesses in the most recently ingested matrix",
		}),
		IngestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbac_ingest_duration_seconds",
			Help:    "Duration of matrix ingestion runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SuggestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbac_suggest_duration_seconds",
			Help:    "Duration of suggestion queries (autocomplete critical path)",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		SuggestResultSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbac_suggest_results",
			Help:    "Number of suggestions returned per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		}),
	}
}

// ObserveIngest records a successful ingestion.
func (m *Metrics) ObserveIngest(start time.Time, teams, accesses int) {
	m.IngestsTotal.Inc()
	m.IngestedTeams.Set(float64(teams))
	m.IngestedAccesses.Set(float64(accesses))
	m.IngestDuration.Observe(time.Since(start).Seconds())
}

// ObserveIngestFailure records a failed ingestion attempt.
func (m *Metrics) ObserveIngestFailure() {
	m.IngestFailures.Inc()
}

// ObserveSuggest records a suggestion query.
func (m *Metrics) ObserveSuggest(start time.Time, results int) {
	m.SuggestDuration.Observe(time.Since(start).Seconds())
	m.SuggestResultSize.Observe(float64(results))
}
