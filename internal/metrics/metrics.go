// Package metrics exposes the harness's own Prometheus metrics: run
// outcomes, barrier/validator counters, and transfer timing histograms.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every metric the harness exports. Fields are collectors
// from github.com/prometheus/client_golang, registered against a private
// registry so multiple harness instances in one process (tests, notably)
// don't collide on the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal         *prometheus.CounterVec
	ConfirmationsTotal prometheus.Counter
	BarrierIncomplete prometheus.Counter
	RunDeadlineHits   prometheus.Counter

	ValidatorEdgesTotal    *prometheus.CounterVec
	ValidatorRetriesTotal  prometheus.Counter
	HashMismatchesTotal    prometheus.Counter
	MissingArtifactsTotal  prometheus.Counter

	TransferDuration  prometheus.Histogram
	ConnectionLatency prometheus.Histogram
	BandwidthError    prometheus.Histogram
	LatencyError      prometheus.Histogram
}

// New builds and registers every metric against a fresh private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecturebench_runs_total",
			Help: "Completed harness runs, partitioned by outcome.",
		}, []string{"outcome"}),
		ConfirmationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturebench_confirmations_total",
			Help: "Tracker confirmations received across all runs.",
		}),
		BarrierIncomplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturebench_barrier_incomplete_total",
			Help: "Runs whose completion barrier hit its deadline before every confirmation arrived.",
		}),
		RunDeadlineHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturebench_run_deadline_total",
			Help: "Runs terminated by the run-wide deadline.",
		}),
		ValidatorEdgesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecturebench_validator_edges_total",
			Help: "Validated overlay edges, partitioned by pass/fail.",
		}, []string{"result"}),
		ValidatorRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturebench_validator_retries_total",
			Help: "Validator probe retries issued for drifting edges.",
		}),
		HashMismatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturebench_hash_mismatches_total",
			Help: "Artifact integrity checks that failed on hash comparison.",
		}),
		MissingArtifactsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecturebench_missing_artifacts_total",
			Help: "Artifact integrity checks that found no candidate file.",
		}),
		TransferDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lecturebench_transfer_duration_seconds",
			Help:    "Per-endpoint file transfer duration.",
			Buckets: prometheus.DefBuckets,
		}),
		ConnectionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lecturebench_connection_latency_seconds",
			Help:    "Per-endpoint connection-establishment duration, excluding file transfer.",
			Buckets: prometheus.DefBuckets,
		}),
		BandwidthError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lecturebench_bandwidth_error_percent",
			Help:    "Measured-vs-applied bandwidth error percentage across validated edges.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 20, 30, 50},
		}),
		LatencyError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lecturebench_latency_error_percent",
			Help:    "Measured-vs-applied latency error percentage across validated edges.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 20, 30, 50},
		}),
	}

	reg.MustRegister(
		m.RunsTotal, m.ConfirmationsTotal, m.BarrierIncomplete, m.RunDeadlineHits,
		m.ValidatorEdgesTotal, m.ValidatorRetriesTotal, m.HashMismatchesTotal, m.MissingArtifactsTotal,
		m.TransferDuration, m.ConnectionLatency, m.BandwidthError, m.LatencyError,
	)
	return m
}

// Handler returns an HTTP handler serving this instance's metrics in the
// Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
