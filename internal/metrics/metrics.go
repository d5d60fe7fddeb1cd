// Package metrics exposes prometheus collectors for moderation and ledger calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/mikey/chainblog/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chainblog"

// Collector records moderation outcomes on its own registry
type Collector struct {
	registry     *prometheus.Registry
	outcomes     *prometheus.CounterVec
	attempts     prometheus.Histogram
	duration     *prometheus.HistogramVec
	ledgerErrors *prometheus.CounterVec
}

// NewCollector creates and registers the collectors
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_outcomes_total",
			Help:      "Classification calls by terminal outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "moderation_remote_attempts",
			Help:      "Remote attempts made per classification that reached the network.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "moderation_duration_seconds",
			Help:      "Wall time of classification calls, including backoff.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"outcome"}),
		ledgerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_errors_total",
			Help:      "Failed ledger calls by operation.",
		}, []string{"operation"}),
	}

	c.registry.MustRegister(c.outcomes, c.attempts, c.duration, c.ledgerErrors)
	return c
}

// RecordClassification implements core.MetricsRecorder
func (c *Collector) RecordClassification(outcome core.Outcome, attempts int, elapsed time.Duration) {
	c.outcomes.WithLabelValues(string(outcome)).Inc()
	c.duration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
	if attempts > 0 {
		c.attempts.Observe(float64(attempts))
	}
}

// RecordLedgerError implements core.MetricsRecorder
func (c *Collector) RecordLedgerError(operation string) {
	c.ledgerErrors.WithLabelValues(operation).Inc()
}

// Handler serves the registry in the prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
