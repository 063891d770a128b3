// Package metrics collects and exposes Prometheus metrics for the token
// issuance flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the service layer records against.
type Recorder interface {
	RecordTokenDecision(outcome string)
	RecordIssueLatency(d time.Duration)
}

// Nop discards all measurements. Used by tests.
type Nop struct{}

func (Nop) RecordTokenDecision(string)       {}
func (Nop) RecordIssueLatency(time.Duration) {}

// Collector records against a Prometheus registry.
type Collector struct {
	tokenDecisions *prometheus.CounterVec
	issueLatency   prometheus.Histogram
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tokenDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "callgate_token_decisions_total",
			Help: "Token issuance decisions by outcome.",
		}, []string{"outcome"}),
		issueLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "callgate_token_issue_seconds",
			Help:    "Latency of successful token issuance.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.tokenDecisions,
		c.issueLatency,
	)

	return c
}

func (c *Collector) RecordTokenDecision(outcome string) {
	c.tokenDecisions.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordIssueLatency(d time.Duration) {
	c.issueLatency.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
