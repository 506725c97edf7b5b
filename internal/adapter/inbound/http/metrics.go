// Package http provides the inbound HTTP adapter: the decision endpoint,
// health check, and Prometheus metrics exposition.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the decision point.
type Metrics struct {
	DecisionsTotal    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsTotal     *prometheus.CounterVec
	CacheResultsTotal *prometheus.CounterVec
	RefreshTotal      *prometheus.CounterVec
	AuditDropsTotal   prometheus.Counter
}

// NewMetrics creates and registers all metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rangeracl",
				Name:      "decisions_total",
				Help:      "Total access decisions, by result",
			},
			[]string{"result"}, // allow, deny, error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rangeracl",
				Name:      "request_duration_seconds",
				Help:      "Decision request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rangeracl",
				Name:      "requests_total",
				Help:      "Total HTTP requests, by method and status",
			},
			[]string{"method", "status"},
		),
		CacheResultsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rangeracl",
				Name:      "cache_results_total",
				Help:      "Decision cache lookups, by outcome",
			},
			[]string{"cache", "outcome"}, // cache=decision|subject, outcome=hit|miss
		),
		RefreshTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rangeracl",
				Name:      "policy_refresh_total",
				Help:      "Policy source refresh attempts, by outcome",
			},
			[]string{"outcome"}, // ok, error
		),
		AuditDropsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "rangeracl",
				Name:      "audit_drops_total",
				Help:      "Total audit records dropped due to backpressure",
			},
		),
	}
}
