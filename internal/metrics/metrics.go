// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Intake outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	IntakeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_intake_total",
			Help: "Subscription submissions by outcome.",
		}, []string{"outcome"})

	InsertDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subscription_insert_duration_seconds",
			Help:    "Latency of the subscriptions INSERT, successful or not.",
			Buckets: prometheus.DefBuckets,
		})

	InsertErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_insert_errors_total",
			Help: "Cumulative number of failed subscription inserts.",
		})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method, and status code.",
		}, []string{"route", "method", "code"})
)

func init() {
	prometheus.MustRegister(
		IntakeTotal,
		InsertDuration,
		InsertErrorsTotal,
		HTTPRequestsTotal,
	)
}
