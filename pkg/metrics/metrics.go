package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by gate (site|admin) and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maplewood_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"gate", "result"},
	)

	// Lookups counts guest lookups by outcome (found|not_found|invalid).
	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maplewood_lookups_total",
			Help: "Total number of guest name lookups",
		},
		[]string{"result"},
	)

	// Submissions counts RSVP submissions by outcome (committed|rejected|deadline).
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maplewood_submissions_total",
			Help: "Total number of RSVP submissions",
		},
		[]string{"result"},
	)

	// ConfirmationsSent counts confirmation emails dispatched by the relay.
	ConfirmationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maplewood_confirmations_total",
			Help: "Total number of confirmation email deliveries",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maplewood_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
