// Package metrics defines Prometheus collectors for the instance pool service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway (Wuzapi) metrics
var (
	// GatewayOpsTotal tracks gateway calls by operation and status
	GatewayOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wuzapi_operations_total",
			Help: "Total Wuzapi gateway calls by operation and status",
		},
		[]string{"operation", "status"},
	)

	// GatewayOpDuration tracks gateway call latency in seconds
	GatewayOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wuzapi_operation_duration_seconds",
			Help:    "Wuzapi gateway call duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Allocation metrics
var (
	// ClaimsTotal tracks instance claims by outcome
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instance_claims_total",
			Help: "Instance claim attempts by outcome (allocated/already_allocated/exhausted/error)",
		},
		[]string{"outcome"},
	)

	// ReleasesTotal tracks instances returned to the pool
	ReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "instance_releases_total",
			Help: "Instances returned to the available pool",
		},
	)
)

// Auth metrics
var (
	// TokenVerificationsTotal tracks bearer token verifications by status
	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_verifications_total",
			Help: "Bearer token verifications by status (ok/invalid/error)",
		},
		[]string{"status"},
	)
)
