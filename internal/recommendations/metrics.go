package recommendations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_requests_total",
			Help: "Recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	tierContributions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_tier_contributions_total",
			Help: "Candidate tiers that contributed rows",
		},
		[]string{"tier"},
	)

	degradedSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_degraded_signals_total",
			Help: "Optional signals that failed and were treated as empty",
		},
		[]string{"signal"},
	)

	activityAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_activity_attempts_total",
			Help: "Activity schema variant attempts by outcome",
		},
		[]string{"variant", "outcome"},
	)

	candidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendations_candidate_pool_size",
			Help:    "Deduplicated candidates per request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	responseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recommendations_response_time_seconds",
			Help: "Time to compute recommendations",
		},
		[]string{"mode"},
	)
)
