// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gt_completions_total",
			Help: "Total number of completion calls by outcome",
		},
		[]string{"stage", "provider", "status"},
	)

	CompletionRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gt_completion_retries_total",
			Help: "Total number of completion retries by failure reason",
		},
		[]string{"stage", "reason"},
	)

	CircuitTripsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gt_circuit_trips_total",
			Help: "Total number of circuit breaker trips",
		},
		[]string{"provider"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gt_stage_duration_seconds",
			Help: "Duration of workflow stage processing in seconds",
		},
		[]string{"stage"},
	)

	CandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gt_candidates_total",
			Help: "Extraction candidates by validation outcome",
		},
		[]string{"stage", "outcome"},
	)

	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gt_cache_events_total",
			Help: "Completion cache hits, misses, and errors",
		},
		[]string{"backend", "event"},
	)
)
