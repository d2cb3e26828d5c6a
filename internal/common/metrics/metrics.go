// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SuggestionsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_suggestions_returned",
			Help:    "Number of suggestions returned per request",
			Buckets: []float64{0, 1, 2, 4, 6, 8},
		},
	)

	SuggestionScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_suggestion_score",
			Help:    "Scores of the suggestions that were returned",
			Buckets: prometheus.LinearBuckets(50, 10, 6),
		},
	)

	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidates_dropped_total",
			Help: "Candidates excluded from a pool",
		},
		[]string{"reason"},
	)

	SignalFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_signal_fallbacks_total",
			Help: "Signal lookups that degraded to cold-start defaults",
		},
		[]string{"source"},
	)

	CatalogPageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_page_requests_total",
			Help: "Catalog page requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Drop reasons for CandidatesDropped.
const (
	DropReasonUpstream  = "upstream_error"
	DropReasonInvalid   = "invalid"
	DropReasonDuplicate = "duplicate"
	DropReasonPage      = "page_failed"
)

// Outcomes for CatalogPageRequests.
const (
	OutcomeLoaded    = "loaded"
	OutcomeExhausted = "exhausted"
	OutcomeInFlight  = "rejected_in_flight"
	OutcomeStale     = "stale"
	OutcomeFailed    = "failed"
)
