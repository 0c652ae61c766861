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

	// GenerationRequests counts external generator calls by outcome
	// (ok, rate_limited, unauthenticated, unavailable).
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_generation_requests_total",
			Help: "External generation calls by provider, kind and outcome",
		},
		[]string{"provider", "kind", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_generation_duration_seconds",
			Help:    "Latency of external generation calls",
			Buckets: []float64{1, 5, 10, 20, 40, 60, 90, 120, 180},
		},
		[]string{"provider", "kind"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_cache_lookups_total",
			Help: "Recommendation cache lookups by kind and status",
		},
		[]string{"kind", "status"},
	)

	MergeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_merge_fallbacks_total",
			Help: "Fields resolved by pattern or default values while merging",
		},
		[]string{"kind", "field"},
	)

	CoalescedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_coalesced_requests_total",
			Help: "Requests that shared an in-flight generation",
		},
		[]string{"kind"},
	)
)
