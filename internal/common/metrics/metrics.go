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
)

var (
	CandidatesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidates_evaluated_total",
			Help: "Candidate announcements evaluated, by outcome",
		},
		[]string{"task_type", "outcome"},
	)

	BehaviorDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_behavior_degraded_total",
			Help: "Ranking runs that continued without behavior signals",
		},
		[]string{"task_type"},
	)

	RecommendationsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_returned_count",
			Help:    "Number of recommendations returned per run",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"task_type"},
	)

	NotificationsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_notifications_recorded_total",
			Help: "Smart recommendation notifications recorded for delivery",
		},
	)
)
