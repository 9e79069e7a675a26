package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScreeningOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_operations_total",
			Help: "Total number of screening operations by outcome",
		},
		[]string{"operation", "status"},
	)

	ScreeningOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screening_operation_duration_seconds",
			Help:    "Duration of screening operations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	// AdverseMediaSearchFailures counts searches that collapsed to an empty
	// bundle because the backend failed, as opposed to returning no hits.
	AdverseMediaSearchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adverse_media_search_failures_total",
			Help: "Total number of adverse-media searches that failed and returned an empty bundle",
		},
	)

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
