package metrics

import (
	"matching-workers/internal/models"

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

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of candidates scored across all runs",
		},
	)

	ResultsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_results_persisted_total",
			Help: "Total number of match result records written",
		},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_run_duration_seconds",
			Help:    "Duration of recommendation runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"outcome"},
	)

	FactorScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_factor_score",
			Help:    "Distribution of factor sub-scores of recommended candidates",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"factor"},
	)

	CandidateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidate_cache_lookups_total",
			Help: "Candidate pool cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveFactors records every factor of a recommended result.
func ObserveFactors(f models.FactorScores) {
	for _, name := range models.FactorNames {
		v, _ := f.Get(name)
		FactorScore.WithLabelValues(name).Observe(v)
	}
}

// TrackJob marks a job active and returns a func that records its outcome.
// An empty errorCode means success.
func TrackJob(taskType string) func(errorCode string) {
	timer := prometheus.NewTimer(WorkerJobDuration.WithLabelValues(taskType))
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return func(errorCode string) {
		timer.ObserveDuration()
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		if errorCode == "" {
			WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			return
		}
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	}
}
