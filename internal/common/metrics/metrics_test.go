package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"matching-workers/internal/models"
)

func TestTrackJob(t *testing.T) {
	const task = "metrics-test-task"

	done := TrackJob(task)
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
	done("")

	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(task)))

	TrackJob(task)("RESULT_PERSIST_FAILED")
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(task, "RESULT_PERSIST_FAILED")))
}

func TestObserveFactors(t *testing.T) {
	ObserveFactors(models.FactorScores{CategoryMatch: 1, RegionalFit: 0.5})

	assert.Equal(t, len(models.FactorNames), testutil.CollectAndCount(FactorScore))
}
