package matching

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matching-workers/internal/models"
)

func resultsWithScores(scores ...float64) []models.MatchResult {
	out := make([]models.MatchResult, len(scores))
	for i, s := range scores {
		out[i] = models.MatchResult{CandidateID: fmt.Sprintf("c%d", i), OverallScore: s}
	}
	return out
}

func TestPolicy_Apply(t *testing.T) {
	p := Policy{MinScore: 0.3, MaxResults: 20}

	t.Run("threshold is strict", func(t *testing.T) {
		ranked := p.Apply(resultsWithScores(0.3, 0.30000001, 0.29, 0.9))
		require.Len(t, ranked, 2)
		assert.Equal(t, "c3", ranked[0].CandidateID)
		assert.Equal(t, "c1", ranked[1].CandidateID)
	})

	t.Run("ties keep fetch order", func(t *testing.T) {
		ranked := p.Apply(resultsWithScores(0.5, 0.8, 0.5, 0.5, 0.8))
		ids := make([]string, len(ranked))
		for i, r := range ranked {
			ids[i] = r.CandidateID
		}
		assert.Equal(t, []string{"c1", "c4", "c0", "c2", "c3"}, ids)
	})

	t.Run("ranks start at one", func(t *testing.T) {
		ranked := p.Apply(resultsWithScores(0.4, 0.9, 0.6))
		for i, r := range ranked {
			assert.Equal(t, i+1, r.Rank)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		ranked := p.Apply(nil)
		assert.NotNil(t, ranked)
		assert.Empty(t, ranked)
	})

	t.Run("nothing clears the threshold", func(t *testing.T) {
		assert.Empty(t, p.Apply(resultsWithScores(0.1, 0.2, 0.3)))
	})
}

func TestPolicy_Apply_Properties(t *testing.T) {
	p := Policy{MinScore: DefaultMinScore, MaxResults: DefaultMaxResults}
	r := rand.New(rand.NewSource(99))

	for round := 0; round < 50; round++ {
		scores := make([]float64, r.Intn(80))
		for i := range scores {
			scores[i] = float64(r.Intn(11)) / 10
		}

		ranked := p.Apply(resultsWithScores(scores...))

		assert.LessOrEqual(t, len(ranked), DefaultMaxResults)
		for i, res := range ranked {
			assert.Greater(t, res.OverallScore, DefaultMinScore)
			if i > 0 {
				assert.LessOrEqual(t, res.OverallScore, ranked[i-1].OverallScore)
			}
		}
	}
}

func TestPolicy_Apply_TruncatesToMaxResults(t *testing.T) {
	scores := make([]float64, 30)
	for i := range scores {
		scores[i] = 0.31 + float64(i)/100
	}

	ranked := Policy{MinScore: 0.3, MaxResults: 20}.Apply(resultsWithScores(scores...))

	require.Len(t, ranked, 20)
	assert.Equal(t, "c29", ranked[0].CandidateID)
	assert.Equal(t, "c10", ranked[19].CandidateID)
}
