package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matching-workers/internal/models"
)

func TestExplain(t *testing.T) {
	result := &models.MatchResult{
		CampaignID:   "campaign-001",
		CandidateID:  "creator-1",
		OverallScore: 0.795,
		Factors: models.FactorScores{
			CategoryMatch:     1.0,
			AudienceMatch:     0.5,
			BudgetFit:         0.7,
			LocationMatch:     0.3,
			EngagementQuality: 0.88,
			PastPerformance:   0.4,
			RegionalFit:       0.125,
		},
		AlgorithmVersion: "v1.0",
	}

	e := Explain(result)

	assert.Equal(t,
		"This candidate scored 79.5% compatibility. "+
			"Strong points: categoryMatch: 100.0%, engagementQuality: 88.0%. "+
			"Areas for consideration: locationMatch: 30.0%, regionalFit: 12.5%.",
		e.Text)
	assert.Equal(t, map[string]float64{"categoryMatch": 1.0, "engagementQuality": 0.88}, e.Strengths)
	assert.Equal(t, map[string]float64{"locationMatch": 0.3, "regionalFit": 0.125}, e.Considerations)
	assert.Equal(t, "campaign-001", e.CampaignID)
	assert.Equal(t, "creator-1", e.CandidateID)
	assert.Equal(t, "v1.0", e.AlgorithmVersion)
	assert.False(t, e.GeneratedAt.IsZero())
}

func TestExplain_BoundariesExcluded(t *testing.T) {
	e := Explain(&models.MatchResult{
		OverallScore: 0.55,
		Factors: models.FactorScores{
			CategoryMatch:     0.7,
			AudienceMatch:     0.4,
			BudgetFit:         0.7,
			LocationMatch:     0.4,
			EngagementQuality: 0.5,
			PastPerformance:   0.5,
			RegionalFit:       0.5,
		},
	})

	assert.Equal(t, "This candidate scored 55.0% compatibility.", e.Text)
	assert.Empty(t, e.Strengths)
	assert.Empty(t, e.Considerations)
}

func TestExplain_OnlyConsiderations(t *testing.T) {
	e := Explain(&models.MatchResult{
		OverallScore: 0.1234,
		Factors:      models.FactorScores{},
	})

	assert.Contains(t, e.Text, "This candidate scored 12.3% compatibility.")
	assert.NotContains(t, e.Text, "Strong points")
	assert.Contains(t, e.Text, "Areas for consideration: categoryMatch: 0.0%")
	assert.Len(t, e.Considerations, 7)
}
