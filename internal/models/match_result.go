package models

import "time"

// Factor names, in weight order. They are also the keys used in stored
// records, explanations and metrics.
const (
	FactorCategoryMatch     = "categoryMatch"
	FactorAudienceMatch     = "audienceMatch"
	FactorBudgetFit         = "budgetFit"
	FactorLocationMatch     = "locationMatch"
	FactorEngagementQuality = "engagementQuality"
	FactorPastPerformance   = "pastPerformance"
	FactorRegionalFit       = "regionalFit"
)

// FactorNames lists every factor in a fixed order.
var FactorNames = []string{
	FactorCategoryMatch,
	FactorAudienceMatch,
	FactorBudgetFit,
	FactorLocationMatch,
	FactorEngagementQuality,
	FactorPastPerformance,
	FactorRegionalFit,
}

// FactorScores holds the seven normalized sub-scores, each in [0,1].
type FactorScores struct {
	CategoryMatch     float64 `json:"categoryMatch"`
	AudienceMatch     float64 `json:"audienceMatch"`
	BudgetFit         float64 `json:"budgetFit"`
	LocationMatch     float64 `json:"locationMatch"`
	EngagementQuality float64 `json:"engagementQuality"`
	PastPerformance   float64 `json:"pastPerformance"`
	RegionalFit       float64 `json:"regionalFit"`
}

// Get returns the score of the named factor and whether the name is known.
func (f FactorScores) Get(name string) (float64, bool) {
	switch name {
	case FactorCategoryMatch:
		return f.CategoryMatch, true
	case FactorAudienceMatch:
		return f.AudienceMatch, true
	case FactorBudgetFit:
		return f.BudgetFit, true
	case FactorLocationMatch:
		return f.LocationMatch, true
	case FactorEngagementQuality:
		return f.EngagementQuality, true
	case FactorPastPerformance:
		return f.PastPerformance, true
	case FactorRegionalFit:
		return f.RegionalFit, true
	}
	return 0, false
}

// MatchResult is the scored outcome for one candidate in one run.
type MatchResult struct {
	ID               string       `json:"id,omitempty"`
	RunID            string       `json:"runId,omitempty"`
	CampaignID       string       `json:"campaignId"`
	CandidateID      string       `json:"candidateId"`
	Rank             int          `json:"rank,omitempty"`
	OverallScore     float64      `json:"overallScore"`
	Reasons          []string     `json:"reasons"`
	Factors          FactorScores `json:"factors"`
	AlgorithmVersion string       `json:"algorithmVersion"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// Explanation is the narrative breakdown of a stored MatchResult.
type Explanation struct {
	CampaignID       string             `json:"campaignId"`
	CandidateID      string             `json:"candidateId"`
	OverallScore     float64            `json:"overallScore"`
	Text             string             `json:"explanation"`
	Strengths        map[string]float64 `json:"strengths"`
	Considerations   map[string]float64 `json:"considerations"`
	AlgorithmVersion string             `json:"algorithmVersion"`
	GeneratedAt      time.Time          `json:"generatedAt"`
}
