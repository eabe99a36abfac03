package generaterecommendations

import "matching-workers/internal/models"

type Input struct {
	CampaignID     string                       `json:"campaignId"`
	Budget         float64                      `json:"budget"`
	TargetAudience *models.AudienceDescriptor   `json:"targetAudience"`
	Requirements   *models.CampaignRequirements `json:"requirements"`
	Locations      []string                     `json:"locations"`
	MinFollowers   int64                        `json:"minFollowers"`
}

func (i *Input) Criteria() *models.MatchingCriteria {
	return &models.MatchingCriteria{
		CampaignID:     i.CampaignID,
		Budget:         i.Budget,
		TargetAudience: i.TargetAudience,
		Requirements:   i.Requirements,
		Locations:      i.Locations,
		MinFollowers:   i.MinFollowers,
	}
}

type Output struct {
	CampaignID       string               `json:"campaignId"`
	RunID            string               `json:"runId,omitempty"`
	AlgorithmVersion string               `json:"algorithmVersion"`
	ResultCount      int                  `json:"resultCount"`
	Recommendations  []models.MatchResult `json:"recommendations"`
}
