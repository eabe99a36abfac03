package explainrecommendation

import "matching-workers/internal/models"

type Input struct {
	CampaignID  string `json:"campaignId"`
	CandidateID string `json:"candidateId"`
}

// Output is the explanation as returned to the process.
type Output = models.Explanation
