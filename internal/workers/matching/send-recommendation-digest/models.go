package sendrecommendationdigest

type Input struct {
	CampaignID     string `json:"campaignId"`
	RecipientEmail string `json:"recipientEmail"`
	Limit          int    `json:"limit"`
}

type Output struct {
	CampaignID string `json:"campaignId"`
	RunID      string `json:"runId"`
	SentCount  int    `json:"sentCount"`
	MessageID  string `json:"messageId"`
	Status     string `json:"status"`
}
