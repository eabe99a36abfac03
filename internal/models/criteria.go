package models

// CampaignRequirements holds the content requirements of a campaign.
// An empty category list is allowed and means "no preference".
type CampaignRequirements struct {
	Categories []string `json:"categories"`
}

// MatchingCriteria is the campaign-side input of one scoring run.
type MatchingCriteria struct {
	CampaignID     string                `json:"campaignId"`
	Budget         float64               `json:"budget"`
	TargetAudience *AudienceDescriptor   `json:"targetAudience"`
	Requirements   *CampaignRequirements `json:"requirements"`
	Locations      []string              `json:"locations,omitempty"`
	MinFollowers   int64                 `json:"minFollowers,omitempty"`
}

// Categories returns the required categories, or nil when no requirements
// were given.
func (c MatchingCriteria) Categories() []string {
	if c.Requirements == nil {
		return nil
	}
	return c.Requirements.Categories
}

// Audience returns the target audience or an empty descriptor.
func (c MatchingCriteria) Audience() AudienceDescriptor {
	if c.TargetAudience == nil {
		return AudienceDescriptor{}
	}
	return *c.TargetAudience
}
