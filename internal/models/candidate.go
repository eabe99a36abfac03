package models

import "time"

// AudienceDescriptor describes the demographics of an audience. Campaign
// criteria and candidate profiles share the same shape.
type AudienceDescriptor struct {
	AgeGroups []string `json:"ageGroups,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// AnalyticsSnapshot is one recent performance sample for a candidate.
type AnalyticsSnapshot struct {
	Views       int64     `json:"views"`
	Engagements int64     `json:"engagements"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// MaxAnalyticsWindow bounds the history carried on a CandidateProfile.
const MaxAnalyticsWindow = 30

// CandidateProfile is a read-only snapshot of a content creator.
//
// AverageRate is 0 when the candidate has not published pricing; scoring
// treats that as "no pricing signal", not as free.
type CandidateProfile struct {
	ID             string              `json:"id"`
	FollowerCount  int64               `json:"followerCount"`
	EngagementRate float64             `json:"engagementRate"`
	Categories     []string            `json:"categories"`
	Demographics   *AudienceDescriptor `json:"demographics,omitempty"`
	Location       string              `json:"location"`
	AverageRate    float64             `json:"averageRate"`
	Bio            string              `json:"bio"`
	IsVerified     bool                `json:"isVerified"`
	Analytics      []AnalyticsSnapshot `json:"analytics,omitempty"`
}
