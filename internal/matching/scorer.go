package matching

import (
	"time"

	"matching-workers/internal/models"
)

// ReasonThreshold is the factor score above which a reason is emitted.
const ReasonThreshold = 0.7

// VerifiedReason is appended for candidates with a verified identity.
const VerifiedReason = "Verified creator profile"

var factorReasons = map[string]string{
	models.FactorCategoryMatch:     "Excellent category match for campaign requirements",
	models.FactorAudienceMatch:     "Audience demographics align with target audience",
	models.FactorBudgetFit:         "Rate fits comfortably within campaign budget",
	models.FactorLocationMatch:     "Based in a requested campaign location",
	models.FactorEngagementQuality: "High quality audience engagement",
	models.FactorPastPerformance:   "Strong track record on recent content",
	models.FactorRegionalFit:       "Strong regional market fit",
}

// Scorer turns one candidate and one set of criteria into a MatchResult.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	weights Weights
	region  *RegionalMatcher
	version string
	now     func() time.Time
}

func NewScorer(cfg *Config) (*Scorer, error) {
	region, err := NewRegionalMatcher(cfg.Regional)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		weights: cfg.Weights,
		region:  region,
		version: cfg.AlgorithmVersion,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Factors computes the seven sub-scores.
func (s *Scorer) Factors(candidate *models.CandidateProfile, criteria *models.MatchingCriteria) models.FactorScores {
	return models.FactorScores{
		CategoryMatch:     clamp01(CategoryMatch(candidate, criteria)),
		AudienceMatch:     clamp01(AudienceMatch(candidate, criteria)),
		BudgetFit:         clamp01(BudgetFit(candidate, criteria)),
		LocationMatch:     clamp01(LocationMatch(candidate, criteria)),
		EngagementQuality: clamp01(EngagementQuality(candidate, criteria)),
		PastPerformance:   clamp01(PastPerformance(candidate, criteria)),
		RegionalFit:       clamp01(RegionalFit(candidate, s.region)),
	}
}

// Overall is the weighted sum of the factor scores.
func (s *Scorer) Overall(f models.FactorScores) float64 {
	w := s.weights
	return clamp01(f.CategoryMatch*w.CategoryMatch +
		f.AudienceMatch*w.AudienceMatch +
		f.BudgetFit*w.BudgetFit +
		f.LocationMatch*w.LocationMatch +
		f.EngagementQuality*w.EngagementQuality +
		f.PastPerformance*w.PastPerformance +
		f.RegionalFit*w.RegionalFit)
}

// Score scores a single candidate.
func (s *Scorer) Score(candidate *models.CandidateProfile, criteria *models.MatchingCriteria) models.MatchResult {
	factors := s.Factors(candidate, criteria)
	return models.MatchResult{
		CampaignID:       criteria.CampaignID,
		CandidateID:      candidate.ID,
		OverallScore:     s.Overall(factors),
		Reasons:          Reasons(candidate, factors),
		Factors:          factors,
		AlgorithmVersion: s.version,
		CreatedAt:        s.now(),
	}
}

// Reasons lists a sentence for every factor above ReasonThreshold, plus
// one for verified candidates. Low scores produce nothing.
func Reasons(candidate *models.CandidateProfile, factors models.FactorScores) []string {
	reasons := make([]string, 0, len(models.FactorNames)+1)
	for _, name := range models.FactorNames {
		if v, _ := factors.Get(name); v > ReasonThreshold {
			reasons = append(reasons, factorReasons[name])
		}
	}
	if candidate.IsVerified {
		reasons = append(reasons, VerifiedReason)
	}
	return reasons
}
