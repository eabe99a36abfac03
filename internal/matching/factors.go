package matching

import (
	"math"
	"strings"

	"matching-workers/internal/models"
)

// Scores returned when a factor has no usable input.
const (
	NeutralCategoryScore    = 0.5 // no categories required
	NeutralAudienceScore    = 0.5 // no comparable demographics on either side
	UnknownRateBudgetScore  = 0.7 // candidate has not published a rate
	NeutralLocationScore    = 0.5 // no locations requested
	LocationMismatchScore   = 0.3
	NeutralPerformanceScore = 0.5 // no analytics history
	RegionalBaseScore       = 0.5
	RegionalPlaceBonus      = 0.3
	RegionalScriptBonus     = 0.2
	GenderWildcard          = "all"
)

// Engagement bands, checked top down. A rate below the last band scores
// engagementFloorScore.
var engagementBands = []struct {
	minRate float64
	score   float64
}{
	{0.08, 1.0},
	{0.05, 0.8},
	{0.03, 0.6},
	{0.01, 0.4},
}

const (
	engagementFloorScore = 0.2

	microInfluencerFollowers = 10_000
	megaInfluencerFollowers  = 100_000
	microInfluencerBoost     = 1.1
	megaInfluencerPenalty    = 0.9

	expectedReachRatio      = 0.1  // views expected per follower
	expectedEngagementRatio = 0.05 // engagements expected per view
)

// Budget bands on rate/budget, checked top down.
var budgetBands = []struct {
	maxRatio float64
	score    float64
}{
	{0.3, 1.0},
	{0.5, 0.8},
	{0.8, 0.6},
	{1.0, 0.4},
}

const overBudgetScore = 0.1

// CategoryMatch returns the fraction of required categories found among
// the candidate's categories. A required category matches when either
// string contains the other, ignoring case.
func CategoryMatch(candidate *models.CandidateProfile, criteria *models.MatchingCriteria) float64 {
	required := normalizeAll(criteria.Categories())
	if len(required) == 0 {
		return NeutralCategoryScore
	}
	have := normalizeAll(candidate.Categories)

	matched := 0
	for _, req := range required {
		for _, c := range have {
			if strings.Contains(c, req) || strings.Contains(req, c) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required))
}

// AudienceMatch averages the age-group overlap, the gender match and the
// interest overlap, counting only the parts both sides describe.
func AudienceMatch(candidate *models.CandidateProfile, criteria *models.MatchingCriteria) float64 {
	if candidate.Demographics == nil {
		return NeutralAudienceScore
	}
	target := criteria.Audience()
	have := candidate.Demographics

	var total float64
	var parts int

	if wanted, got := normalizeAll(target.AgeGroups), normalizeAll(have.AgeGroups); len(wanted) > 0 && len(got) > 0 {
		total += overlapRatio(wanted, got)
		parts++
	}

	wantGender := strings.ToLower(strings.TrimSpace(target.Gender))
	gotGender := strings.ToLower(strings.TrimSpace(have.Gender))
	if wantGender != "" && gotGender != "" {
		if wantGender == GenderWildcard || wantGender == gotGender {
			total += 1.0
		}
		parts++
	}

	if wanted, got := normalizeAll(target.Interests), normalizeAll(have.Interests); len(wanted) > 0 && len(got) > 0 {
		total += overlapRatio(wanted, got)
		parts++
	}

	if parts == 0 {
		return NeutralAudienceScore
	}
	return total / float64(parts)
}

// BudgetFit scores the candidate's average rate against the campaign
// budget. Cheaper relative to budget scores higher.
func BudgetFit(candidate *models.CandidateProfile, criteria *models.MatchingCriteria) float64 {
	if candidate.AverageRate <= 0 || math.IsNaN(candidate.AverageRate) || criteria.Budget <= 0 || math.IsNaN(criteria.Budget) {
		return UnknownRateBudgetScore
	}
	ratio := candidate.AverageRate / criteria.Budget
	for _, band := range budgetBands {
		if ratio <= band.maxRatio {
			return band.score
		}
	}
	return overBudgetScore
}

// LocationMatch returns 1 when a requested location and the candidate's
// location contain one another, ignoring case.
func LocationMatch(candidate *models.CandidateProfile, criteria *models.MatchingCriteria) float64 {
	requested := normalizeAll(criteria.Locations)
	if len(requested) == 0 {
		return NeutralLocationScore
	}
	loc := strings.ToLower(strings.TrimSpace(candidate.Location))
	if loc == "" {
		return LocationMismatchScore
	}
	for _, r := range requested {
		if strings.Contains(loc, r) || strings.Contains(r, loc) {
			return 1.0
		}
	}
	return LocationMismatchScore
}

// EngagementQuality bands the engagement rate, then boosts small accounts
// and discounts very large ones.
func EngagementQuality(candidate *models.CandidateProfile, _ *models.MatchingCriteria) float64 {
	score := engagementFloorScore
	for _, band := range engagementBands {
		if candidate.EngagementRate >= band.minRate {
			score = band.score
			break
		}
	}

	switch {
	case candidate.FollowerCount < microInfluencerFollowers:
		score *= microInfluencerBoost
	case candidate.FollowerCount > megaInfluencerFollowers:
		score *= megaInfluencerPenalty
	}
	return math.Min(score, 1.0)
}

// PastPerformance compares average views to the expected reach and
// average engagements to the expected engagement per view.
func PastPerformance(candidate *models.CandidateProfile, _ *models.MatchingCriteria) float64 {
	history := candidate.Analytics
	if len(history) == 0 {
		return NeutralPerformanceScore
	}

	var views, engagements float64
	for _, s := range history {
		views += float64(s.Views)
		engagements += float64(s.Engagements)
	}
	avgViews := views / float64(len(history))
	avgEngagement := engagements / float64(len(history))

	var viewsScore float64
	expectedViews := float64(candidate.FollowerCount) * expectedReachRatio
	switch {
	case expectedViews > 0:
		viewsScore = math.Min(avgViews/expectedViews, 1.0)
	case avgViews > 0:
		// no followers on record but the content is being watched
		viewsScore = 1.0
	}

	var engagementScore float64
	if avgViews > 0 {
		engagementScore = math.Min(avgEngagement/(avgViews*expectedEngagementRatio), 1.0)
	}

	return clamp01((viewsScore + engagementScore) / 2)
}

// RegionalFit scores affinity with the configured target region.
func RegionalFit(candidate *models.CandidateProfile, region *RegionalMatcher) float64 {
	score := RegionalBaseScore
	if region.InRegion(candidate.Location) {
		score += RegionalPlaceBonus
	}
	if region.UsesRegionalScript(candidate.Bio) {
		score += RegionalScriptBonus
	}
	return math.Min(score, 1.0)
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// overlapRatio is |wanted ∩ got| / |wanted|.
func overlapRatio(wanted, got []string) float64 {
	set := make(map[string]struct{}, len(got))
	for _, g := range got {
		set[g] = struct{}{}
	}
	hits := 0
	for _, w := range wanted {
		if _, ok := set[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(wanted))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
