package matching

import (
	"fmt"
	"strings"
	"time"

	"matching-workers/internal/models"
)

// Factor bands used by explanations.
const (
	StrengthThreshold      = 0.7
	ConsiderationThreshold = 0.4
)

// Explain builds the narrative breakdown of a stored result.
func Explain(result *models.MatchResult) *models.Explanation {
	strengths := map[string]float64{}
	considerations := map[string]float64{}
	var strong, weak []string

	for _, name := range models.FactorNames {
		v, _ := result.Factors.Get(name)
		switch {
		case v > StrengthThreshold:
			strengths[name] = v
			strong = append(strong, fmt.Sprintf("%s: %s", name, percent(v)))
		case v < ConsiderationThreshold:
			considerations[name] = v
			weak = append(weak, fmt.Sprintf("%s: %s", name, percent(v)))
		}
	}

	parts := []string{fmt.Sprintf("This candidate scored %s compatibility.", percent(result.OverallScore))}
	if len(strong) > 0 {
		parts = append(parts, fmt.Sprintf("Strong points: %s.", strings.Join(strong, ", ")))
	}
	if len(weak) > 0 {
		parts = append(parts, fmt.Sprintf("Areas for consideration: %s.", strings.Join(weak, ", ")))
	}

	return &models.Explanation{
		CampaignID:       result.CampaignID,
		CandidateID:      result.CandidateID,
		OverallScore:     result.OverallScore,
		Text:             strings.Join(parts, " "),
		Strengths:        strengths,
		Considerations:   considerations,
		AlgorithmVersion: result.AlgorithmVersion,
		GeneratedAt:      time.Now().UTC(),
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
