package config

import (
	"fmt"
	"strings"

	"matching-workers/internal/matching"
	"matching-workers/internal/models"
)

// EngineConfig converts the matching section into engine settings.
// Unset fields keep the engine defaults, except MinScore where zero is a
// valid threshold; the loader defaults it to 0.3.
func (m MatchingConfig) EngineConfig() (*matching.Config, error) {
	cfg := matching.DefaultConfig()

	if m.AlgorithmVersion != "" {
		cfg.AlgorithmVersion = m.AlgorithmVersion
	}
	if m.MinFollowers != 0 {
		cfg.DefaultMinFollowers = m.MinFollowers
	}
	cfg.MinScore = m.MinScore
	if m.MaxResults != 0 {
		cfg.MaxResults = m.MaxResults
	}
	if m.Concurrency != 0 {
		cfg.Concurrency = m.Concurrency
	}
	if m.SlowRunThreshold != 0 {
		cfg.SlowRunThreshold = GetDuration(m.SlowRunThreshold)
	}
	if len(m.Regional.PlaceNames) > 0 {
		cfg.Regional.PlaceNames = m.Regional.PlaceNames
	}
	if m.Regional.ScriptPattern != "" {
		cfg.Regional.ScriptPattern = m.Regional.ScriptPattern
	}

	if len(m.Weights) > 0 {
		w, err := weightsFromMap(m.Weights)
		if err != nil {
			return nil, err
		}
		cfg.Weights = w
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// weightsFromMap accepts factor names in any case, with or without
// underscores (viper lowercases keys). Every factor must be present.
func weightsFromMap(raw map[string]float64) (matching.Weights, error) {
	normalized := make(map[string]float64, len(raw))
	for k, v := range raw {
		normalized[strings.ToLower(strings.ReplaceAll(k, "_", ""))] = v
	}

	lookup := func(factor string) (float64, error) {
		v, ok := normalized[strings.ToLower(factor)]
		if !ok {
			return 0, fmt.Errorf("weights: missing factor %q", factor)
		}
		return v, nil
	}

	var w matching.Weights
	targets := map[string]*float64{
		models.FactorCategoryMatch:     &w.CategoryMatch,
		models.FactorAudienceMatch:     &w.AudienceMatch,
		models.FactorBudgetFit:         &w.BudgetFit,
		models.FactorLocationMatch:     &w.LocationMatch,
		models.FactorEngagementQuality: &w.EngagementQuality,
		models.FactorPastPerformance:   &w.PastPerformance,
		models.FactorRegionalFit:       &w.RegionalFit,
	}
	for factor, dst := range targets {
		v, err := lookup(factor)
		if err != nil {
			return matching.Weights{}, err
		}
		*dst = v
	}
	if len(normalized) != len(targets) {
		return matching.Weights{}, fmt.Errorf("weights: expected %d factors, got %d", len(targets), len(normalized))
	}
	return w, nil
}
