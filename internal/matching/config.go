package matching

import (
	"fmt"
	"math"
	"time"
)

// Defaults for a scoring run.
const (
	DefaultAlgorithmVersion = "v1.0"
	DefaultMinFollowers     = 1000
	DefaultMinScore         = 0.3
	DefaultMaxResults       = 20
	DefaultConcurrency      = 8
	DefaultSlowRunThreshold = 2 * time.Second

	weightSumTolerance = 1e-9
)

// DefaultPlaceNames is the target-region place list used when none is
// configured.
var DefaultPlaceNames = []string{
	"vietnam", "viet nam", "ho chi minh", "hcmc", "saigon", "hanoi", "ha noi",
	"da nang", "hai phong", "can tho", "nha trang", "hue", "vung tau",
}

// DefaultScriptPattern matches Vietnamese diacritic letters.
const DefaultScriptPattern = `(?i)[àáạảãâầấậẩẫăằắặẳẵèéẹẻẽêềếệểễìíịỉĩòóọỏõôồốộổỗơờớợởỡùúụủũưừứựửữỳýỵỷỹđ]`

// Weights is the contribution of each factor to the overall score.
type Weights struct {
	CategoryMatch     float64 `json:"categoryMatch"`
	AudienceMatch     float64 `json:"audienceMatch"`
	BudgetFit         float64 `json:"budgetFit"`
	LocationMatch     float64 `json:"locationMatch"`
	EngagementQuality float64 `json:"engagementQuality"`
	PastPerformance   float64 `json:"pastPerformance"`
	RegionalFit       float64 `json:"regionalFit"`
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		CategoryMatch:     0.25,
		AudienceMatch:     0.20,
		BudgetFit:         0.15,
		LocationMatch:     0.10,
		EngagementQuality: 0.15,
		PastPerformance:   0.10,
		RegionalFit:       0.05,
	}
}

func (w Weights) sum() float64 {
	return w.CategoryMatch + w.AudienceMatch + w.BudgetFit + w.LocationMatch +
		w.EngagementQuality + w.PastPerformance + w.RegionalFit
}

func (w Weights) each() []float64 {
	return []float64{
		w.CategoryMatch, w.AudienceMatch, w.BudgetFit, w.LocationMatch,
		w.EngagementQuality, w.PastPerformance, w.RegionalFit,
	}
}

// RegionalConfig configures the regional fit factor.
type RegionalConfig struct {
	PlaceNames    []string `json:"placeNames"`
	ScriptPattern string   `json:"scriptPattern"`
}

// Config contains the settings of the matching engine.
type Config struct {
	AlgorithmVersion    string         `json:"algorithmVersion"`
	Weights             Weights        `json:"weights"`
	MinScore            float64        `json:"minScore"`
	MaxResults          int            `json:"maxResults"`
	DefaultMinFollowers int64          `json:"defaultMinFollowers"`
	Concurrency         int            `json:"concurrency"`
	SlowRunThreshold    time.Duration  `json:"slowRunThreshold"`
	Regional            RegionalConfig `json:"regional"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		AlgorithmVersion:    DefaultAlgorithmVersion,
		Weights:             DefaultWeights(),
		MinScore:            DefaultMinScore,
		MaxResults:          DefaultMaxResults,
		DefaultMinFollowers: DefaultMinFollowers,
		Concurrency:         DefaultConcurrency,
		SlowRunThreshold:    DefaultSlowRunThreshold,
		Regional: RegionalConfig{
			PlaceNames:    append([]string(nil), DefaultPlaceNames...),
			ScriptPattern: DefaultScriptPattern,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.AlgorithmVersion == "" {
		return fmt.Errorf("algorithm_version is required")
	}
	for _, w := range c.Weights.each() {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("weights must be non-negative, got %f", w)
		}
	}
	if sum := c.Weights.sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %f", sum)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1], got %f", c.MinScore)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.DefaultMinFollowers < 0 {
		return fmt.Errorf("min_followers must be non-negative, got %d", c.DefaultMinFollowers)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}
