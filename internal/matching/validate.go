package matching

import (
	"math"
	"strings"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/internal/models"
)

// ValidateCriteria checks the mandatory fields of a scoring request.
func ValidateCriteria(c *models.MatchingCriteria) error {
	if c == nil {
		return apperrors.NewValidationError("criteria", "criteria is required")
	}
	if strings.TrimSpace(c.CampaignID) == "" {
		return apperrors.NewValidationError("campaignId", "campaignId is required")
	}
	if math.IsNaN(c.Budget) || math.IsInf(c.Budget, 0) || c.Budget <= 0 {
		return apperrors.NewValidationError("budget", "budget must be a positive amount")
	}
	if c.TargetAudience == nil {
		return apperrors.NewValidationError("targetAudience", "targetAudience is required")
	}
	if c.Requirements == nil {
		return apperrors.NewValidationError("requirements", "requirements is required")
	}
	if c.MinFollowers < 0 {
		return apperrors.NewValidationError("minFollowers", "minFollowers must not be negative")
	}
	return nil
}

func validateIDs(campaignID, candidateID string) error {
	if strings.TrimSpace(campaignID) == "" {
		return apperrors.NewValidationError("campaignId", "campaignId is required")
	}
	if strings.TrimSpace(candidateID) == "" {
		return apperrors.NewValidationError("candidateId", "candidateId is required")
	}
	return nil
}
