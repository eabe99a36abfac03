package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeCriteriaValidationFailed, CategoryValidation},
		{ErrCodeInvalidJobInput, CategoryValidation},
		{ErrCodeRecommendationNotFound, CategoryNotFound},
		{ErrCodeCandidateFetchFailed, CategoryDependency},
		{ErrCodeCandidateSearchFailed, CategoryDependency},
		{ErrCodeResultPersistFailed, CategoryDependency},
		{ErrCodeResultLookupFailed, CategoryDependency},
		{ErrCodeNotificationPublishFailed, CategoryDependency},
		{ErrCodeEmailSendFailed, CategoryDependency},
		{ErrCodeRunCancelled, CategoryDependency},
		{ErrCodeExternalService, CategoryDependency},
		{ErrCodeTimeout, CategoryDependency},
		{"INTERNAL_ERROR", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 0, GetRetryCount(ErrCodeCriteriaValidationFailed))
	assert.Equal(t, 0, GetRetryCount(ErrCodeRecommendationNotFound))
	assert.Equal(t, 3, GetRetryCount(ErrCodeCandidateFetchFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeResultPersistFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeRunCancelled))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidJobInput))
	assert.True(t, IsRetryableErrorCode(ErrCodeEmailSendFailed))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("budget", "must be positive")

	assert.Equal(t, ErrCodeCriteriaValidationFailed, err.Code)
	assert.Equal(t, "budget", err.Metadata["field"])
	assert.False(t, err.Retryable)
	assert.Equal(t, "StandardError[CRITERIA_VALIDATION_FAILED]: invalid matching criteria: budget: must be positive", err.Error())
	assert.True(t, IsValidation(err))
	assert.False(t, IsDependency(err))
}

func TestNewNotFoundError_NamesBothIDs(t *testing.T) {
	err := NewNotFoundError("campaign-1", "creator-9")

	assert.Contains(t, err.Error(), `"campaign-1"`)
	assert.Contains(t, err.Error(), `"creator-9"`)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "creator-9", err.Metadata["candidateId"])
}

func TestDependencyErrors_WrapCause(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	constructors := map[string]func(error) *StandardError{
		"fetch":   NewCandidateFetchError,
		"search":  NewCandidateSearchError,
		"persist": NewResultPersistError,
		"lookup":  NewResultLookupError,
		"publish": NewNotificationPublishError,
		"email":   NewEmailSendError,
	}

	for name, build := range constructors {
		t.Run(name, func(t *testing.T) {
			err := build(cause)
			assert.True(t, err.Retryable)
			assert.True(t, IsDependency(err))
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, cause.Error(), err.Details)
		})
	}
}

func TestRunCancelled_UnwrapsContextError(t *testing.T) {
	err := NewRunCancelledError(context.DeadlineExceeded)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsDependency(err))
}

func TestAsStandardError_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewResultLookupError(stderrors.New("boom")))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeResultLookupFailed, stdErr.Code)
	assert.True(t, IsDependency(wrapped))

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsNotFound(nil))
}

func TestNormalize(t *testing.T) {
	known := NewRunNotFoundError("campaign-1")
	assert.Same(t, known, Normalize(known))

	plain := stderrors.New("unexpected nil map")
	normalized := Normalize(plain)
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), normalized.Code)
	assert.Equal(t, "unexpected nil map", normalized.Details)
	assert.False(t, normalized.Retryable)
	assert.ErrorIs(t, normalized, plain)
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("validation is not retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewValidationError("requirements", "required"))

		assert.Equal(t, "CRITERIA_VALIDATION_FAILED", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
		assert.Equal(t, CategoryValidation, bpmn.ErrorVariables["errorCategory"])
		assert.Equal(t, "requirements", bpmn.ErrorVariables["field"])
	})

	t.Run("search failures share the fetch code", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewCandidateSearchError(stderrors.New("index gone")))

		assert.Equal(t, "CANDIDATE_FETCH_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.Equal(t, "CANDIDATE_SEARCH_FAILED", bpmn.ErrorVariables["originalErrorCode"])
	})

	t.Run("unmapped code passes through", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewTimeoutError("zeebe", stderrors.New("deadline")))

		assert.Equal(t, "TIMEOUT_ERROR", bpmn.Code)
		assert.Equal(t, 2, bpmn.Retries)
	})

	t.Run("non-retryable overrides retry table", func(t *testing.T) {
		stdErr := NewResultPersistError(stderrors.New("constraint violation"))
		stdErr.Retryable = false

		assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
	})
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmn := ConvertToBPMNError(NewNotFoundError("campaign-1", "creator-2"))
	vars := bpmn.ToErrorVariables()

	assert.Equal(t, "RECOMMENDATION_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
	assert.Equal(t, "campaign-1", vars["campaignId"])
	assert.Equal(t, "creator-2", vars["candidateId"])
	assert.Contains(t, bpmn.Error(), "RECOMMENDATION_NOT_FOUND")
}
