package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Validation
	ErrCodeCriteriaValidationFailed ErrorCode = "CRITERIA_VALIDATION_FAILED"
	ErrCodeInvalidJobInput          ErrorCode = "INVALID_JOB_INPUT"

	// Not found
	ErrCodeRecommendationNotFound ErrorCode = "RECOMMENDATION_NOT_FOUND"

	// Dependencies
	ErrCodeCandidateFetchFailed      ErrorCode = "CANDIDATE_FETCH_FAILED"
	ErrCodeCandidateSearchFailed     ErrorCode = "CANDIDATE_SEARCH_FAILED"
	ErrCodeResultPersistFailed       ErrorCode = "RESULT_PERSIST_FAILED"
	ErrCodeResultLookupFailed        ErrorCode = "RESULT_LOOKUP_FAILED"
	ErrCodeNotificationPublishFailed ErrorCode = "NOTIFICATION_PUBLISH_FAILED"
	ErrCodeEmailSendFailed           ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeRunCancelled              ErrorCode = "RUN_CANCELLED"
	ErrCodeExternalService           ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                   ErrorCode = "TIMEOUT_ERROR"
)

// Categories of the error taxonomy. Every code belongs to exactly one.
const (
	CategoryValidation = "VALIDATION"
	CategoryNotFound   = "NOT_FOUND"
	CategoryDependency = "DEPENDENCY"
	CategoryOther      = "OTHER"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Category reports which branch of the taxonomy the error belongs to.
func (e *StandardError) Category() string {
	return GetErrorCategory(e.Code)
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError reports malformed or missing criteria.
func NewValidationError(field, details string) *StandardError {
	e := newError(ErrCodeCriteriaValidationFailed,
		fmt.Sprintf("invalid matching criteria: %s", field), details, false, nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

func NewInvalidJobInputError(details string) *StandardError {
	return newError(ErrCodeInvalidJobInput, "job input failed schema validation", details, false, nil)
}

// NewNotFoundError reports a missing persisted result. The message names
// both ids.
func NewNotFoundError(campaignID, candidateID string) *StandardError {
	e := newError(ErrCodeRecommendationNotFound,
		fmt.Sprintf("no recommendation found for campaign %q and candidate %q", campaignID, candidateID),
		"", false, nil)
	e.Metadata = map[string]interface{}{
		"campaignId":  campaignID,
		"candidateId": candidateID,
	}
	return e
}

// NewRunNotFoundError reports a campaign with no persisted run at all.
func NewRunNotFoundError(campaignID string) *StandardError {
	e := newError(ErrCodeRecommendationNotFound,
		fmt.Sprintf("no recommendation run found for campaign %q", campaignID), "", false, nil)
	e.Metadata = map[string]interface{}{"campaignId": campaignID}
	return e
}

func NewCandidateFetchError(err error) *StandardError {
	return newError(ErrCodeCandidateFetchFailed, "candidate repository unavailable", err.Error(), true, err)
}

func NewCandidateSearchError(err error) *StandardError {
	return newError(ErrCodeCandidateSearchFailed, "candidate search failed", err.Error(), true, err)
}

func NewResultPersistError(err error) *StandardError {
	return newError(ErrCodeResultPersistFailed, "match result store unavailable", err.Error(), true, err)
}

func NewResultLookupError(err error) *StandardError {
	return newError(ErrCodeResultLookupFailed, "match result lookup failed", err.Error(), true, err)
}

func NewNotificationPublishError(err error) *StandardError {
	return newError(ErrCodeNotificationPublishFailed, "recommendation event publish failed", err.Error(), true, err)
}

func NewEmailSendError(err error) *StandardError {
	return newError(ErrCodeEmailSendFailed, "recommendation digest email failed", err.Error(), true, err)
}

func NewRunCancelledError(err error) *StandardError {
	return newError(ErrCodeRunCancelled, "recommendation run cancelled", err.Error(), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func IsValidation(err error) bool {
	return hasCategory(err, CategoryValidation)
}

func IsNotFound(err error) bool {
	return hasCategory(err, CategoryNotFound)
}

func IsDependency(err error) bool {
	return hasCategory(err, CategoryDependency)
}

func hasCategory(err error, category string) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	return stdErr.Category() == category
}

// AsStandardError extracts the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	ok := stderrors.As(err, &stdErr)
	return stdErr, ok
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCriteriaValidationFailed:  "CRITERIA_VALIDATION_FAILED",
	ErrCodeInvalidJobInput:           "INVALID_JOB_INPUT",
	ErrCodeRecommendationNotFound:    "RECOMMENDATION_NOT_FOUND",
	ErrCodeCandidateFetchFailed:      "CANDIDATE_FETCH_FAILED",
	ErrCodeCandidateSearchFailed:     "CANDIDATE_FETCH_FAILED",
	ErrCodeResultPersistFailed:       "RESULT_PERSIST_FAILED",
	ErrCodeResultLookupFailed:        "RESULT_LOOKUP_FAILED",
	ErrCodeNotificationPublishFailed: "NOTIFICATION_PUBLISH_FAILED",
	ErrCodeEmailSendFailed:           "EMAIL_SEND_FAILED",
	ErrCodeRunCancelled:              "RUN_CANCELLED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCandidateFetchFailed,
		ErrCodeCandidateSearchFailed,
		ErrCodeResultPersistFailed,
		ErrCodeResultLookupFailed,
		ErrCodeNotificationPublishFailed,
		ErrCodeEmailSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeRunCancelled, ErrCodeTimeout:
		return 2

	default:
		return 0 // validation and not-found are business outcomes
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     stdErr.Category(),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.HasPrefix(codeStr, "INVALID"):
		return CategoryValidation
	case strings.HasSuffix(codeStr, "NOT_FOUND"):
		return CategoryNotFound
	case strings.HasSuffix(codeStr, "_FAILED") ||
		code == ErrCodeRunCancelled ||
		code == ErrCodeExternalService ||
		code == ErrCodeTimeout:
		return CategoryDependency
	default:
		return CategoryOther
	}
}
