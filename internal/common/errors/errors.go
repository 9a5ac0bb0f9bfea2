// internal/common/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeCompanyNotFound   ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeCompanyLookup     ErrorCode = "COMPANY_LOOKUP_FAILED"
	ErrCodeCandidateQuery    ErrorCode = "CANDIDATE_QUERY_FAILED"
	ErrCodeQueryTimeout      ErrorCode = "QUERY_TIMEOUT"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeBehaviorDegraded  ErrorCode = "BEHAVIOR_COLLECTION_FAILED"
	ErrCodeNotificationLog   ErrorCode = "NOTIFICATION_LOG_FAILED"
	ErrCodeEventPublish      ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeTaxonomyLoad      ErrorCode = "TAXONOMY_LOAD_FAILED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false)
}

func NewCompanyNotFoundError(companyID string) *StandardError {
	return newError(ErrCodeCompanyNotFound, "Company profile not found", fmt.Sprintf("companyId: %s", companyID), false)
}

func NewCompanyLookupError(companyID string, err error) *StandardError {
	return newError(ErrCodeCompanyLookup, "Company profile lookup failed",
		fmt.Sprintf("companyId: %s, error: %s", companyID, err.Error()), true)
}

func NewCandidateQueryError(source string, err error) *StandardError {
	return newError(ErrCodeCandidateQuery, "Candidate announcement query failed",
		fmt.Sprintf("source: %s, error: %s", source, err.Error()), true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

// NewBehaviorDegradedError describes a behavior collection failure. Ranking
// continues without behavior, so this is logged rather than thrown.
func NewBehaviorDegradedError(userID string, err error) *StandardError {
	return newError(ErrCodeBehaviorDegraded, "Behavior signal collection failed",
		fmt.Sprintf("userId: %s, error: %s", userID, err.Error()), false)
}

func NewNotificationLogError(err error) *StandardError {
	return newError(ErrCodeNotificationLog, "Notification log access failed", err.Error(), true)
}

func NewEventPublishError(topic string, err error) *StandardError {
	return newError(ErrCodeEventPublish, "Recommendation event publish failed",
		fmt.Sprintf("topic: %s, error: %s", topic, err.Error()), true)
}

func NewTaxonomyLoadError(path string, err error) *StandardError {
	return newError(ErrCodeTaxonomyLoad, "Taxonomy could not be loaded",
		fmt.Sprintf("path: %s, error: %s", path, err.Error()), false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// GetRetryCount is the retry budget granted to a failure of the given code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCompanyLookup,
		ErrCodeCandidateQuery,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationLog,
		ErrCodeEventPublish:
		return 3
	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2
	default:
		return 0
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"timestamp": stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err to a StandardError, wrapping anything else as
// an internal error.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "COMPANY"):
		return "COMPANY"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "NOTIFICATION"):
		return "DATABASE"
	case strings.Contains(codeStr, "BEHAVIOR"):
		return "BEHAVIOR"
	case strings.Contains(codeStr, "EVENT"):
		return "EVENTS"
	case strings.Contains(codeStr, "TAXONOMY"):
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}
