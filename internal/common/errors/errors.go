// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Provider errors (completion service)
const (
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeRequestTimeout      ErrorCode = "REQUEST_TIMEOUT"
	ErrCodeEmptyCompletion     ErrorCode = "EMPTY_COMPLETION"
	ErrCodeMalformedCompletion ErrorCode = "MALFORMED_COMPLETION"

	ErrCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrCodeAuthFailed         ErrorCode = "AUTH_FAILED"
	ErrCodeSchemaIncompatible ErrorCode = "SCHEMA_INCOMPATIBLE"

	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"
	ErrCodeCircuitOpen      ErrorCode = "CIRCUIT_OPEN"

	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeStageFailed        ErrorCode = "STAGE_FAILED"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
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

// ==========================
// 2. Error Constructors
// ==========================

// NewRateLimitedError creates a retryable rate-limit error.
func NewRateLimitedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Completion provider rate limit hit",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates a retryable server-side provider error.
func NewProviderUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Completion provider returned a server error",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestTimeoutError creates a retryable request timeout error.
func NewRequestTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestTimeout,
		Message:   "Completion request timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyCompletionError creates a retryable empty-response error.
func NewEmptyCompletionError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyCompletion,
		Message:   "Completion provider returned no text",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedCompletionError creates a retryable garbled-response error.
func NewMalformedCompletionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedCompletion,
		Message:   "Completion text could not be decoded",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable bad-request error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Completion request rejected as invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthFailedError creates a non-retryable authentication error.
func NewAuthFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthFailed,
		Message:   "Completion provider authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaIncompatibleError creates a non-retryable schema capability error.
func NewSchemaIncompatibleError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaIncompatible,
		Message:   "Provider cannot honor the requested response schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaValidationFailedError creates a retryable output-validation error.
// The client retries these under a smaller sub-budget since the model
// occasionally omits fields or truncates.
func NewSchemaValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   "Completion did not satisfy the response schema",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetriesExhaustedError creates a terminal error raised after the full
// retry budget was spent on retryable failures.
func NewRetriesExhaustedError(attempts int, lastErr error) *StandardError {
	details := ""
	lastCode := ""
	if lastErr != nil {
		details = lastErr.Error()
		if stdErr, ok := lastErr.(*StandardError); ok {
			lastCode = string(stdErr.Code)
		}
	}
	return &StandardError{
		Code:      ErrCodeRetriesExhausted,
		Message:   fmt.Sprintf("Completion failed after %d attempts", attempts),
		Details:   details,
		Retryable: false,
		Metadata: map[string]interface{}{
			"attempts":      attempts,
			"lastErrorCode": lastCode,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewCircuitOpenError creates a terminal error raised when the breaker is
// open and the call was never attempted.
func NewCircuitOpenError(failureCount int, lastTrip time.Time, cooldown time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeCircuitOpen,
		Message:   "Circuit breaker is open, call not attempted",
		Details:   fmt.Sprintf("consecutive failures: %d", failureCount),
		Retryable: false,
		Metadata: map[string]interface{}{
			"failureCount": failureCount,
			"lastTrip":     lastTrip.Format(time.RFC3339),
			"cooldownMs":   cooldown.Milliseconds(),
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUnavailableError creates a retryable storage connection error.
func NewStorageUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUnavailable,
		Message:   "Graph storage unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageFailedError wraps a terminal error with the workflow stage it
// surfaced from. Failed runs report the stage plus the error category.
func NewStageFailedError(stage string, err error) *StandardError {
	stdErr := Normalize(err)
	return &StandardError{
		Code:      ErrCodeStageFailed,
		Message:   fmt.Sprintf("Stage %s failed", stage),
		Details:   stdErr.Error(),
		Retryable: false,
		Metadata: map[string]interface{}{
			"stage":         stage,
			"causeCode":     string(stdErr.Code),
			"causeCategory": GetErrorCategory(stdErr.Code),
		},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimited,
		ErrCodeProviderUnavailable,
		ErrCodeRequestTimeout,
		ErrCodeEmptyCompletion,
		ErrCodeMalformedCompletion,
		ErrCodeSchemaValidationFailed,
		ErrCodeStorageUnavailable:
		return true
	default:
		return false
	}
}

// IsTerminalCode checks if an error code ends a call for good: fatal
// provider rejections, an exhausted retry budget, or an open breaker.
func IsTerminalCode(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidRequest,
		ErrCodeAuthFailed,
		ErrCodeSchemaIncompatible,
		ErrCodeRetriesExhausted,
		ErrCodeCircuitOpen,
		ErrCodeStageFailed,
		ErrCodeInternalError:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "RATE") || strings.Contains(codeStr, "PROVIDER") ||
		strings.Contains(codeStr, "COMPLETION") || strings.Contains(codeStr, "AUTH") ||
		strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "REQUEST"):
		return "PROVIDER"
	case strings.Contains(codeStr, "SCHEMA"):
		return "VALIDATION"
	case strings.Contains(codeStr, "RETRIES") || strings.Contains(codeStr, "CIRCUIT"):
		return "RESILIENCE"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "STAGE"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
