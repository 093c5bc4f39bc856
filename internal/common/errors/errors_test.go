// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_RetryableFlag(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"rate limited", NewRateLimitedError("429"), ErrCodeRateLimited, true},
		{"provider unavailable", NewProviderUnavailableError("503"), ErrCodeProviderUnavailable, true},
		{"request timeout", NewRequestTimeoutError("gemini"), ErrCodeRequestTimeout, true},
		{"empty completion", NewEmptyCompletionError("gemini"), ErrCodeEmptyCompletion, true},
		{"malformed completion", NewMalformedCompletionError("not json"), ErrCodeMalformedCompletion, true},
		{"schema validation", NewSchemaValidationFailedError("missing field"), ErrCodeSchemaValidationFailed, true},
		{"storage unavailable", NewStorageUnavailableError(fmt.Errorf("connection refused")), ErrCodeStorageUnavailable, true},
		{"invalid request", NewInvalidRequestError("bad prompt"), ErrCodeInvalidRequest, false},
		{"auth failed", NewAuthFailedError("bad key"), ErrCodeAuthFailed, false},
		{"schema incompatible", NewSchemaIncompatibleError("json mode unsupported"), ErrCodeSchemaIncompatible, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryableErrorCode(tt.err.Code))
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestTerminalErrors_AreDistinct(t *testing.T) {
	exhausted := NewRetriesExhaustedError(3, NewRateLimitedError("429"))
	open := NewCircuitOpenError(5, time.Now().UTC(), 30*time.Second)
	fatal := NewAuthFailedError("bad key")

	assert.NotEqual(t, exhausted.Code, open.Code)
	assert.NotEqual(t, exhausted.Code, fatal.Code)
	assert.NotEqual(t, open.Code, fatal.Code)

	assert.True(t, IsTerminalCode(exhausted.Code))
	assert.True(t, IsTerminalCode(open.Code))
	assert.True(t, IsTerminalCode(fatal.Code))
	assert.False(t, IsTerminalCode(ErrCodeRateLimited))

	assert.Equal(t, 3, exhausted.Metadata["attempts"])
	assert.Equal(t, "RATE_LIMITED", exhausted.Metadata["lastErrorCode"])
	assert.Equal(t, 5, open.Metadata["failureCount"])
	assert.Equal(t, int64(30000), open.Metadata["cooldownMs"])
}

func TestNormalize(t *testing.T) {
	stdErr := NewRateLimitedError("429")
	assert.Same(t, stdErr, Normalize(stdErr))

	plain := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, "boom", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestNewStageFailedError_CarriesCause(t *testing.T) {
	cause := NewRetriesExhaustedError(3, NewRequestTimeoutError("gemini"))

	stageErr := NewStageFailedError("axial_coding", cause)

	require.NotNil(t, stageErr.Metadata)
	assert.Equal(t, "axial_coding", stageErr.Metadata["stage"])
	assert.Equal(t, "RETRIES_EXHAUSTED", stageErr.Metadata["causeCode"])
	assert.Equal(t, "RESILIENCE", stageErr.Metadata["causeCategory"])
	assert.Contains(t, stageErr.Error(), "axial_coding")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PROVIDER", GetErrorCategory(ErrCodeRateLimited))
	assert.Equal(t, "PROVIDER", GetErrorCategory(ErrCodeAuthFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSchemaValidationFailed))
	assert.Equal(t, "RESILIENCE", GetErrorCategory(ErrCodeCircuitOpen))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStorageUnavailable))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeStageFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternalError))
}
