// internal/llm/openai_test.go
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gt-analyzer/internal/common/errors"
)

func TestNewOpenAIProvider_BaseURLHandling(t *testing.T) {
	provider := NewOpenAIProvider("key", "", "gpt-4o-mini", time.Second)
	assert.Equal(t, "https://api.openai.com/v1", provider.baseURL)

	provider = NewOpenAIProvider("key", "http://localhost:8081/v1/", "gpt-4o-mini", time.Second)
	assert.Equal(t, "http://localhost:8081/v1", provider.baseURL)
}

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "extract codes", req.Messages[0].Content)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"codes\": []}"}}]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini", 5*time.Second)
	text, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:      "extract codes",
		MaxTokens:   512,
		Temperature: 0.3,
		JSONMode:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"codes": []}`, text)
}

func TestOpenAIProvider_Complete_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{
			name:      "rate limited",
			status:    429,
			wantCode:  errors.ErrCodeRateLimited,
			retryable: true,
		},
		{
			name:      "server error",
			status:    500,
			wantCode:  errors.ErrCodeProviderUnavailable,
			retryable: true,
		},
		{
			name:      "service unavailable",
			status:    503,
			wantCode:  errors.ErrCodeProviderUnavailable,
			retryable: true,
		},
		{
			name:      "unauthorized",
			status:    401,
			wantCode:  errors.ErrCodeAuthFailed,
			retryable: false,
		},
		{
			name:      "forbidden",
			status:    403,
			wantCode:  errors.ErrCodeAuthFailed,
			retryable: false,
		},
		{
			name:      "bad request",
			status:    400,
			wantCode:  errors.ErrCodeInvalidRequest,
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "rejected"}}`))
			}))
			defer server.Close()

			provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini", 5*time.Second)
			_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "extract codes"})

			require.Error(t, err)
			stdErr := errors.Normalize(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestOpenAIProvider_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini", 5*time.Second)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "extract codes"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmptyCompletion, errors.Normalize(err).Code)
}

func TestOpenAIProvider_Complete_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini", 5*time.Second)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "extract codes"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMalformedCompletion, errors.Normalize(err).Code)
}

func TestOpenAIProvider_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL, "gpt-4o-mini", 20*time.Millisecond)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "extract codes"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRequestTimeout, errors.Normalize(err).Code)
}
