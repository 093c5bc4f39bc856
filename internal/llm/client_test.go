// internal/llm/client_test.go
package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/logger"
)

// ==========================
// Scripted Provider
// ==========================

type scriptedResponse struct {
	text string
	err  error
}

// scriptedProvider returns canned responses in order, repeating the last
// entry once the script runs out.
type scriptedProvider struct {
	script []scriptedResponse
	calls  int
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-model" }

func (p *scriptedProvider) Complete(_ context.Context, _ CompletionRequest) (string, error) {
	idx := p.calls
	p.calls++
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	r := p.script[idx]
	return r.text, r.err
}

// ==========================
// Test Helpers
// ==========================

func testClientConfig() Config {
	return Config{
		MaxRetries:       3,
		RetryBaseDelay:   time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  time.Minute,
		SchemaRetries:    2,
		Temperature:      0.3,
	}
}

func newTestClient(provider Provider, cfg Config, cache CompletionCache) *ResilientClient {
	return NewResilientClient(provider, cfg, cache, logger.NewNoOpLogger())
}

var testCodesSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"codes": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"required": []string{"codes"},
}

// ==========================
// CompleteRaw Tests
// ==========================

func TestResilientClient_CompleteRaw_SucceedsAfterTransientFailures(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewRateLimitedError("quota exceeded")},
		{err: errors.NewProviderUnavailableError("status 503")},
		{text: "open coding response"},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	text, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)

	require.NoError(t, err)
	assert.Equal(t, "open coding response", text)
	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, 0, client.Breaker().FailureCount(), "success must reset the failure streak")
}

func TestResilientClient_CompleteRaw_ExhaustsRetryBudget(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewRateLimitedError("quota exceeded")},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	_, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeRetriesExhausted, stdErr.Code)
	assert.Equal(t, 3, provider.calls, "budget counts total attempts, not re-attempts")
	assert.Equal(t, 3, stdErr.Metadata["attempts"])
	assert.Equal(t, string(errors.ErrCodeRateLimited), stdErr.Metadata["lastErrorCode"])
}

func TestResilientClient_CompleteRaw_FatalStopsImmediately(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewAuthFailedError("invalid api key")},
		{text: "never reached"},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	_, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthFailed, errors.Normalize(err).Code)
	assert.Equal(t, 1, provider.calls, "fatal errors must not be retried")
}

func TestResilientClient_CompleteRaw_EmptyCompletionRetried(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewEmptyCompletionError("scripted")},
		{text: "second attempt"},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	text, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)

	require.NoError(t, err)
	assert.Equal(t, "second attempt", text)
	assert.Equal(t, 2, provider.calls)
}

func TestResilientClient_CompleteRaw_CircuitOpenFailsFast(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewProviderUnavailableError("connection refused")},
	}}
	cfg := testClientConfig()
	cfg.MaxRetries = 1
	cfg.BreakerThreshold = 2
	cfg.BreakerCooldown = time.Hour
	client := newTestClient(provider, cfg, nil)

	_, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)
	require.Error(t, err)
	_, err = client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)
	require.Error(t, err)
	require.True(t, client.Breaker().ShouldBreak())

	callsBefore := provider.calls
	_, err = client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeCircuitOpen, stdErr.Code)
	assert.Equal(t, 2, stdErr.Metadata["failureCount"])
	assert.Equal(t, callsBefore, provider.calls, "open circuit must not reach the provider")
}

func TestResilientClient_CompleteRaw_ProbeAfterCooldownCloses(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewProviderUnavailableError("connection refused")},
		{text: "recovered"},
	}}
	cfg := testClientConfig()
	cfg.BreakerThreshold = 1
	cfg.BreakerCooldown = 0
	client := newTestClient(provider, cfg, nil)

	text, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)

	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.False(t, client.Breaker().ShouldBreak(), "successful probe must close the circuit")
}

func TestResilientClient_CompleteRaw_CacheHitSkipsProvider(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{text: "cached response"},
	}}
	cache, err := NewLRUCache(16)
	require.NoError(t, err)
	client := newTestClient(provider, testClientConfig(), cache)

	first, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)
	require.NoError(t, err)
	second, err := client.CompleteRaw(context.Background(), "analyze this", 512, 0.3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "identical request must be served from cache")
}

// ==========================
// CompleteStructured Tests
// ==========================

func TestResilientClient_CompleteStructured_DecodesFencedPayload(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{text: "```json\n{\"codes\": [\"pricing_pressure\", \"churn_risk\"]}\n```"},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	var out struct {
		Codes []string `json:"codes"`
	}
	err := client.CompleteStructured(context.Background(), "extract codes", testCodesSchema, 512, &out)

	require.NoError(t, err)
	assert.Equal(t, []string{"pricing_pressure", "churn_risk"}, out.Codes)
	assert.Equal(t, 1, provider.calls)
}

func TestResilientClient_CompleteStructured_RetriesSchemaFailure(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{text: `{"unexpected": true}`},
		{text: `{"codes": ["training_needs"]}`},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	var out struct {
		Codes []string `json:"codes"`
	}
	err := client.CompleteStructured(context.Background(), "extract codes", testCodesSchema, 512, &out)

	require.NoError(t, err)
	assert.Equal(t, []string{"training_needs"}, out.Codes)
	assert.Equal(t, 2, provider.calls, "schema failure must trigger a fresh completion")
}

func TestResilientClient_CompleteStructured_ExhaustsSchemaBudget(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{text: `{"unexpected": true}`},
	}}
	client := newTestClient(provider, testClientConfig(), nil)

	var out struct {
		Codes []string `json:"codes"`
	}
	err := client.CompleteStructured(context.Background(), "extract codes", testCodesSchema, 512, &out)

	require.Error(t, err)
	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeRetriesExhausted, stdErr.Code)
	assert.Equal(t, string(errors.ErrCodeSchemaValidationFailed), stdErr.Metadata["lastErrorCode"])
	assert.Equal(t, 2, provider.calls, "schema budget is separate from the transport budget")
}

func TestResilientClient_CompleteStructured_TerminalErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{err: errors.NewAuthFailedError("invalid api key")},
	}}
	cfg := testClientConfig()
	cfg.SchemaRetries = 3
	client := newTestClient(provider, cfg, nil)

	var out struct {
		Codes []string `json:"codes"`
	}
	err := client.CompleteStructured(context.Background(), "extract codes", testCodesSchema, 512, &out)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthFailed, errors.Normalize(err).Code)
	assert.Equal(t, 1, provider.calls, "fatal errors must not consume the schema budget")
}

func TestResilientClient_CompleteStructured_CachesValidatedPayload(t *testing.T) {
	provider := &scriptedProvider{script: []scriptedResponse{
		{text: `{"codes": ["efficiency_gains"]}`},
	}}
	cache, err := NewLRUCache(16)
	require.NoError(t, err)
	client := newTestClient(provider, testClientConfig(), cache)

	var first struct {
		Codes []string `json:"codes"`
	}
	require.NoError(t, client.CompleteStructured(context.Background(), "extract codes", testCodesSchema, 512, &first))

	var second struct {
		Codes []string `json:"codes"`
	}
	require.NoError(t, client.CompleteStructured(context.Background(), "extract codes", testCodesSchema, 512, &second))

	assert.Equal(t, first.Codes, second.Codes)
	assert.Equal(t, 1, provider.calls)
}

// ==========================
// Payload Extraction Tests
// ==========================

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "plain fence",
			input: "```\n[1, 2]\n```",
			want:  `[1, 2]`,
		},
		{
			name:  "leading prose",
			input: "Here is the result:\n{\"a\": 1}",
			want:  `{"a": 1}`,
		},
		{
			name:  "prose on both sides",
			input: `The codes are ["x"] as requested.`,
			want:  `["x"]`,
		},
		{
			name:  "no json at all",
			input: "no structure here",
			want:  "no structure here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}
