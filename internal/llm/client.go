// internal/llm/client.go
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/logger"
	"gt-analyzer/internal/common/metrics"
)

// ==========================
// 1. CLIENT INTERFACE
// ==========================

// Client is the completion surface the analysis stages depend on.
// CompleteRaw returns provider text as-is; CompleteStructured additionally
// enforces a JSON schema and decodes the payload into out.
type Client interface {
	CompleteRaw(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
	CompleteStructured(ctx context.Context, prompt string, schema map[string]interface{}, maxTokens int, out interface{}) error
}

type ctxKey int

const stageKey ctxKey = 0

// WithStage tags the context with the pipeline stage issuing completions,
// so provider metrics can be attributed per stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

func stageFrom(ctx context.Context) string {
	if stage, ok := ctx.Value(stageKey).(string); ok && stage != "" {
		return stage
	}
	return "unknown"
}

// ==========================
// 2. RESILIENT CLIENT
// ==========================

// Config carries the resilience settings for a client instance.
type Config struct {
	MaxRetries       int           // total attempts per completion
	RetryBaseDelay   time.Duration // doubled on every retry
	BreakerThreshold int           // consecutive failures before the circuit opens
	BreakerCooldown  time.Duration // wait before a probe is allowed
	RequestTimeout   time.Duration // per-attempt deadline, 0 disables
	SchemaRetries    int           // full completion cycles per structured call
	Temperature      float64       // sampling temperature for structured calls
}

// ResilientClient wraps a Provider with retry, circuit breaking, and
// caching. Calls are strictly sequential; a single failing provider
// must not be hammered from concurrent retry loops.
type ResilientClient struct {
	provider       Provider
	policy         RetryPolicy
	breaker        *CircuitBreaker
	cache          CompletionCache
	logger         logger.Logger
	temperature    float64
	requestTimeout time.Duration
	schemaRetries  int
}

// NewResilientClient builds a client around the given provider. cache may
// be nil to disable completion caching.
func NewResilientClient(provider Provider, cfg Config, cache CompletionCache, log logger.Logger) *ResilientClient {
	return &ResilientClient{
		provider:       provider,
		policy:         RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay},
		breaker:        NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		cache:          cache,
		logger:         log,
		temperature:    cfg.Temperature,
		requestTimeout: cfg.RequestTimeout,
		schemaRetries:  cfg.SchemaRetries,
	}
}

// Breaker exposes the circuit breaker state for inspection.
func (c *ResilientClient) Breaker() *CircuitBreaker {
	return c.breaker
}

func (c *ResilientClient) CompleteRaw(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	req := CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var key string
	if c.cache != nil {
		key = CacheKey(c.provider.Model(), req)
		if val, ok := c.cache.Get(ctx, key); ok {
			return val, nil
		}
	}

	text, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, text)
	}
	return text, nil
}

func (c *ResilientClient) CompleteStructured(ctx context.Context, prompt string, schema map[string]interface{}, maxTokens int, out interface{}) error {
	req := CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
		JSONMode:    true,
	}

	var key string
	if c.cache != nil {
		key = CacheKey(c.provider.Model(), req)
		if val, ok := c.cache.Get(ctx, key); ok {
			// only validated payloads are cached; a corrupt entry is a miss
			if err := json.Unmarshal([]byte(val), out); err == nil {
				return nil
			}
		}
	}

	budget := c.schemaRetries
	if budget < 1 {
		budget = 1
	}

	var lastErr error
	for attempt := 0; attempt < budget; attempt++ {
		text, err := c.completeWithRetry(ctx, req)
		if err != nil {
			// terminal: retries exhausted, circuit open, or fatal
			return err
		}

		payload := extractJSON(text)
		if err := c.validatePayload(schema, payload); err != nil {
			lastErr = err
			c.logger.WithError(err).Warn("Structured completion failed validation", map[string]interface{}{
				"stage":   stageFrom(ctx),
				"attempt": attempt + 1,
			})
			continue
		}

		if err := json.Unmarshal([]byte(payload), out); err != nil {
			lastErr = errors.NewMalformedCompletionError(err.Error())
			c.logger.WithError(err).Warn("Structured completion failed to decode", map[string]interface{}{
				"stage":   stageFrom(ctx),
				"attempt": attempt + 1,
			})
			continue
		}

		if c.cache != nil {
			c.cache.Set(ctx, key, payload)
		}
		return nil
	}

	return errors.NewRetriesExhaustedError(budget, lastErr)
}

// completeWithRetry runs the bounded attempt loop around the provider.
// It consults the circuit breaker before every attempt and backs off
// between attempts per the retry policy.
func (c *ResilientClient) completeWithRetry(ctx context.Context, req CompletionRequest) (string, error) {
	stage := stageFrom(ctx)
	providerName := c.provider.Name()

	budget := c.policy.MaxRetries
	if budget < 1 {
		budget = 1
	}

	var lastErr error
	for attempt := 0; attempt < budget; attempt++ {
		if c.breaker.ShouldBreak() {
			if !c.breaker.CooledDown(time.Now()) {
				metrics.CompletionsTotal.WithLabelValues(stage, providerName, "circuit_open").Inc()
				return "", errors.NewCircuitOpenError(c.breaker.FailureCount(), c.breaker.LastTrip(), c.breaker.Cooldown)
			}
			c.logger.Warn("Circuit breaker cool-down elapsed, probing provider", map[string]interface{}{
				"provider": providerName,
				"failures": c.breaker.FailureCount(),
			})
		}

		if attempt > 0 {
			reason := string(errors.Normalize(lastErr).Code)
			metrics.CompletionRetriesTotal.WithLabelValues(stage, reason).Inc()
			select {
			case <-time.After(c.policy.DelayFor(attempt - 1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if c.requestTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		}
		text, err := c.provider.Complete(attemptCtx, req)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			c.breaker.RecordSuccess()
			metrics.CompletionsTotal.WithLabelValues(stage, providerName, "success").Inc()
			return text, nil
		}

		c.breaker.RecordFailure()
		if c.breaker.FailureCount() == c.breaker.Threshold {
			metrics.CircuitTripsTotal.WithLabelValues(providerName).Inc()
			c.logger.WithError(err).Error("Circuit breaker tripped", map[string]interface{}{
				"provider": providerName,
				"failures": c.breaker.FailureCount(),
			})
		}

		if Classify(err) == DispositionFatal {
			metrics.CompletionsTotal.WithLabelValues(stage, providerName, "fatal").Inc()
			return "", err
		}

		lastErr = err
		c.logger.WithError(err).Warn("Completion attempt failed", map[string]interface{}{
			"stage":    stage,
			"provider": providerName,
			"attempt":  attempt + 1,
			"budget":   budget,
		})
	}

	metrics.CompletionsTotal.WithLabelValues(stage, providerName, "exhausted").Inc()
	return "", errors.NewRetriesExhaustedError(budget, lastErr)
}

// ==========================
// 3. PAYLOAD HANDLING
// ==========================

func (c *ResilientClient) validatePayload(schema map[string]interface{}, payload string) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewStringLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewMalformedCompletionError(err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return errors.NewSchemaValidationFailedError(strings.Join(msgs, "; "))
	}
	return nil
}

// extractJSON peels markdown fences and surrounding prose off a completion,
// leaving the outermost JSON object or array.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}

	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return trimmed
	}
	closing := byte('}')
	if trimmed[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(trimmed, closing)
	if end <= start {
		return trimmed
	}
	return trimmed[start : end+1]
}
