// internal/llm/gemini.go
package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"gt-analyzer/internal/common/errors"
)

// GeminiProvider calls the Gemini API through the official genai client.
type GeminiProvider struct {
	cli   *genai.Client
	model string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiProvider{cli: cli, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.cli.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		return "", p.classifyError(err)
	}

	text := collectText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.NewEmptyCompletionError(p.Name())
	}
	return text, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// classifyError maps recognizable Gemini failures onto standard codes.
// Unrecognized errors pass through for the retry policy to treat as fatal.
func (p *GeminiProvider) classifyError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewRequestTimeoutError(p.Name())
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
		return errors.NewRateLimitedError(msg)
	case strings.Contains(msg, "500") || strings.Contains(msg, "503") || strings.Contains(msg, "UNAVAILABLE") || strings.Contains(msg, "INTERNAL"):
		return errors.NewProviderUnavailableError(msg)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "UNAUTHENTICATED") || strings.Contains(msg, "PERMISSION_DENIED") || strings.Contains(lower, "api key"):
		return errors.NewAuthFailedError(msg)
	case strings.Contains(msg, "400") || strings.Contains(msg, "INVALID_ARGUMENT"):
		return errors.NewInvalidRequestError(msg)
	default:
		return err
	}
}
