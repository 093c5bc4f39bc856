// internal/llm/openai.go
package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"gt-analyzer/internal/common/errors"
	"gt-analyzer/internal/common/httpclient"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	httpClient *httpclient.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewOpenAIProvider(apiKey, baseURL, model string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		httpClient: httpclient.NewClient(timeout),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Model() string { return p.model }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	payload := openAIRequest{
		Model:       p.model,
		Messages:    []openAIMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}

	resp, err := p.httpClient.PostJSON(ctx, p.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return "", p.classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewMalformedCompletionError(fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode != 200 {
		return "", p.classifyStatus(resp.StatusCode, string(body))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.NewMalformedCompletionError(fmt.Sprintf("failed to parse response: %v", err))
	}
	if parsed.Error != nil {
		return "", errors.NewInvalidRequestError(parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", errors.NewEmptyCompletionError(p.Name())
	}
	return parsed.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) classifyTransportError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewRequestTimeoutError(p.Name())
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewRequestTimeoutError(p.Name())
	}
	return err
}

func (p *OpenAIProvider) classifyStatus(status int, body string) error {
	switch {
	case status == 429:
		return errors.NewRateLimitedError(body)
	case status >= 500:
		return errors.NewProviderUnavailableError(fmt.Sprintf("status %d: %s", status, body))
	case status == 401 || status == 403:
		return errors.NewAuthFailedError(body)
	case status == 408:
		return errors.NewRequestTimeoutError(p.Name())
	default:
		return errors.NewInvalidRequestError(fmt.Sprintf("status %d: %s", status, body))
	}
}
