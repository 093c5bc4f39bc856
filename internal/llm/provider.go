// internal/llm/provider.go
package llm

import "context"

// CompletionRequest is one raw generation call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// Provider is a completion backend. Implementations map failures they
// recognize to StandardErrors and pass anything else through for the
// policy to classify.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
