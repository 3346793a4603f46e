// Package llm provides LLM client interfaces and implementations for the
// model proxy.
package llm

import (
	"context"
	"errors"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []model.ChatMessage
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content   string
	Model     string
	Usage     model.Usage
	LatencyMs int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// UpstreamError is a failure reported by (or on the way to) the remote model
// API. StatusCode carries the upstream HTTP status so the proxy handler can
// map it; Code carries the provider's machine-readable error code when known.
type UpstreamError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// AsUpstream unwraps err into an UpstreamError, or nil if it is not one.
func AsUpstream(err error) *UpstreamError {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey, baseURL string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderGroq:
		return NewGroqClient(apiKey, baseURL)
	default:
		return NewGroqClient(apiKey, baseURL)
	}
}
