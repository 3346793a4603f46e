package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible chat completions endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient talks to Groq's OpenAI-compatible API.
type GroqClient struct {
	client *openai.Client
}

// NewGroqClient creates a new Groq client. baseURL may be empty to use the
// hosted endpoint.
func NewGroqClient(apiKey, baseURL string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, errors.New("Groq API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	cfg.BaseURL = baseURL

	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

// Name returns the provider name.
func (c *GroqClient) Name() string {
	return "groq"
}

// Models returns available models.
func (c *GroqClient) Models() []string {
	return RecommendedModels
}

// Complete sends a completion request.
func (c *GroqClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	modelName := ResolveModel(req.Model)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.8
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
		TopP:        0.95,
	})
	if err != nil {
		return nil, upstreamFromOpenAI(err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &CompletionResponse{
		Content: content,
		Model:   modelName,
		Usage: model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// upstreamFromOpenAI converts a go-openai error into an UpstreamError,
// preserving the upstream status so the proxy handler can map it. Context
// deadline expiry becomes a gateway timeout; other transport failures become
// service-unavailable.
func upstreamFromOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if s, ok := apiErr.Code.(string); ok {
			code = s
		}
		return &UpstreamError{
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Message:    apiErr.Message,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{
			StatusCode: http.StatusGatewayTimeout,
			Message:    "request timeout",
		}
	}
	return &UpstreamError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    err.Error(),
	}
}
