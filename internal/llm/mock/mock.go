// Package mock provides a test double for the llm.Client interface.
//
// Configure CompleteResult / CompleteErr, then inspect CompleteCalls to
// verify the history the caller submitted.
package mock

import (
	"context"
	"sync"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is a copy of the request passed to Complete.
	Req llm.CompletionRequest
}

// Client is a mock implementation of llm.Client.
type Client struct {
	mu sync.Mutex

	// CompleteResult is returned by Complete when CompleteErr is nil.
	CompleteResult *llm.CompletionResponse

	// CompleteErr, if non-nil, is returned as the error from Complete.
	CompleteErr error

	// CompleteFunc, if non-nil, overrides CompleteResult/CompleteErr entirely.
	CompleteFunc func(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)

	// NameResult is returned by Name. Defaults to "mock".
	NameResult string

	// ModelsResult is returned by Models.
	ModelsResult []string

	// CompleteCalls records every call to Complete in order.
	CompleteCalls []CompleteCall
}

// Complete records the call and returns the configured result.
func (c *Client) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.mu.Lock()
	reqCopy := *req
	reqCopy.Messages = append(reqCopy.Messages[:0:0], req.Messages...)
	c.CompleteCalls = append(c.CompleteCalls, CompleteCall{Ctx: ctx, Req: reqCopy})
	fn := c.CompleteFunc
	res, err := c.CompleteResult, c.CompleteErr
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return res, err
}

// Name returns NameResult, or "mock" when unset.
func (c *Client) Name() string {
	if c.NameResult == "" {
		return "mock"
	}
	return c.NameResult
}

// Models returns ModelsResult.
func (c *Client) Models() []string {
	return c.ModelsResult
}

// Calls returns a snapshot of recorded Complete calls. Thread-safe.
func (c *Client) Calls() []CompleteCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CompleteCall, len(c.CompleteCalls))
	copy(out, c.CompleteCalls)
	return out
}

// Reset clears all recorded calls. Thread-safe.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CompleteCalls = nil
}

// Ensure Client implements llm.Client at compile time.
var _ llm.Client = (*Client)(nil)
