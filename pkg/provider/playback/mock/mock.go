// Package mock provides a test double for the playback.Provider interface.
//
// Inspect SpeakCalls to verify the text and voice the caller rendered;
// configure SpeakErr or a blocking SpeakFunc to exercise failure and
// cancellation paths.
package mock

import (
	"context"
	"sync"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/playback"
)

// SpeakCall records a single invocation of Speak.
type SpeakCall struct {
	// Ctx is the context passed to Speak.
	Ctx context.Context
	// Text is the text passed to Speak.
	Text string
	// Voice is the Voice passed to Speak.
	Voice playback.Voice
}

// Provider is a mock implementation of playback.Provider.
type Provider struct {
	mu sync.Mutex

	// SpeakErr, if non-nil, is returned by every Speak call.
	SpeakErr error

	// SpeakFunc, if non-nil, is called instead of returning SpeakErr. Use it
	// to block until a test-controlled signal to exercise cancellation.
	SpeakFunc func(ctx context.Context, text string, voice playback.Voice) error

	// VoicesResult is returned by Voices.
	VoicesResult []playback.Voice

	// VoicesErr, if non-nil, is returned as the error from Voices.
	VoicesErr error

	// SpeakCalls records every call to Speak in order.
	SpeakCalls []SpeakCall

	// CancelCallCount is the number of times Cancel was called.
	CancelCallCount int
}

// Speak records the call and returns the configured result.
func (p *Provider) Speak(ctx context.Context, text string, voice playback.Voice) error {
	p.mu.Lock()
	p.SpeakCalls = append(p.SpeakCalls, SpeakCall{Ctx: ctx, Text: text, Voice: voice})
	fn := p.SpeakFunc
	err := p.SpeakErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, voice)
	}
	return err
}

// Cancel records the call.
func (p *Provider) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CancelCallCount++
}

// Voices returns VoicesResult, VoicesErr.
func (p *Provider) Voices(ctx context.Context) ([]playback.Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.VoicesResult, p.VoicesErr
}

// Calls returns a snapshot of recorded Speak calls. Thread-safe.
func (p *Provider) Calls() []SpeakCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SpeakCall, len(p.SpeakCalls))
	copy(out, p.SpeakCalls)
	return out
}

// CancelCount returns the number of Cancel calls. Thread-safe.
func (p *Provider) CancelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CancelCallCount
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SpeakCalls = nil
	p.CancelCallCount = 0
}

// Ensure Provider implements playback.Provider at compile time.
var _ playback.Provider = (*Provider)(nil)
