// Package mock provides test doubles for the capture package interfaces.
//
// Use Provider to verify the caller arms sessions with the expected Config.
// Use Session to feed controlled transcripts and errors to the consumer.
//
// Example:
//
//	sess := mock.NewSession()
//	p := &mock.Provider{Session: sess}
//	handle, _ := p.Start(ctx, cfg)
//	sess.TranscriptsCh <- capture.Transcript{Text: "hello"}
package mock

import (
	"context"
	"sync"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/capture"
)

// StartCall records a single invocation of Provider.Start.
type StartCall struct {
	// Ctx is the context passed to Start.
	Ctx context.Context
	// Cfg is the Config passed to Start.
	Cfg capture.Config
}

// Provider is a mock implementation of capture.Provider.
type Provider struct {
	mu sync.Mutex

	// Session is returned by Start. If nil, Start returns a new default
	// Session with buffered channels.
	Session capture.Session

	// StartErr, if non-nil, is returned as the error from Start.
	StartErr error

	// StartCalls records every call to Start in order.
	StartCalls []StartCall
}

// Start records the call and returns Session, StartErr.
func (p *Provider) Start(ctx context.Context, cfg capture.Config) (capture.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartCalls = append(p.StartCalls, StartCall{Ctx: ctx, Cfg: cfg})
	if p.StartErr != nil {
		return nil, p.StartErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return NewSession(), nil
}

// StartCount returns the number of Start calls. Thread-safe.
func (p *Provider) StartCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.StartCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartCalls = nil
}

// Ensure Provider implements capture.Provider at compile time.
var _ capture.Provider = (*Provider)(nil)

// Session is a mock implementation of capture.Session. Tests own the event
// channels: send the values the consumer should receive, then close them.
type Session struct {
	mu sync.Mutex

	// TranscriptsCh is the channel returned by Transcripts().
	TranscriptsCh chan capture.Transcript

	// ErrorsCh is the channel returned by Errors().
	ErrorsCh chan capture.Error

	// StopErr, if non-nil, is returned by Stop.
	StopErr error

	// StopCallCount is the number of times Stop was called.
	StopCallCount int
}

// NewSession returns a Session with buffered event channels.
func NewSession() *Session {
	return &Session{
		TranscriptsCh: make(chan capture.Transcript, 16),
		ErrorsCh:      make(chan capture.Error, 16),
	}
}

// Transcripts returns TranscriptsCh.
func (s *Session) Transcripts() <-chan capture.Transcript {
	return s.TranscriptsCh
}

// Errors returns ErrorsCh.
func (s *Session) Errors() <-chan capture.Error {
	return s.ErrorsCh
}

// Stop records the call and returns StopErr.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StopCallCount++
	return s.StopErr
}

// StopCount returns the number of Stop calls. Thread-safe.
func (s *Session) StopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StopCallCount
}

// Ensure Session implements capture.Session at compile time.
var _ capture.Session = (*Session)(nil)
