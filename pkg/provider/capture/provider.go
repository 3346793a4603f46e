// Package capture defines the Provider interface for speech-capture backends.
//
// A capture provider wraps a platform speech-to-text capability and exposes a
// uniform event interface: once started, a session emits finalized transcripts
// and error codes until it is stopped or its silence timeout fires. The
// recognition internals are external collaborators; this package only fixes
// the contract the orchestrator composes against.
package capture

import (
	"context"
)

// Config describes recognition behaviour for a new capture session.
type Config struct {
	// Language is the BCP-47 language tag to recognise. Empty lets the
	// backend auto-detect, if supported.
	Language string

	// Continuous keeps the session open across utterances instead of ending
	// after the first finalized transcript.
	Continuous bool

	// AutoStop ends the session after SilenceTimeout of no detected speech,
	// measured from the last speech event.
	AutoStop bool

	// SilenceTimeout is the inactivity window for AutoStop. Zero means the
	// backend default.
	SilenceTimeout SilenceTimeout
}

// Session is an open capture session. Callers must call Stop when the session
// is no longer needed; both event channels are closed when the session ends.
type Session interface {
	// Transcripts returns a read-only channel emitting finalized transcripts.
	// Whitespace-only results are the caller's problem to reject.
	Transcripts() <-chan Transcript

	// Errors returns a read-only channel emitting capture errors. A
	// CodeNotAllowed error means microphone permission was denied and the
	// session will produce no transcripts.
	Errors() <-chan Error

	// Stop ends the session and flushes pending events. Safe to call more
	// than once.
	Stop() error
}

// Provider is the abstraction over any speech-capture backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Start opens a capture session. Returns an error if the backend cannot
	// be armed (e.g. device unavailable, ctx already cancelled).
	Start(ctx context.Context, cfg Config) (Session, error)
}
