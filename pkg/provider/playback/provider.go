// Package playback defines the Provider interface for text-to-speech
// backends and the voice-selection policy shared by all of them.
//
// Synthesis internals are external collaborators; this package fixes the
// contract the orchestrator composes against: speak a reply, wait for
// completion, cancel on demand.
package playback

import (
	"context"
)

// Provider is the abstraction over any text-to-speech backend.
//
// Implementations must be safe for concurrent use, though callers should not
// issue overlapping Speak calls for the same output device.
type Provider interface {
	// Speak renders text with the given voice and blocks until playback
	// completes, ctx is cancelled, or Cancel is called. A cancelled playback
	// returns ctx.Err() or nil, never a synthesis error.
	Speak(ctx context.Context, text string, voice Voice) error

	// Cancel aborts any in-flight playback. Safe to call when idle.
	Cancel()

	// Voices returns the backend's available voices.
	Voices(ctx context.Context) ([]Voice, error)
}
