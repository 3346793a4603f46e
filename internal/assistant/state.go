package assistant

import "sync/atomic"

// State is the orchestrator's turn-taking state.
type State int32

const (
	// StateIdle: no capture armed, no model call in flight, no playback.
	StateIdle State = iota

	// StateCapturing: a capture session is armed and waiting for speech.
	StateCapturing

	// StateThinking: the user message is persisted and a model call is in
	// flight.
	StateThinking

	// StateSpeaking: the assistant reply is being rendered by playback.
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateThinking:
		return "thinking"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// stateVar is an atomically updated State.
type stateVar struct {
	v atomic.Int32
}

func (s *stateVar) get() State { return State(s.v.Load()) }

func (s *stateVar) set(st State) { s.v.Store(int32(st)) }

// compareAndSwap transitions from old to new atomically, reporting whether
// the transition happened. This is the guard that enforces at-most-one
// active turn without a lock around the whole turn.
func (s *stateVar) compareAndSwap(old, new State) bool {
	return s.v.CompareAndSwap(int32(old), int32(new))
}
