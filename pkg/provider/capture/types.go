package capture

import "time"

// SilenceTimeout is the inactivity window after which an auto-stop session
// ends, measured from the last detected speech event.
type SilenceTimeout = time.Duration

// DefaultSilenceTimeout matches the browser recogniser the contract was
// modelled on.
const DefaultSilenceTimeout = 2 * time.Second

// Transcript is a finalized speech-to-text result.
type Transcript struct {
	// Text is the recognised speech content.
	Text string

	// Confidence is the recogniser's confidence (0.0–1.0), zero when the
	// backend does not report one.
	Confidence float64

	// At marks when the utterance was finalized.
	At time.Time
}

// ErrorCode classifies capture failures.
type ErrorCode string

const (
	// CodeNotAllowed means microphone permission was denied.
	CodeNotAllowed ErrorCode = "not-allowed"

	// CodeNoSpeech means the session ended without detecting speech.
	CodeNoSpeech ErrorCode = "no-speech"

	// CodeAborted means the session was cancelled by the caller.
	CodeAborted ErrorCode = "aborted"

	// CodeNetwork means the backend lost its recognition service.
	CodeNetwork ErrorCode = "network"
)

// Error is a capture failure event.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e Error) Error() string {
	if e.Message != "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code)
}

// IsPermission reports whether the error means capture permission was denied.
func (e Error) IsPermission() bool {
	return e.Code == CodeNotAllowed
}
