package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is a role that may appear in a stored
// conversation. System messages are injected server-side and never persisted.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single utterance in a conversation. Messages are immutable
// once created; insertion order within a conversation is the transcript order.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Language is the detected BCP-47 base tag of the content ("en", "ur", ...).
	// Assistant messages carry the language of the user utterance that
	// triggered them, so playback voice selection stays consistent with the
	// user's language.
	Language string `json:"language,omitempty"`
}
