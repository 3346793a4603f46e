// Package model defines data structures for the voice assistant.
package model

import (
	"time"
)

// SentinelTitle is the title a conversation carries until its first user
// message arrives. Once replaced it is never auto-overwritten.
const SentinelTitle = "New Conversation"

// Conversation is a conversation thread. Messages are ordered by append time;
// the order is the transcript order.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// PrimaryLanguage is set exactly once, from the first user message's
	// detected language, and never overwritten afterwards.
	PrimaryLanguage string `json:"primaryLanguage,omitempty"`
}

// FirstUserMessage returns the earliest user-role message, or nil if the
// conversation has none.
func (c *Conversation) FirstUserMessage() *Message {
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser {
			return &c.Messages[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the conversation. The store hands out clones
// so callers can never mutate the snapshot it persists.
func (c *Conversation) Clone() Conversation {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return cp
}
