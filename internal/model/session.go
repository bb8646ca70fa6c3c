// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages kept per session. When
// exceeded, the oldest non-system messages are pruned to prevent unbounded
// memory growth.
const MaxMessages = 1000

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one named conversation: an ordered list of messages plus
// metadata. Message order is insertion order and is chronological.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `json:"messages"`
}

// NewSession creates a new session with a generated ID. An empty title is
// filled in automatically from the first user message.
func NewSession(title string) *Session {
	now := time.Now()
	return &Session{
		ID:        "sess_" + uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// SESSION METHODS
// =============================================================================

// Clone creates a deep copy of the session. The store mutates only clones,
// so every snapshot handed to observers stays immutable.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]Message, len(s.Messages)),
	}
	copy(clone.Messages, s.Messages)
	return clone
}

// AddMessage appends a message, refreshes UpdatedAt, derives the title if
// needed, and prunes ancient history.
func (s *Session) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	s.deriveTitle()
	s.pruneOldMessages()
}

// MessageIndex returns the position of the message with the given ID, or -1.
func (s *Session) MessageIndex(id string) int {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// LastMessage returns a copy of the most recent message and true, or a zero
// message and false when the session is empty.
func (s *Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// HasStreamingMessage reports whether any message is still being streamed.
func (s *Session) HasStreamingMessage() bool {
	for i := range s.Messages {
		if s.Messages[i].IsStreaming {
			return true
		}
	}
	return false
}

// MessageCount returns the number of messages.
func (s *Session) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if there are no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// GetTitle returns the session title or a default.
func (s *Session) GetTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "New Session"
}

// Preview returns a short preview of the session for list views.
func (s *Session) Preview() string {
	for i := range s.Messages {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Preview(100)
		}
	}
	if len(s.Messages) > 0 {
		return s.Messages[0].Preview(100)
	}
	return "Empty session"
}

// deriveTitle auto-generates a title from the first user message if unset.
func (s *Session) deriveTitle() {
	if s.Title != "" {
		return
	}
	for i := range s.Messages {
		if s.Messages[i].Role == RoleUser {
			s.Title = s.Messages[i].Preview(50)
			return
		}
	}
}

// pruneOldMessages drops the oldest non-system messages past MaxMessages.
func (s *Session) pruneOldMessages() {
	if len(s.Messages) <= MaxMessages {
		return
	}

	var system []Message
	var rest []Message
	for _, msg := range s.Messages {
		if msg.Role == RoleSystem {
			system = append(system, msg)
		} else {
			rest = append(rest, msg)
		}
	}

	if len(rest) > MaxMessages {
		rest = rest[len(rest)-MaxMessages:]
	}

	s.Messages = make([]Message, 0, len(system)+len(rest))
	s.Messages = append(s.Messages, system...)
	s.Messages = append(s.Messages, rest...)
}

// =============================================================================
// SESSION METADATA
// =============================================================================

// SessionMeta holds lightweight metadata for listing sessions.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Preview      string    `json:"preview"`
}

// Meta returns metadata about the session.
func (s *Session) Meta() SessionMeta {
	return SessionMeta{
		ID:           s.ID,
		Title:        s.GetTitle(),
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Preview:      s.Preview(),
	}
}
