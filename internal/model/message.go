// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session.
//
// Messages are handled as values: the session store hands out copies and
// accepts patches, so a Message held by an observer never changes under it.
// Content and Reasoning are mutable only while IsStreaming is set; after
// finalization the message is never touched again.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content is the user-visible text. During streaming it grows as deltas
	// arrive; it never contains an unterminated reasoning delimiter.
	Content string `json:"content"`

	// Reasoning is the model's extracted thinking text, if any.
	Reasoning string `json:"reasoning,omitempty"`

	// IsStreaming marks the assistant placeholder that is being filled in.
	IsStreaming bool `json:"-"`

	// ElapsedMS is the total generation time reported by the server.
	ElapsedMS int64 `json:"elapsed_ms,omitempty"`

	// Err is set when the generation producing this message failed.
	Err string `json:"error,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantPlaceholder creates the empty assistant message that a
// generation fills in while streaming.
func NewAssistantPlaceholder() Message {
	return Message{
		ID:          "msg_" + uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no visible content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// HasReasoning returns true if the message carries extracted reasoning text.
func (m *Message) HasReasoning() bool {
	return len(m.Reasoning) > 0
}

// Failed returns true if the generation behind this message errored.
func (m *Message) Failed() bool {
	return m.Err != ""
}

// =============================================================================
// MESSAGE PATCH
// =============================================================================

// MessagePatch describes a partial update to a message. Nil fields are left
// untouched; the store applies patches onto a fresh copy of the message.
type MessagePatch struct {
	Content     *string
	Reasoning   *string
	IsStreaming *bool
	ElapsedMS   *int64
	Err         *string
}

// Apply copies the set fields of the patch onto m.
func (p *MessagePatch) Apply(m *Message) {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Reasoning != nil {
		m.Reasoning = *p.Reasoning
	}
	if p.IsStreaming != nil {
		m.IsStreaming = *p.IsStreaming
	}
	if p.ElapsedMS != nil {
		m.ElapsedMS = *p.ElapsedMS
	}
	if p.Err != nil {
		m.Err = *p.Err
	}
}

// =============================================================================
// PATCH HELPERS
// =============================================================================

// StringPtr returns a pointer to s, for building patches.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b, for building patches.
func BoolPtr(b bool) *bool { return &b }

// Int64Ptr returns a pointer to i, for building patches.
func Int64Ptr(i int64) *int64 { return &i }
