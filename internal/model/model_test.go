// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want user", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q", msg.Content)
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.IsStreaming {
		t.Error("user message must not be streaming")
	}
}

func TestNewAssistantPlaceholder(t *testing.T) {
	msg := NewAssistantPlaceholder()

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if !msg.IsStreaming {
		t.Error("placeholder must start streaming")
	}
	if !msg.IsEmpty() {
		t.Error("placeholder must start empty")
	}
}

func TestMessagePatchApply(t *testing.T) {
	msg := NewAssistantPlaceholder()

	patch := MessagePatch{
		Content:   StringPtr("partial answer"),
		Reasoning: StringPtr("thinking..."),
	}
	patch.Apply(&msg)

	if msg.Content != "partial answer" {
		t.Errorf("Content = %q", msg.Content)
	}
	if msg.Reasoning != "thinking..." {
		t.Errorf("Reasoning = %q", msg.Reasoning)
	}
	if !msg.IsStreaming {
		t.Error("patch without IsStreaming must not finalize")
	}

	final := MessagePatch{
		IsStreaming: BoolPtr(false),
		ElapsedMS:   Int64Ptr(1200),
	}
	final.Apply(&msg)

	if msg.IsStreaming {
		t.Error("message should be finalized")
	}
	if msg.ElapsedMS != 1200 {
		t.Errorf("ElapsedMS = %d", msg.ElapsedMS)
	}
	if msg.Content != "partial answer" {
		t.Error("finalize patch must not clobber content")
	}
}

func TestMessagePreviewUnicode(t *testing.T) {
	msg := NewUserMessage("héllo wörld, this is a longer message")
	preview := msg.Preview(10)
	if RuneLen := len([]rune(preview)); RuneLen > 10 {
		t.Errorf("preview too long: %d runes", RuneLen)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("unknown role should be invalid")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNewSession(t *testing.T) {
	s := NewSession("")

	if !strings.HasPrefix(s.ID, "sess_") {
		t.Errorf("ID = %q, want sess_ prefix", s.ID)
	}
	if !s.IsEmpty() {
		t.Error("new session should be empty")
	}
	if s.GetTitle() != "New Session" {
		t.Errorf("GetTitle = %q", s.GetTitle())
	}
}

func TestSessionTitleDerivedFromFirstUserMessage(t *testing.T) {
	s := NewSession("")
	s.AddMessage(NewSystemMessage("be terse"))
	s.AddMessage(NewUserMessage("how many shards does my index have?"))

	if s.Title != "how many shards does my index have?" {
		t.Errorf("Title = %q", s.Title)
	}

	// Title does not change once set.
	s.AddMessage(NewUserMessage("something else entirely"))
	if s.Title != "how many shards does my index have?" {
		t.Errorf("Title changed to %q", s.Title)
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := NewSession("original")
	s.AddMessage(NewUserMessage("hello"))

	clone := s.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Title = "changed"

	if s.Messages[0].Content != "hello" {
		t.Error("clone mutation leaked into original message")
	}
	if s.Title != "original" {
		t.Error("clone mutation leaked into original title")
	}
}

func TestSessionHasStreamingMessage(t *testing.T) {
	s := NewSession("")
	s.AddMessage(NewUserMessage("hi"))
	if s.HasStreamingMessage() {
		t.Error("no streaming message yet")
	}

	s.AddMessage(NewAssistantPlaceholder())
	if !s.HasStreamingMessage() {
		t.Error("placeholder should be streaming")
	}
}

func TestSessionPruneKeepsSystemMessages(t *testing.T) {
	s := NewSession("t")
	s.AddMessage(NewSystemMessage("system prompt"))
	for i := 0; i < MaxMessages+10; i++ {
		s.AddMessage(NewUserMessage("filler"))
	}

	if s.MessageCount() != MaxMessages+1 {
		t.Errorf("MessageCount = %d, want %d", s.MessageCount(), MaxMessages+1)
	}
	if s.Messages[0].Role != RoleSystem {
		t.Error("system message must survive pruning at index 0")
	}
}

func TestSessionMeta(t *testing.T) {
	s := NewSession("")
	s.AddMessage(NewUserMessage("ping cluster"))

	meta := s.Meta()
	if meta.ID != s.ID {
		t.Error("meta ID mismatch")
	}
	if meta.MessageCount != 1 {
		t.Errorf("MessageCount = %d", meta.MessageCount)
	}
	if meta.Preview != "ping cluster" {
		t.Errorf("Preview = %q", meta.Preview)
	}
}
