// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the TUI: a scrolling transcript,
// an input area, and a status bar showing cluster health and generation
// state.
package chat

import (
	"time"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StreamTickMsg drives transcript re-renders while a generation streams.
type StreamTickMsg struct {
	Time time.Time
}

// GenerationDoneMsg reports the end of a generation turn.
type GenerationDoneMsg struct {
	Err error
}

// HealthTickMsg triggers a cluster health poll.
type HealthTickMsg struct{}

// HealthMsg carries the result of a cluster health poll.
type HealthMsg struct {
	Health  string // "green", "yellow", "red", or "" when unreachable
	Cluster string
	Err     error
}
