// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// RENDER GATE
// =============================================================================

// RenderGate rate-limits transcript re-renders during streaming. Tokens can
// arrive far faster than a terminal can usefully repaint; the gate marks the
// transcript dirty on every delta and lets a render through at most once per
// frame interval, or immediately once enough deltas have accumulated.
//
// Thread-safety: deltas arrive from the streaming goroutine while renders
// happen in the Bubble Tea loop, so all state is behind a mutex.
type RenderGate struct {
	mu         sync.Mutex
	dirty      bool
	deltaCount int
	lastRender time.Time

	batchSize     int
	frameInterval time.Duration
}

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewRenderGate creates a gate with the default 30fps cap.
func NewRenderGate() *RenderGate {
	return NewRenderGateWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewRenderGateWithConfig creates a gate with custom batching settings.
func NewRenderGateWithConfig(batchSize, maxFPS int) *RenderGate {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &RenderGate{
		batchSize:     batchSize,
		frameInterval: time.Duration(1000/maxFPS) * time.Millisecond,
		lastRender:    time.Now(),
	}
}

// MarkDirty records that a delta arrived and the transcript is stale.
func (g *RenderGate) MarkDirty() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = true
	g.deltaCount++
}

// ShouldRender reports whether a re-render is due, and if so consumes the
// dirty state so the next call waits for new deltas or the next frame.
func (g *RenderGate) ShouldRender() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.dirty {
		return false
	}
	if g.deltaCount < g.batchSize && time.Since(g.lastRender) < g.frameInterval {
		return false
	}

	g.dirty = false
	g.deltaCount = 0
	g.lastRender = time.Now()
	return true
}

// Force consumes the dirty state unconditionally. Used when a stream ends so
// the final content always reaches the screen.
func (g *RenderGate) Force() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	wasDirty := g.dirty
	g.dirty = false
	g.deltaCount = 0
	g.lastRender = time.Now()
	return wasDirty
}

// Reset clears all state. Used when a new generation starts.
func (g *RenderGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dirty = false
	g.deltaCount = 0
	g.lastRender = time.Now()
}

// Pending returns the number of deltas since the last render.
func (g *RenderGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deltaCount
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd sends StreamTickMsg at the frame rate while streaming.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
