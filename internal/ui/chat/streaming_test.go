// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestRenderGateCleanUntilDirty(t *testing.T) {
	g := NewRenderGate()
	if g.ShouldRender() {
		t.Error("clean gate must not render")
	}
}

func TestRenderGateBatchThreshold(t *testing.T) {
	g := NewRenderGateWithConfig(3, 1) // 1fps so only the batch can trigger

	g.MarkDirty()
	g.MarkDirty()
	if g.ShouldRender() {
		t.Error("below batch threshold and within frame interval")
	}

	g.MarkDirty()
	if !g.ShouldRender() {
		t.Error("batch threshold reached, render expected")
	}
	if g.ShouldRender() {
		t.Error("render consumed the dirty state")
	}
}

func TestRenderGateFrameInterval(t *testing.T) {
	g := NewRenderGateWithConfig(1000, 60)

	g.MarkDirty()
	time.Sleep(25 * time.Millisecond) // past the ~16ms frame at 60fps
	if !g.ShouldRender() {
		t.Error("frame interval elapsed, render expected")
	}
}

func TestRenderGateForce(t *testing.T) {
	g := NewRenderGateWithConfig(1000, 1)

	g.MarkDirty()
	if !g.Force() {
		t.Error("Force must report the pending dirty state")
	}
	if g.Force() {
		t.Error("second Force has nothing pending")
	}
}

func TestRenderGateReset(t *testing.T) {
	g := NewRenderGateWithConfig(2, 60)
	g.MarkDirty()
	g.MarkDirty()
	g.Reset()

	if g.Pending() != 0 {
		t.Errorf("Pending = %d after reset", g.Pending())
	}
	if g.ShouldRender() {
		t.Error("reset gate must not render")
	}
}
