// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/elastui/internal/model"
)

// =============================================================================
// SESSION DATABASE TESTS
// =============================================================================

func openTestDB(t *testing.T) *SessionDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	a := model.NewSession("cluster health")
	a.AddMessage(model.NewUserMessage("is my cluster green?"))
	answer := model.NewMessage(model.RoleAssistant, "Yes, all shards assigned.")
	answer.Reasoning = "checked the health endpoint"
	answer.ElapsedMS = 850
	a.AddMessage(answer)

	b := model.NewSession("second")

	if err := db.Save([]*model.Session{b, a}, b.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sessions, currentID, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d", len(sessions))
	}
	if currentID != b.ID {
		t.Errorf("currentID = %q, want %q", currentID, b.ID)
	}

	// Order is preserved.
	if sessions[0].ID != b.ID || sessions[1].ID != a.ID {
		t.Error("session order not preserved")
	}

	got := sessions[1]
	if got.Title != "cluster health" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.MessageCount() != 2 {
		t.Fatalf("MessageCount = %d", got.MessageCount())
	}
	if got.Messages[0].Content != "is my cluster green?" {
		t.Errorf("user content = %q", got.Messages[0].Content)
	}
	if got.Messages[1].Reasoning != "checked the health endpoint" {
		t.Errorf("reasoning = %q", got.Messages[1].Reasoning)
	}
	if got.Messages[1].ElapsedMS != 850 {
		t.Errorf("ElapsedMS = %d", got.Messages[1].ElapsedMS)
	}
}

func TestSaveOverwritesPreviousState(t *testing.T) {
	db := openTestDB(t)

	a := model.NewSession("kept")
	doomed := model.NewSession("doomed")
	if err := db.Save([]*model.Session{a, doomed}, a.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Second save without the deleted session.
	if err := db.Save([]*model.Session{a}, a.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sessions, _, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len = %d, stale session survived", len(sessions))
	}
	if sessions[0].ID != a.ID {
		t.Errorf("wrong survivor %q", sessions[0].ID)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	sessions, currentID, err := db.Load()
	if err != nil {
		t.Fatalf("Load on empty db: %v", err)
	}
	if len(sessions) != 0 || currentID != "" {
		t.Errorf("expected empty state, got %d sessions, current %q", len(sessions), currentID)
	}
}

func TestStreamingFlagNotPersisted(t *testing.T) {
	db := openTestDB(t)

	sess := model.NewSession("mid-stream crash")
	sess.AddMessage(model.NewUserMessage("hello"))
	sess.AddMessage(model.NewAssistantPlaceholder())

	if err := db.Save([]*model.Session{sess}, sess.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sessions, _, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sessions[0].HasStreamingMessage() {
		t.Error("rehydrated message must not be streaming")
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	sess := model.NewSession("")
	sess.AddMessage(model.NewUserMessage("why is my shard unassigned?"))
	answer := model.NewMessage(model.RoleAssistant, "Disk watermark exceeded.")
	answer.Reasoning = "node stats show 92% disk use"
	sess.AddMessage(answer)

	md := ExportMarkdown(sess)

	if !strings.Contains(md, "# why is my shard unassigned?") {
		t.Error("missing derived title heading")
	}
	if !strings.Contains(md, "## You") || !strings.Contains(md, "## Assistant") {
		t.Error("missing role headings")
	}
	if !strings.Contains(md, "> node stats show 92% disk use") {
		t.Error("reasoning not folded into quote block")
	}
	if !strings.Contains(md, "Disk watermark exceeded.") {
		t.Error("missing answer body")
	}
}

func TestExportJSONRoundTrips(t *testing.T) {
	sess := model.NewSession("json export")
	sess.AddMessage(model.NewUserMessage("hi"))

	data, err := ExportJSON(sess)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(string(data), sess.ID) {
		t.Error("exported JSON missing session id")
	}
}
