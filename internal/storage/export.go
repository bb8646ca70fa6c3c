// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jeranaias/elastui/internal/model"
	"github.com/jeranaias/elastui/internal/util"
)

// =============================================================================
// SESSION EXPORT
// =============================================================================

// ExportMarkdown renders a session as a readable Markdown transcript.
// Reasoning segments are kept, folded into quote blocks under their answer.
func ExportMarkdown(sess *model.Session) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(sess.GetTitle())
	b.WriteString("\n\n")
	b.WriteString("*Created: ")
	b.WriteString(sess.CreatedAt.Format(time.RFC1123))
	b.WriteString("*\n\n---\n\n")

	for i := range sess.Messages {
		msg := &sess.Messages[i]

		b.WriteString("## ")
		b.WriteString(msg.Role.DisplayName())
		b.WriteString("\n\n")

		if msg.HasReasoning() {
			b.WriteString("> ")
			b.WriteString(strings.ReplaceAll(msg.Reasoning, "\n", "\n> "))
			b.WriteString("\n\n")
		}

		b.WriteString(msg.Content)
		b.WriteString("\n\n")

		if msg.Failed() {
			b.WriteString("*(failed: ")
			b.WriteString(msg.Err)
			b.WriteString(")*\n\n")
		}
	}

	return b.String()
}

// ExportJSON renders a session as indented JSON.
func ExportJSON(sess *model.Session) ([]byte, error) {
	return json.MarshalIndent(sess, "", "  ")
}

// WriteMarkdown exports a session to a Markdown file atomically.
func WriteMarkdown(sess *model.Session, path string) error {
	return util.AtomicWriteFile(path, []byte(ExportMarkdown(sess)), 0644)
}

// WriteJSON exports a session to a JSON file atomically.
func WriteJSON(sess *model.Session, path string) error {
	data, err := ExportJSON(sess)
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(path, data, 0644)
}
