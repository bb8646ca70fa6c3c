// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/elastui/internal/model"
	"github.com/jeranaias/elastui/internal/ui/components"
)

func viewportWithSize(width, height int) viewport.Model {
	return viewport.New(width, height)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.renderHeader()
	status := components.RenderStatusBar(m.theme, components.StatusBarData{
		ClusterHealth: m.health.Health,
		ClusterName:   m.health.Cluster,
		Model:         m.ctrl.Model(),
		State:         m.stateLabel(),
	}, m.width)
	shortcuts := components.RenderShortcuts(m.theme, [][2]string{
		{"enter", "send"},
		{"ctrl+n", "new session"},
		{"ctrl+l", "clear"},
		{"pgup/pgdn", "scroll"},
		{"ctrl+c", "quit"},
	}, m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.textarea.View(),
		status,
		shortcuts,
	)
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("elastui")
	sub := ""
	if sess := m.store.CurrentSession(); sess != nil {
		sub = " · " + sess.GetTitle()
	}
	return m.theme.Header.Width(m.width).Render(title + sub)
}

func (m *Model) stateLabel() string {
	if m.generating {
		return m.spinner.View() + " " + m.ctrl.CurrentState().String()
	}
	return "idle"
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the current session into the viewport and
// keeps the view pinned to the bottom during streaming.
func (m *Model) refreshTranscript() {
	sess := m.store.CurrentSession()
	if sess == nil {
		m.viewport.SetContent(m.theme.Placeholder.Render("No session."))
		return
	}

	wasAtBottom := m.viewport.AtBottom()

	var b strings.Builder
	for i := range sess.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(&sess.Messages[i]))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())

	if wasAtBottom || sess.HasStreamingMessage() {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessage(msg *model.Message) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	case model.RoleAssistant:
		label = m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	default:
		label = m.theme.SystemLabel.Render(msg.Role.DisplayName())
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n")

	if m.cfg.UI.ShowReasoning && msg.HasReasoning() {
		b.WriteString(m.theme.Reasoning.Render(msg.Reasoning))
		b.WriteString("\n")
	}

	content := msg.Content
	switch {
	case msg.IsStreaming:
		// Streaming text stays plain; re-rendering markdown per token is
		// wasteful and makes the layout jump.
		b.WriteString(m.theme.MessageBody.Render(content))
	case msg.Role == model.RoleAssistant && m.renderer != nil:
		if rendered, err := m.renderer.Render(content); err == nil {
			b.WriteString(strings.TrimRight(rendered, "\n"))
		} else {
			b.WriteString(m.theme.MessageBody.Render(components.HighlightFencedBlocks(content)))
		}
	default:
		b.WriteString(m.theme.MessageBody.Render(content))
	}

	if msg.Failed() {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorText.Render("error: " + msg.Err))
	}

	return b.String()
}
