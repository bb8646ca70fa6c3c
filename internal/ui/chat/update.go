// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages for the chat view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.refreshTranscript()
		m.ready = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Send):
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" || m.generating {
				return m, nil
			}
			sess := m.store.CurrentSession()
			if sess == nil {
				sess = m.store.CreateSession("")
			}
			m.textarea.Reset()
			m.generating = true
			m.gate.Reset()
			return m, tea.Batch(
				m.startGenerationCmd(sess.ID, text),
				streamTickCmd(),
				m.spinner.Tick,
			)

		case key.Matches(msg, m.keys.NewSession):
			if !m.generating {
				m.store.CreateSession("")
				m.refreshTranscript()
			}

		case key.Matches(msg, m.keys.Clear):
			if !m.generating {
				if sess := m.store.CurrentSession(); sess != nil {
					m.store.ClearMessages(sess.ID)
					m.refreshTranscript()
				}
			}

		case key.Matches(msg, m.keys.ScrollUp):
			m.viewport.HalfViewUp()

		case key.Matches(msg, m.keys.ScrollDown):
			m.viewport.HalfViewDown()

		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}

	case StreamTickMsg:
		if m.gate.ShouldRender() {
			m.refreshTranscript()
		}
		if m.generating {
			cmds = append(cmds, streamTickCmd())
		}

	case GenerationDoneMsg:
		m.generating = false
		m.gate.Force()
		m.refreshTranscript()

	case HealthTickMsg:
		cmds = append(cmds, m.pollHealthCmd())

	case HealthMsg:
		m.health = msg
		cmds = append(cmds, healthTickCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.generating {
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// layout sizes the viewport and textarea to the current window.
func (m *Model) layout() {
	inputHeight := m.textarea.Height() + 1
	chromeHeight := 1 + 1 + 1 // header, status bar, shortcuts
	vpHeight := m.height - inputHeight - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewportWithSize(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.width - 2)
}
