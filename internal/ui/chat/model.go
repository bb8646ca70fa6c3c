// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/elastui/internal/config"
	"github.com/jeranaias/elastui/internal/elastic"
	"github.com/jeranaias/elastui/internal/session"
	"github.com/jeranaias/elastui/internal/ui/styles"
)

// healthPollInterval is how often the status bar refreshes cluster health.
const healthPollInterval = 15 * time.Second

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	store *session.Store
	ctrl  *session.Controller
	es    *elastic.Client
	cfg   *config.Config

	theme *styles.Theme
	keys  KeyMap

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	gate     *RenderGate
	renderer *glamour.TermRenderer

	generating bool
	health     HealthMsg
	width      int
	height     int
	ready      bool
}

// New creates the chat view. The Elasticsearch client may be nil when the
// cluster is not configured; the status bar then shows offline.
func New(store *session.Store, ctrl *session.Controller, es *elastic.Client, cfg *config.Config) *Model {
	theme := styles.NewTheme()

	ta := textarea.New()
	ta.Placeholder = "Ask about your cluster..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 8192
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	gate := NewRenderGate()
	ctrl.SetProgressCallback(func(string) { gate.MarkDirty() })

	m := &Model{
		store:    store,
		ctrl:     ctrl,
		es:       es,
		cfg:      cfg,
		theme:    theme,
		keys:     DefaultKeyMap(),
		textarea: ta,
		spinner:  sp,
		gate:     gate,
	}

	if cfg.UI.RenderMarkdown {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		); err == nil {
			m.renderer = r
		}
	}

	if store.CurrentSession() == nil {
		store.CreateSession("")
	}

	return m
}

// Init starts the input blink, spinner, and health polling.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.pollHealthCmd(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

// startGenerationCmd runs one blocking generation turn off the UI loop.
func (m *Model) startGenerationCmd(sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		err := m.ctrl.Start(context.Background(), sessionID, text)
		return GenerationDoneMsg{Err: err}
	}
}

// pollHealthCmd checks cluster reachability and derives overall health from
// the worst index health, the way the cluster health endpoint rolls up.
func (m *Model) pollHealthCmd() tea.Cmd {
	es := m.es
	return func() tea.Msg {
		if es == nil {
			return HealthMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		info, err := es.ClusterInfo(ctx)
		if err != nil {
			return HealthMsg{Err: err}
		}

		health := "green"
		if indices, err := es.ListIndices(ctx); err == nil {
			for _, idx := range indices {
				if idx.Health == "red" {
					health = "red"
					break
				}
				if idx.Health == "yellow" {
					health = "yellow"
				}
			}
		}
		return HealthMsg{Health: health, Cluster: info.ClusterName}
	}
}

// healthTickCmd schedules the next health poll.
func healthTickCmd() tea.Cmd {
	return tea.Tick(healthPollInterval, func(time.Time) tea.Msg {
		return HealthTickMsg{}
	})
}
