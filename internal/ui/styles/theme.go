// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Message transcript
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	MessageBody    lipgloss.Style
	Reasoning      lipgloss.Style
	ErrorText      lipgloss.Style
	Timestamp      lipgloss.Style

	// Input area
	InputPrompt lipgloss.Style
	Placeholder lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusHealth lipgloss.Style
	StatusModel  lipgloss.Style
	StatusState  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Loading
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
		Width:        80,
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.SystemLabel = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.MessageBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Reasoning = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusHealth = lipgloss.NewStyle().Bold(true)
	t.StatusModel = lipgloss.NewStyle().Foreground(Purple)
	t.StatusState = lipgloss.NewStyle().Foreground(TextSecondary)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	return t
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
