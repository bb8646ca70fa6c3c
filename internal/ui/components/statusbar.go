// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/elastui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBarData holds everything the status bar displays.
type StatusBarData struct {
	ClusterHealth string // "green", "yellow", "red", or "" when unreachable
	ClusterName   string
	Model         string
	State         string // generation state label
}

// RenderStatusBar renders the one-line status bar at the given width.
// Layout: health dot + cluster on the left, model and state on the right.
func RenderStatusBar(theme *styles.Theme, data StatusBarData, width int) string {
	health := "◌ offline"
	if data.ClusterHealth != "" {
		health = "● " + data.ClusterHealth
		if data.ClusterName != "" {
			health += " · " + data.ClusterName
		}
	}
	left := theme.StatusHealth.
		Foreground(styles.HealthColor(data.ClusterHealth)).
		Render(health)

	var rightParts []string
	if data.Model != "" {
		rightParts = append(rightParts, theme.StatusModel.Render(data.Model))
	}
	if data.State != "" {
		rightParts = append(rightParts, theme.StatusState.Render(data.State))
	}
	right := strings.Join(rightParts, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(width).Render(bar)
}

// RenderShortcuts renders a compact help line of key bindings.
func RenderShortcuts(theme *styles.Theme, pairs [][2]string, width int) string {
	var parts []string
	for _, p := range pairs {
		parts = append(parts, theme.ShortcutKey.Render(p[0])+" "+theme.ShortcutDesc.Render(p[1]))
	}
	line := strings.Join(parts, "  ")
	if runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return line
}
