// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// Welcome screen copy.
const (
	AppName     = "TopnotchChat"
	AppTagline  = "AI-Powered Search Engine"
	WelcomeHint = "Ask me anything to get started."
)

// Welcome is shown in place of an empty thread.
type Welcome struct {
	width  int
	height int
	theme  *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{theme: theme}
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the welcome screen centered in its area.
func (w Welcome) View() string {
	t := w.theme
	block := lipgloss.JoinVertical(lipgloss.Center,
		t.WelcomeTitle.Render(AppName),
		t.WelcomeSubtitle.Render(AppTagline),
		t.WelcomeHint.Render(WelcomeHint),
	)
	if w.width <= 0 || w.height <= 0 {
		return block
	}
	return lipgloss.Place(w.width, w.height, lipgloss.Center, lipgloss.Center, block)
}
