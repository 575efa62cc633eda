// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

// cliStyles holds the line-mode styles bound to one output.
type cliStyles struct {
	Title   lipgloss.Style
	Prompt  lipgloss.Style
	Label   lipgloss.Style
	Info    lipgloss.Style
	Command lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Caret   lipgloss.Style
}

func newStyles(w io.Writer) cliStyles {
	s := newRenderer(w).NewStyle
	return cliStyles{
		Title:   s().Bold(true).Foreground(styles.Indigo),
		Prompt:  s().Bold(true).Foreground(styles.Sky),
		Label:   s().Bold(true).Foreground(styles.TextSecondary),
		Info:    s().Foreground(styles.TextMuted),
		Command: s().Foreground(styles.Emerald),
		Success: s().Foreground(styles.Emerald),
		Warning: s().Foreground(styles.Amber),
		Error:   s().Bold(true).Foreground(styles.Rose),
		Caret:   s().Foreground(styles.Indigo),
	}
}
