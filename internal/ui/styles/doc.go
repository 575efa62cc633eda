// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the topnotch TUI.

# Color System (colors.go)

Every color is a Lip Gloss AdaptiveColor. The light or dark side is chosen by
the renderer a style is bound to, which lets a ThemePreference override the
detected terminal background.

	Indigo      - Brand, active conversation, focused input
	Rose        - Errors and apology replies
	TextMuted   - Timestamps, counts, placeholders

# Theme Preference (preference.go)

ThemePreference is light, dark or system. Next cycles through them in that
order; system defers to termenv's background detection.

# Theme System (theme.go)

	theme := styles.NewTheme(styles.ThemeSystem)
	theme.SetSize(width, height)
	if theme.ShowSidebar() {
	    // render the conversation list
	}

	// Toggle
	theme = theme.WithPreference(theme.Preference.Next())
*/
package styles
