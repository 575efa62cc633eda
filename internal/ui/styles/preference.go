// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"fmt"
	"strings"
)

// ThemePreference is the user's choice of color scheme.
type ThemePreference int

const (
	// ThemeSystem follows the terminal background.
	ThemeSystem ThemePreference = iota
	ThemeLight
	ThemeDark
)

// String returns the config spelling of the preference.
func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "system"
	}
}

// Icon is a short label for the header toggle.
func (p ThemePreference) Icon() string {
	switch p {
	case ThemeLight:
		return "☀ light"
	case ThemeDark:
		return "☾ dark"
	default:
		return "◐ system"
	}
}

// Next cycles light -> dark -> system -> light.
func (p ThemePreference) Next() ThemePreference {
	switch p {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeSystem
	default:
		return ThemeLight
	}
}

// IsDark resolves the preference. systemDark is consulted only for ThemeSystem.
func (p ThemePreference) IsDark(systemDark func() bool) bool {
	switch p {
	case ThemeLight:
		return false
	case ThemeDark:
		return true
	default:
		return systemDark != nil && systemDark()
	}
}

// ParseThemePreference reads "light", "dark" or "system". The empty string
// means system.
func ParseThemePreference(s string) (ThemePreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "system":
		return ThemeSystem, nil
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	default:
		return ThemeSystem, fmt.Errorf("unknown theme %q", s)
	}
}
