// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// SidebarWidth is the width of the conversation list, borders included.
const SidebarWidth = 32

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	Preference   ThemePreference
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	renderer *lipgloss.Renderer

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	ThemeBadge     lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarHeading   lipgloss.Style
	NewChatButton    lipgloss.Style
	ConvItem         lipgloss.Style
	ConvItemActive   lipgloss.Style
	ConvItemSelected lipgloss.Style
	ConvTitle        lipgloss.Style
	ConvMeta         lipgloss.Style
	SidebarEmpty     lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	Caret           lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer        lipgloss.Style
	InputContainerFocused lipgloss.Style
	InputPrompt           lipgloss.Style
	InputPlaceholder      lipgloss.Style

	// ==========================================================================
	// LOADING AND STATUS STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	ErrorText    lipgloss.Style
	SavedText    lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeTitle    lipgloss.Style
	WelcomeSubtitle lipgloss.Style
	WelcomeHint     lipgloss.Style
}

// NewTheme creates a theme for stdout resolved against pref.
func NewTheme(pref ThemePreference) *Theme {
	return NewThemeWithRenderer(lipgloss.NewRenderer(os.Stdout), pref)
}

// NewThemeWithRenderer creates a theme bound to r. The renderer's background
// setting is overwritten with the resolved preference.
func NewThemeWithRenderer(r *lipgloss.Renderer, pref ThemePreference) *Theme {
	isDark := pref.IsDark(r.HasDarkBackground)
	r.SetHasDarkBackground(isDark)

	t := &Theme{
		Preference:   pref,
		IsDark:       isDark,
		ColorProfile: r.ColorProfile(),
		renderer:     r,
	}
	t.initStyles()
	return t
}

// WithPreference returns a theme for pref that keeps the size and renderer.
func (t *Theme) WithPreference(pref ThemePreference) *Theme {
	next := NewThemeWithRenderer(t.renderer, pref)
	next.SetSize(t.Width, t.Height)
	return next
}

// Renderer returns the renderer the styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	s := t.renderer.NewStyle

	// Header
	t.Header = s().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = s().
		Bold(true).
		Foreground(Indigo)

	t.HeaderSubtitle = s().
		Foreground(TextMuted).
		Italic(true)

	t.ThemeBadge = s().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	// Sidebar
	t.Sidebar = s().
		Width(SidebarWidth-1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarHeading = s().
		Bold(true).
		Foreground(TextSecondary).
		MarginBottom(1)

	t.NewChatButton = s().
		Foreground(UserBubbleFg).
		Background(Indigo).
		Bold(true).
		Padding(0, 1).
		MarginBottom(1)

	t.ConvItem = s().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Surface)

	t.ConvItemActive = t.ConvItem.
		Background(IndigoDeep).
		BorderForeground(Indigo)

	t.ConvItemSelected = t.ConvItem.
		BorderForeground(Sky)

	t.ConvTitle = s().
		Foreground(TextPrimary)

	t.ConvMeta = s().
		Foreground(TextMuted)

	t.SidebarEmpty = s().
		Foreground(TextMuted).
		Italic(true)

	// Messages
	t.UserBubble = s().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = s().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.ErrorBubble = t.AssistantBubble.
		BorderForeground(Rose)

	t.RoleLabel = s().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = s().
		Foreground(TextMuted).
		Faint(true)

	t.Caret = s().
		Foreground(Indigo)

	// Input area
	t.InputContainer = s().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputContainerFocused = t.InputContainer.
		BorderForeground(Indigo)

	t.InputPrompt = s().
		Foreground(Indigo).
		Bold(true)

	t.InputPlaceholder = s().
		Foreground(TextMuted).
		Italic(true)

	// Loading and status
	t.Spinner = s().
		Foreground(Indigo)

	t.ThinkingText = s().
		Foreground(TextMuted).
		Italic(true)

	t.StatusBar = s().
		Foreground(TextMuted).
		Padding(0, 1)

	t.ShortcutKey = s().
		Foreground(TextSecondary).
		Bold(true)

	t.ShortcutDesc = s().
		Foreground(TextMuted)

	t.ErrorText = s().
		Foreground(Rose)

	t.SavedText = s().
		Foreground(Emerald)

	// Welcome screen
	t.WelcomeTitle = s().
		Bold(true).
		Foreground(Indigo)

	t.WelcomeSubtitle = s().
		Foreground(TextSecondary)

	t.WelcomeHint = s().
		Foreground(TextMuted).
		Italic(true).
		MarginTop(1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 72 {
		return LayoutNarrow
	}
	return LayoutWide
}

// ShowSidebar reports whether the conversation list fits next to the thread.
func (t *Theme) ShowSidebar() bool {
	return t.GetLayoutMode() == LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 72 columns, sidebar hidden
	LayoutWide                     // sidebar beside the thread
)
