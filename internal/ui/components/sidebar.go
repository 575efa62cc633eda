// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
	"github.com/jeranaias/topnotch-tui/internal/util"
)

// EmptySidebarText is shown when there are no saved conversations.
const EmptySidebarText = "No conversations yet"

// itemHeight is the number of lines one conversation occupies.
const itemHeight = 3

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar renders the conversation list.
type Sidebar struct {
	theme *styles.Theme

	width  int
	height int

	convs    []model.Conversation
	activeID string
	cursor   int
	focused  bool
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) Sidebar {
	return Sidebar{theme: theme, width: styles.SidebarWidth}
}

// SetTheme swaps the styles after a theme change.
func (s *Sidebar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// SetSize updates the dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetFocused marks the list as receiving navigation keys.
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// Focused reports whether the list has focus.
func (s *Sidebar) Focused() bool {
	return s.focused
}

// SetConversations replaces the list. The cursor stays in range.
func (s *Sidebar) SetConversations(convs []model.Conversation, activeID string) {
	s.convs = convs
	s.activeID = activeID
	s.clamp()
}

// Len returns the number of listed conversations.
func (s *Sidebar) Len() int {
	return len(s.convs)
}

// Cursor returns the index of the highlighted conversation.
func (s *Sidebar) Cursor() int {
	return s.cursor
}

// MoveUp moves the cursor one conversation up.
func (s *Sidebar) MoveUp() {
	s.cursor--
	s.clamp()
}

// MoveDown moves the cursor one conversation down.
func (s *Sidebar) MoveDown() {
	s.cursor++
	s.clamp()
}

// SelectActive moves the cursor onto the active conversation, if listed.
func (s *Sidebar) SelectActive() {
	for i, c := range s.convs {
		if c.ID == s.activeID {
			s.cursor = i
			return
		}
	}
}

// Selected returns the conversation under the cursor.
func (s *Sidebar) Selected() (model.Conversation, bool) {
	if s.cursor < 0 || s.cursor >= len(s.convs) {
		return model.Conversation{}, false
	}
	return s.convs[s.cursor], true
}

func (s *Sidebar) clamp() {
	if s.cursor >= len(s.convs) {
		s.cursor = len(s.convs) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the sidebar.
func (s Sidebar) View() string {
	t := s.theme
	inner := s.width - 4 // sidebar border and padding, item border
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(t.SidebarHeading.Render("Conversations"))
	b.WriteString("\n")
	b.WriteString(t.NewChatButton.Render("+ New chat  ^N"))
	b.WriteString("\n")
	header := lipgloss.Height(b.String())

	if len(s.convs) == 0 {
		b.WriteString(t.SidebarEmpty.Render(EmptySidebarText))
	} else {
		first, last := s.window(header)
		items := make([]string, 0, last-first)
		for i := first; i < last; i++ {
			items = append(items, s.renderItem(i, inner))
		}
		b.WriteString(strings.Join(items, "\n\n"))
	}

	style := t.Sidebar.Width(s.width - 1)
	if s.height > 0 {
		style = style.Height(s.height)
	}
	return style.Render(b.String())
}

// window returns the range of items that fits below the header while keeping
// the cursor visible.
func (s Sidebar) window(header int) (int, int) {
	n := len(s.convs)
	if s.height <= 0 {
		return 0, n
	}
	fit := (s.height - header) / itemHeight
	if fit < 1 {
		fit = 1
	}
	if n <= fit {
		return 0, n
	}
	first := 0
	if s.cursor >= fit {
		first = s.cursor - fit + 1
	}
	return first, first + fit
}

func (s Sidebar) renderItem(i, width int) string {
	t := s.theme
	c := s.convs[i]

	raw := c.Title
	if raw == "" {
		raw = "Untitled"
	}
	prefix := ""
	if s.focused && i == s.cursor {
		prefix = "› "
	}
	title := prefix + util.TruncateWidth(raw, width-2-util.StringWidth(prefix))
	meta := util.TruncateWidth(ItemMeta(c), width-2)

	style := t.ConvItem
	switch {
	case c.ID == s.activeID:
		style = t.ConvItemActive
	case s.focused && i == s.cursor:
		style = t.ConvItemSelected
	}

	return style.Width(width).Render(t.ConvTitle.Render(title) + "\n" + t.ConvMeta.Render(meta))
}

// ItemMeta returns the "{n} messages • {date}" line of a conversation.
func ItemMeta(c model.Conversation) string {
	return model.FormatMessageCount(c.MessageCount) + " • " + model.FormatDate(c.UpdatedAt)
}
