// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/session"
	"github.com/jeranaias/topnotch-tui/internal/ui/components"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// Fixed chrome heights.
const (
	headerHeight = 2 // title line and bottom border
	inputHeight  = 3 // rounded border around one line
	statusHeight = 1
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.layout()
}

// layout sizes every widget for the current window and re-renders.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)

	body := m.height - headerHeight
	if body < 1 {
		body = 1
	}
	col := m.threadWidth()

	m.sidebar.SetSize(styles.SidebarWidth, body)
	if m.theme.ShowSidebar() {
		m.spinner.Spinner = styles.DotsSpinner.Bubble()
	} else {
		// One cell, so the thinking line never wraps in a narrow column.
		m.spinner.Spinner = styles.LineSpinner.Bubble()
		if m.focus == focusSidebar {
			m.setFocus(focusInput)
		}
	}

	m.viewport.Width = col
	m.viewport.Height = max(1, body-inputHeight-statusHeight)

	// container border (2), padding (2), prompt and cursor
	m.input.Width = max(1, col-4-lipgloss.Width(m.input.Prompt)-1)
	m.help.Width = col

	m.renderThread()
}

// threadWidth is the width of the column holding the thread and the input.
func (m *Model) threadWidth() int {
	w := m.width
	if m.theme.ShowSidebar() {
		w -= styles.SidebarWidth
	}
	return max(10, w)
}

// =============================================================================
// THREAD RENDERING
// =============================================================================

// renderThread rebuilds the viewport content from the last snapshot.
func (m *Model) renderThread() {
	col := m.threadWidth()
	m.md.configure(bubbleTextWidth(col), m.theme.IsDark, m.theme.ColorProfile)

	if len(m.snap.Messages) == 0 && !m.snap.Busy {
		m.welcome.SetSize(col, m.viewport.Height)
		m.viewport.SetContent(m.welcome.View())
		m.viewport.GotoTop()
		return
	}

	parts := make([]string, 0, len(m.snap.Messages)+1)
	for _, msg := range m.snap.Messages {
		parts = append(parts, m.renderMessage(msg, col))
	}
	if m.snap.Busy {
		parts = append(parts, m.spinner.View()+" "+m.theme.ThinkingText.Render(styles.ThinkingLabel+"..."))
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	b := components.NewMessageBubble(msg, m.theme)
	b.Width = width
	b.ShowTimestamp = m.cfg.UI.ShowTimestamps

	if msg.Role != model.RoleAssistant {
		return b.View()
	}

	switch {
	case msg.Content == session.ApologyMessage:
		b.Failed = true
	case m.reveal.active() && msg.ID == m.reveal.msgID:
		b.SetRevealFrame(m.reveal.cursor.Frame())
	default:
		if out, ok := m.md.render(msg.ID, msg.Content); ok {
			b.SetRendered(out)
		}
	}
	return b.View()
}

// bubbleTextWidth is the wrap width inside an assistant bubble.
func bubbleTextWidth(col int) int {
	return max(10, col*4/5-4)
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	column := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInput(),
		m.renderStatus(),
	)
	body := column
	if m.theme.ShowSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), column)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body)
}

func (m Model) renderHeader() string {
	t := m.theme
	inner := m.width - 2

	title := t.HeaderTitle.Render(components.AppName)
	badge := t.ThemeBadge.Render(t.Preference.Icon() + " " + t.Preference.String())
	left := title + "  " + t.HeaderSubtitle.Render(components.AppTagline)
	if lipgloss.Width(left)+lipgloss.Width(badge)+1 > inner {
		left = title
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(badge)
	line := left
	if gap >= 1 {
		line = left + strings.Repeat(" ", gap) + badge
	}
	return t.Header.Width(inner + 2).Render(line)
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.focus == focusInput {
		style = m.theme.InputContainerFocused
	}
	return style.Width(m.threadWidth() - 2).Render(m.input.View())
}

func (m Model) renderStatus() string {
	t := m.theme
	var line string
	switch {
	case m.status != "" && m.statusErr:
		line = t.ErrorText.Render(m.status)
	case m.status != "":
		line = t.SavedText.Render(m.status)
	case m.focus == focusSidebar:
		line = m.help.ShortHelpView(sidebarHelp(m.keys).ShortHelp())
	default:
		line = m.help.ShortHelpView(inputHelp(m.keys).ShortHelp())
	}
	return t.StatusBar.MaxWidth(m.threadWidth()).Render(line)
}
