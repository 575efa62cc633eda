// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/reveal"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// MessageBubble renders one message of the thread.
type MessageBubble struct {
	Message model.Message

	// Width is the width of the thread column.
	Width int
	// ShowTimestamp prints the message time under the bubble.
	ShowTimestamp bool
	// Failed styles the bubble as an error reply.
	Failed bool

	// content overrides Message.Content for display.
	content     string
	prerendered bool
	revealing   bool

	// now is used to decide whether the date is shown in the timestamp.
	now   func() time.Time
	theme *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message: msg,
		Width:   80,
		content: msg.Content,
		now:     time.Now,
		theme:   theme,
	}
}

// SetRevealFrame shows a partially revealed reply with a caret.
func (b *MessageBubble) SetRevealFrame(f reveal.Frame) {
	b.content = f.Text
	b.revealing = !f.Done
	b.prerendered = false
}

// SetRendered shows content that is already wrapped and styled, such as
// glamour output.
func (b *MessageBubble) SetRendered(content string) {
	b.content = content
	b.prerendered = true
	b.revealing = false
}

// SetClock overrides the time source used for timestamps.
func (b *MessageBubble) SetClock(now func() time.Time) {
	b.now = now
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message.Role == model.RoleUser {
		return b.renderUserBubble()
	}
	return b.renderAssistantBubble()
}

// ==========================================================================
// USER BUBBLE - filled, right-aligned
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	t := b.theme
	maxWidth := b.maxBubbleWidth()

	content := b.content
	if content == "" {
		content = "..."
	}
	style := t.UserBubble
	if lipgloss.Width(content)+2 > maxWidth {
		style = style.Width(maxWidth)
	}
	bubble := style.Render(content)

	lines := []string{bubble}
	if ts := b.renderTimestamp(); ts != "" {
		lines = append(lines, ts)
	}
	block := lipgloss.JoinVertical(lipgloss.Right, lines...)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

// ==========================================================================
// ASSISTANT BUBBLE - bordered card, left-aligned
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	t := b.theme

	content := b.content
	if b.revealing {
		content += t.Caret.Render(reveal.DefaultCaret)
	}
	if content == "" {
		content = "..."
	}

	style := t.AssistantBubble
	if b.Failed {
		style = t.ErrorBubble
	}
	if b.prerendered {
		content = strings.Trim(content, "\n")
	} else {
		// border (2) + padding (2)
		style = style.Width(b.maxBubbleWidth() - 2)
	}

	lines := []string{t.RoleLabel.Render(model.RoleAssistant.DisplayName()), style.Render(content)}
	if ts := b.renderTimestamp(); ts != "" {
		lines = append(lines, ts)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

func (b *MessageBubble) maxBubbleWidth() int {
	w := b.Width * 4 / 5
	if w < 20 {
		w = b.Width
	}
	return w
}

// renderTimestamp renders a dimmed timestamp, or "" when disabled.
func (b *MessageBubble) renderTimestamp() string {
	if !b.ShowTimestamp || b.Message.Timestamp.IsZero() {
		return ""
	}
	return b.theme.Timestamp.Render(FormatTimestamp(b.Message.Timestamp, b.now()))
}

// FormatTimestamp renders "3:04 PM" for today and "Jan 2, 3:04 PM" otherwise.
func FormatTimestamp(ts, now time.Time) string {
	ts = ts.Local()
	now = now.Local()
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		return ts.Format("3:04 PM")
	}
	return ts.Format("Jan 2, 3:04 PM")
}
