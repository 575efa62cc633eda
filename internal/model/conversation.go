// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strconv"
	"strings"
	"time"
)

// TitleWords is the number of leading words kept in a derived title.
const TitleWords = 6

// titleEllipsis is appended when the source text had more than TitleWords words.
const titleEllipsis = "..."

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a saved thread as listed in the sidebar.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}

// Valid reports whether the record is well formed: it has an id and the
// message count matches the number of messages.
func (c Conversation) Valid() bool {
	return c.ID != "" && c.MessageCount == len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone returns a copy whose message slice does not alias the original.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = CloneMessages(c.Messages)
	return out
}

// Meta returns the conversation without its messages, for listings.
func (c Conversation) Meta() Conversation {
	out := c
	out.Messages = nil
	return out
}

// CloneMessages copies a message slice. A nil input yields an empty slice.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// NewConversationID returns a fresh, time-ordered conversation identifier.
func NewConversationID() string {
	return newID("conv_")
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle builds a conversation title from the text of its first message:
// the first six whitespace-separated words joined by single spaces, followed
// by "..." when the text had more words than that.
func DeriveTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) <= TitleWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:TitleWords], " ") + titleEllipsis
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// FormatMessageCount renders a count as "1 message" or "n messages".
func FormatMessageCount(n int) string {
	if n == 1 {
		return "1 message"
	}
	return strconv.Itoa(n) + " messages"
}

// FormatDate renders the day a conversation was last updated.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("1/2/2006")
}
