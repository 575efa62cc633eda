// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// =============================================================================
// CONVERSATION LIST FORMATTING
// =============================================================================

// FormatList renders conversations as a numbered table. Numbers start at 1
// and match the order of convs.
func FormatList(convs []model.Conversation) string {
	if len(convs) == 0 {
		return "No conversations yet."
	}

	var sb strings.Builder
	sb.WriteString(formatPadded("#", 4) + " " +
		formatPadded("Title", 40) + " " +
		formatPadded("Messages", 9) + " Updated\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for i, c := range convs {
		sb.WriteString(formatPadded(strconv.Itoa(i+1), 4) + " " +
			formatPadded(runewidth.Truncate(c.Title, 40, "..."), 40) + " " +
			formatPadded(strconv.Itoa(c.MessageCount), 9) + " " +
			c.UpdatedAt.Local().Format("2006-01-02 15:04") + "\n")
	}
	return sb.String()
}

// formatPadded pads s with spaces to the given display width.
func formatPadded(s string, width int) string {
	return runewidth.FillRight(s, width)
}
