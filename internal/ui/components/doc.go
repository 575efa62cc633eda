// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable view pieces of the topnotch TUI.

Components only render. They hold the data they were given and a pointer to
the active styles.Theme; the chat model owns all state transitions and
pushes new data in.

# Components

  - Sidebar: conversation list with title, "{n} messages • {date}" and the
    active conversation highlighted
  - MessageBubble: one user or assistant message, with optional timestamp and
    reveal caret
  - Welcome: the empty-thread screen

# Usage

	sb := components.NewSidebar(theme)
	sb.SetSize(styles.SidebarWidth, height)
	sb.SetConversations(convs, activeID)
	out := sb.View()
*/
package components
