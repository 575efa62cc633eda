// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view of the topnotch TUI.

The chat package is a Bubble Tea front end for a session.Session. The session
owns all conversation state; this package only turns key presses into session
operations and renders session snapshots.

# Key Components

## Model (model.go)

The Model struct holds the view state: the input box, the scrollable thread,
the sidebar cursor, the spinner shown while a reply is pending and the reveal
of the latest reply.

## Update Loop (update.go)

  - Enter submits the input; the generation call runs as a tea.Cmd
  - Replies are applied with Session.Complete and then revealed one
    character per tick
  - Ctrl+N starts a new conversation, Tab focuses the sidebar, Enter opens
    the highlighted conversation, Ctrl+X deletes it
  - Ctrl+T cycles the theme (light, dark, system) and saves it to config

## View Rendering (view.go)

Header, sidebar, thread (or the welcome screen when it is empty), input box
and a status line with key help.

# Usage

	err := chat.Run(ctx, chat.Options{
	    Session:    sess,
	    Theme:      styles.NewTheme(pref),
	    Config:     cfg,
	    ConfigPath: path,
	})
*/
package chat
