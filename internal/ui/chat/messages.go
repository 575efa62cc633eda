// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/session"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// replyMsg carries a finished generation call back to the update loop.
type replyMsg struct {
	reply session.Reply
}

// revealTickMsg advances the reveal started with generation gen. Ticks of an
// earlier reveal carry an older gen and are dropped.
type revealTickMsg struct {
	gen uint64
}

// sessionEventMsg reports a change made outside the update loop, such as an
// auto-save firing on its timer.
type sessionEventMsg struct {
	event session.Event
}

// configReloadedMsg is sent by the config watcher.
type configReloadedMsg struct {
	cfg *config.Config
	err error
}

// themeSavedMsg reports the result of persisting a theme toggle.
type themeSavedMsg struct {
	pref styles.ThemePreference
	err  error
}
