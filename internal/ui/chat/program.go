// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/session"
)

// Run starts the full-screen chat and blocks until the user quits or ctx is
// cancelled. The session is closed, and so flushed, before Run returns.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return errors.New("chat: session is required")
	}
	opts.Context = ctx

	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Listeners run after the session unlocks, which may be inside Update.
	// Send blocks until the loop receives, so it must not run inline.
	opts.Session.OnChange(func(ev session.Event) {
		go p.Send(sessionEventMsg{event: ev})
	})

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, config.DefaultWatchDebounce, func(cfg *config.Config, err error) {
			p.Send(configReloadedMsg{cfg: cfg, err: err})
		})
		if err != nil {
			m.log.Warn().Err(err).Str("path", opts.ConfigPath).Msg("config watcher disabled")
		} else {
			defer w.Close()
		}
	}

	_, err := p.Run()
	opts.Session.Close()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
