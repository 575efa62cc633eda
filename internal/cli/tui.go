// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/spf13/cobra"

	"github.com/jeranaias/topnotch-tui/internal/ui/chat"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

func newTUICmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}
}

// runTUI starts the Bubble Tea interface, or line mode when stdin or stdout
// is not a terminal.
func runTUI(cmd *cobra.Command, g *globalFlags) error {
	if !IsTTY() || !isTerminalWriter(cmd.OutOrStdout()) {
		return runChat(cmd, g)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, g, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	pref, err := styles.ParseThemePreference(a.cfg.UI.Theme)
	if err != nil {
		a.log.Warn().Err(err).Msg("unknown theme, following terminal")
	}

	return chat.Run(ctx, chat.Options{
		Session:    a.sess,
		Theme:      styles.NewTheme(pref),
		Config:     a.cfg,
		ConfigPath: a.cfgPath,
		Logger:     a.log,
	})
}
