// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are accepted by every command.
type globalFlags struct {
	configPath string
	backend    string
	storage    string
	model      string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "topnotch",
		Short:         "Chat with Gemini from the terminal",
		Long:          "topnotch is a terminal chat client for Google Gemini with saved conversations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default ~/.topnotch/config.toml)")
	pf.StringVar(&g.backend, "backend", "", "generation backend: rest, sdk or echo")
	pf.StringVar(&g.storage, "storage", "", "conversation storage: memory, json or sqlite")
	pf.StringVar(&g.model, "model", "", "Gemini model name")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newTUICmd(g),
		newChatCmd(g),
		newAskCmd(g),
		newListCmd(g),
		newExportCmd(g),
		newServeCmd(g),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
