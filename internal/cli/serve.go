// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/topnotch-tui/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		addr  string
		token string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat session over HTTP",
		Long: `Serve the chat session over a JSON HTTP API.

The token may also be set as server.auth_token in the config file. Without a
token the API is open to anyone who can reach the address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if token == "" {
				token = a.cfg.Server.AuthToken
			}

			srv := server.New(a.sess, a.log).
				WithAddr(addr).
				WithAuthToken(token).
				WithReplyTimeout(a.cfg.Gemini.Timeout.Duration)

			st := newStyles(cmd.ErrOrStderr())
			fmt.Fprintln(cmd.ErrOrStderr(), st.Title.Render("topnotch API")+" "+st.Info.Render("http://"+srv.Addr()))
			if token == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), st.Warning.Render("No auth token configured."))
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token")
	return cmd
}
