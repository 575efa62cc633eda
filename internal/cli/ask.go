// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
	"github.com/jeranaias/topnotch-tui/internal/util"
)

func newAskCmd(g *globalFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask a single question and print the reply",
		Long: `Ask a single question and print the reply rendered as markdown.

The exchange is saved like any other conversation.`,
		Example: `  topnotch ask "What is the tallest mountain in the world?"
  topnotch ask --plain explain goroutines > answer.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.genErr != nil {
				return fmt.Errorf("generation unavailable: %w", a.genErr)
			}

			prompt := util.NormalizeInput(strings.Join(args, " "))
			out, ok := a.sess.Ask(cmd.Context(), prompt)
			if !ok {
				return errors.New("empty question")
			}
			if out.Err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), out.Message.Content)
				return out.Err
			}

			w := cmd.OutOrStdout()
			if plain || !isTerminalWriter(w) {
				_, err = fmt.Fprintln(w, out.Message.Content)
				return err
			}
			pref, _ := styles.ParseThemePreference(a.cfg.UI.Theme)
			return renderMarkdown(w, out.Message.Content, pref)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the raw reply without markdown rendering")
	return cmd
}

// renderMarkdown prints content through glamour, falling back to the raw
// text if rendering fails.
func renderMarkdown(w io.Writer, content string, pref styles.ThemePreference) error {
	profile := colorProfile(w)
	style := "notty"
	if profile != termenv.Ascii {
		style = "light"
		if pref.IsDark(termenv.NewOutput(w).HasDarkBackground) {
			style = "dark"
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(terminalWidth(w)-4),
		glamour.WithColorProfile(profile),
	)
	if err == nil {
		var rendered string
		if rendered, err = r.Render(content); err == nil {
			_, err = io.WriteString(w, rendered)
			return err
		}
	}
	_, err = fmt.Fprintln(w, content)
	return err
}
