// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/export"
	"github.com/jeranaias/topnotch-tui/internal/storage"
)

func newListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved conversations, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Storage.Backend == config.StorageMemory {
				st := newStyles(cmd.ErrOrStderr())
				fmt.Fprintln(cmd.ErrOrStderr(), st.Warning.Render("Storage backend is memory; nothing is kept between runs."))
			}
			fmt.Fprint(cmd.OutOrStdout(), storage.FormatList(a.sess.Conversations()))
			return nil
		},
	}
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		output     string
		format     string
		noMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "export N",
		Short: "Export conversation N from list as markdown, html or json",
		Example: `  topnotch export 1
  topnotch export 3 -o mountains.md
  topnotch export 2 --format html -o ~/Documents/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), g, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			conv, err := pickConversation(a.sess.Conversations(), args[0])
			if err != nil {
				return err
			}

			opts := export.DefaultOptions()
			opts.IncludeMetadata = !noMetadata
			opts.Theme = exportTheme(a.cfg.UI.Theme, cmd.OutOrStdout())
			exp, err := export.New(f, opts)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				data, err := exp.Export(conv)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = export.Filename(output, conv, exp)
			}
			if err := export.WriteFile(exp, conv, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %q to %s\n", conv.Title, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file (or into a directory) instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "export format: md, html or json")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "omit the metadata header")
	return cmd
}

// exportTheme resolves the HTML export color scheme. "system" follows the
// terminal background when it can be queried and falls back to light.
func exportTheme(pref string, w io.Writer) string {
	switch pref {
	case config.ThemeDark:
		return config.ThemeDark
	case config.ThemeSystem:
		if isTerminalWriter(w) && termenv.NewOutput(w).HasDarkBackground() {
			return config.ThemeDark
		}
	}
	return config.ThemeLight
}
