// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/topnotch-tui/internal/clock"
	"github.com/jeranaias/topnotch-tui/internal/commands"
	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/export"
	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/reveal"
	"github.com/jeranaias/topnotch-tui/internal/storage"
	"github.com/jeranaias/topnotch-tui/internal/ui/components"
	"github.com/jeranaias/topnotch-tui/internal/util"
)

const chatPrompt = "you> "

func newChatCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode chat",
		Long: `Start a line-mode chat with input history.

Interactive commands (Tab completes):
  /new                       Start a new conversation
  /list                      List saved conversations
  /open N                    Open conversation N from /list
  /delete N                  Delete conversation N from /list
  /export N [md|html|json]   Save conversation N to the current directory
  /help                      Show commands
  /quit                      Exit (also Ctrl+D)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, g)
		},
	}
}

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads one line of user input.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// historyReader provides input history and line editing on a terminal.
type historyReader struct {
	line        *liner.State
	historyFile string
}

func newHistoryReader(complete liner.Completer) *historyReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	r := &historyReader{line: line}
	if path, err := config.HistoryPath(); err == nil {
		r.historyFile = path
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

// ReadInput reads a line and adds it to the history.
func (r *historyReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (r *historyReader) Close() {
	defer r.line.Close()
	if r.historyFile == "" || config.EnsureConfigDir() != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// plainReader reads lines from a non-terminal input.
type plainReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *plainReader) ReadInput(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		fmt.Fprintln(r.out)
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *plainReader) Close() {}

// =============================================================================
// REPL
// =============================================================================

// repl is a line-mode front end for the session.
type repl struct {
	a     *app
	in    lineReader
	out   io.Writer
	st    cliStyles
	clk   clock.Clock
	delay time.Duration
	cmds  *commands.Registry
}

func runChat(cmd *cobra.Command, g *globalFlags) error {
	a, err := openApp(cmd.Context(), g, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	r := &repl{
		a:     a,
		out:   out,
		st:    newStyles(out),
		clk:   clock.Real(),
		delay: a.cfg.Chat.RevealInterval.Duration,
	}
	r.cmds = r.registerCommands()

	if cmd.InOrStdin() == os.Stdin && IsTTY() {
		r.in = newHistoryReader(commands.NewCompleter(r.cmds).Complete)
	} else {
		r.in = &plainReader{scanner: bufio.NewScanner(cmd.InOrStdin()), out: out}
	}
	defer r.in.Close()

	return r.run(cmd)
}

func (r *repl) run(cmd *cobra.Command) error {
	r.banner()
	for {
		if err := cmd.Context().Err(); err != nil {
			return nil
		}
		input, err := r.in.ReadInput(chatPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if commands.IsCommand(input) {
			if !r.command(input) {
				return nil
			}
			continue
		}
		r.ask(cmd, input)
	}
}

func (r *repl) banner() {
	fmt.Fprintln(r.out, r.st.Title.Render(components.AppName)+" "+r.st.Info.Render(components.AppTagline))
	if r.a.genErr != nil {
		fmt.Fprintln(r.out, r.st.Warning.Render("Generation unavailable: "+r.a.genErr.Error()))
	}
	fmt.Fprintln(r.out, r.st.Info.Render(components.WelcomeHint+" Type /help for commands."))
	fmt.Fprintln(r.out)
}

// ask submits input and reveals the reply.
func (r *repl) ask(cmd *cobra.Command, input string) {
	out, ok := r.a.sess.Ask(cmd.Context(), util.NormalizeInput(input))
	if !ok {
		return
	}
	fmt.Fprint(r.out, r.st.Label.Render(model.RoleAssistant.DisplayName()+": "))
	if out.Err != nil {
		fmt.Fprintln(r.out, r.st.Error.Render(out.Message.Content))
		return
	}
	r.reveal(cmd.Context(), out.Message.Content)
}

// reveal types text out one character per tick and ends the line. It
// returns false if ctx was cancelled before the whole text was shown.
func (r *repl) reveal(ctx context.Context, text string) bool {
	done := make(chan struct{})
	printed := 0
	rv := reveal.New(r.clk, r.delay, func(f reveal.Frame) {
		runes := []rune(f.Text)
		io.WriteString(r.out, string(runes[printed:]))
		printed = len(runes)
		if f.Done {
			close(done)
		}
	})
	rv.Start(text)

	finished := true
	select {
	case <-done:
	case <-ctx.Done():
		rv.Stop()
		finished = false
	}
	fmt.Fprintln(r.out)
	return finished
}

// command runs a slash command. It returns false when the REPL should exit.
func (r *repl) command(input string) bool {
	err := r.cmds.Run(input)
	if errors.Is(err, commands.ErrQuit) {
		return false
	}
	if err != nil {
		r.fail(err)
	}
	return true
}

// registerCommands binds the slash commands to this REPL.
func (r *repl) registerCommands() *commands.Registry {
	reg := commands.NewRegistry()
	number := commands.ArgDef{Name: "N", Required: true, Type: commands.ArgTypeNumber, Description: "a number from /list"}
	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}

	reg.Register(&commands.Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new conversation",
		Handler: func([]string) error {
			r.a.sess.NewConversation()
			fmt.Fprintln(r.out, r.st.Success.Render("Started a new conversation."))
			return nil
		},
	})
	reg.Register(&commands.Command{
		Name:        "/list",
		Aliases:     []string{"/l"},
		Description: "List saved conversations",
		Handler: func([]string) error {
			fmt.Fprint(r.out, storage.FormatList(r.conversations()))
			fmt.Fprintln(r.out)
			return nil
		},
	})
	reg.Register(&commands.Command{
		Name:        "/open",
		Aliases:     []string{"/o"},
		Description: "Open conversation N",
		Usage:       "/open N",
		Args:        []commands.ArgDef{number},
		Handler: func(args []string) error {
			conv, err := pickConversation(r.conversations(), args[0])
			if err != nil {
				return err
			}
			r.a.sess.SelectConversation(conv.ID)
			r.printThread(conv.Title)
			return nil
		},
	})
	reg.Register(&commands.Command{
		Name:        "/delete",
		Aliases:     []string{"/d"},
		Description: "Delete conversation N",
		Usage:       "/delete N",
		Args:        []commands.ArgDef{number},
		Handler: func(args []string) error {
			conv, err := pickConversation(r.conversations(), args[0])
			if err != nil {
				return err
			}
			r.a.sess.DeleteConversation(conv.ID)
			fmt.Fprintln(r.out, r.st.Success.Render("Deleted "+strconv.Quote(conv.Title)+"."))
			return nil
		},
	})
	reg.Register(&commands.Command{
		Name:        "/export",
		Aliases:     []string{"/e"},
		Description: "Save conversation N to the current directory",
		Usage:       "/export N [md|html|json]",
		Args: []commands.ArgDef{
			number,
			{Name: "format", Type: commands.ArgTypeEnum, Values: formats, Description: "export format"},
		},
		Handler: func(args []string) error {
			return r.export(args)
		},
	})
	reg.Register(&commands.Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show commands",
		Handler: func([]string) error {
			for _, line := range reg.HelpLines() {
				fmt.Fprintln(r.out, r.st.Command.Render(line))
			}
			return nil
		},
	})
	reg.Register(&commands.Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit (also Ctrl+D)",
		Handler: func([]string) error {
			return commands.ErrQuit
		},
	})
	return reg
}

func (r *repl) export(args []string) error {
	conv, err := pickConversation(r.conversations(), args[0])
	if err != nil {
		return err
	}
	format := export.FormatMarkdown
	if len(args) > 1 {
		if format, err = export.ParseFormat(args[1]); err != nil {
			return err
		}
	}

	opts := export.DefaultOptions()
	opts.Theme = exportTheme(r.a.cfg.UI.Theme, r.out)
	exp, err := export.New(format, opts)
	if err != nil {
		return err
	}
	path := export.Filename(".", conv, exp)
	if err := export.WriteFile(exp, conv, path); err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.st.Success.Render("Exported to "+path))
	return nil
}

func (r *repl) printThread(title string) {
	fmt.Fprintln(r.out, r.st.Title.Render(title))
	for _, msg := range r.a.sess.Messages() {
		fmt.Fprintln(r.out, r.st.Label.Render(msg.Role.DisplayName()+": ")+msg.Content)
	}
	fmt.Fprintln(r.out)
}

func (r *repl) fail(err error) {
	fmt.Fprintln(r.out, r.st.Error.Render("[Error]")+" "+err.Error())
}

// conversations saves the current thread first so it shows up numbered
// alongside the others.
func (r *repl) conversations() []model.Conversation {
	r.a.sess.Flush()
	return r.a.sess.Conversations()
}

// pickConversation resolves a 1-based position in convs.
func pickConversation(convs []model.Conversation, arg string) (model.Conversation, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(convs) {
		return model.Conversation{}, fmt.Errorf("no conversation %q (have %d)", arg, len(convs))
	}
	return convs[n-1], nil
}
