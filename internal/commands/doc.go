// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for line-mode chat.
//
// Front ends register commands with handlers bound to their own state; the
// package parses input, validates arguments and offers tab completion.
//
// # Key Types
//
//   - Registry: Registered commands in help order
//   - Command: Name, aliases, argument definitions and handler
//   - ParseResult: Parsed command with name and arguments
//   - Completer: Tab completion for command names and enum arguments
//
// # Usage
//
//	reg := commands.NewRegistry()
//	reg.Register(&commands.Command{
//	    Name:    "/new",
//	    Aliases: []string{"/n"},
//	    Handler: func(args []string) error { sess.NewConversation(); return nil },
//	})
//	if commands.IsCommand(input) {
//	    err := reg.Run(input)
//	}
//
// Get completions:
//
//	commands.NewCompleter(reg).Complete("/ne")
//	// Returns ["/new"]
package commands
