// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a command with its parsed arguments.
type Handler func(args []string) error

// ErrQuit is returned by a handler that ends the chat.
var ErrQuit = errors.New("quit")

// ErrUnknownCommand is returned by Run for an unregistered command name.
var ErrUnknownCommand = errors.New("unknown command")

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/open N")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler Handler

	// Hidden commands don't appear in help or completion
	Hidden bool
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType determines validation and completion for an argument.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeNumber                // Positive integer, e.g. a list position
	ArgTypeEnum                  // One of Values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds registered commands. It is not safe for concurrent
// registration; register everything before use.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	order    []*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
}

// Register adds a command. Registering a name again replaces the earlier
// command.
func (r *Registry) Register(cmd *Command) {
	name := strings.ToLower(cmd.Name)
	if old, ok := r.commands[name]; ok {
		for alias, c := range r.aliases {
			if c == old {
				delete(r.aliases, alias)
			}
		}
		for i, c := range r.order {
			if c == old {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[strings.ToLower(alias)] = cmd
	}
	r.order = append(r.order, cmd)
}

// Get retrieves a command by name or alias, ignoring case.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.order))
	copy(out, r.order)
	return out
}

// Run parses input, validates the arguments and runs the handler.
func (r *Registry) Run(input string) error {
	res := NewParser(r).Parse(input)
	if !res.IsCommand || res.CommandName == "" {
		return errors.Errorf("not a command: %q", input)
	}
	if res.Command == nil {
		return errors.Wrapf(ErrUnknownCommand, "%s (try /help)", res.CommandName)
	}
	if err := ValidateArgs(res.Command, res.Args); err != nil {
		return err
	}
	if res.Command.Handler == nil {
		return nil
	}
	return res.Command.Handler(res.Args)
}

// HelpLines returns one aligned "usage  description" line per visible
// command.
func (r *Registry) HelpLines() []string {
	width := 0
	for _, cmd := range r.order {
		if !cmd.Hidden {
			width = max(width, runewidth.StringWidth(cmd.usage()))
		}
	}

	var lines []string
	for _, cmd := range r.order {
		if cmd.Hidden {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s  %s", runewidth.FillRight(cmd.usage(), width), cmd.Description))
	}
	return lines
}

func (c *Command) usage() string {
	if c.Usage != "" {
		return c.Usage
	}
	return c.Name
}
