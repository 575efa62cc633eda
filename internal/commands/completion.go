// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns full-line candidates for line. Command names complete
// from their prefix; enum arguments complete from their values. Plain chat
// text has no completions.
func (c *Completer) Complete(line string) []string {
	if !IsCommand(line) {
		return nil
	}
	trimmed := strings.TrimLeft(line, " \t")

	parts := splitCommandLine(trimmed)
	endsWithSpace := strings.HasSuffix(trimmed, " ")

	if len(parts) <= 1 && !endsWithSpace {
		partial := ""
		if len(parts) == 1 {
			partial = parts[0]
		}
		return c.completeCommands(partial)
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := parts[len(parts)-1]
	if endsWithSpace {
		argIndex++
		partial = ""
	}
	if argIndex < 0 || argIndex >= len(cmd.Args) || cmd.Args[argIndex].Type != ArgTypeEnum {
		return nil
	}

	head := strings.TrimSuffix(trimmed, partial)
	var out []string
	for _, v := range cmd.Args[argIndex].Values {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(partial)) {
			out = append(out, head+v)
		}
	}
	sort.Strings(out)
	return out
}

// completeCommands returns command names starting with partial. Aliases are
// only offered when no primary name matches.
func (c *Completer) completeCommands(partial string) []string {
	partial = strings.ToLower(partial)

	var names, aliases []string
	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(strings.ToLower(cmd.Name), partial) {
			names = append(names, cmd.Name)
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(strings.ToLower(alias), partial) {
				aliases = append(aliases, alias)
			}
		}
	}

	if len(names) == 0 {
		names = aliases
	}
	sort.Strings(names)
	return names
}
