// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the topnotch command line.
//
// # Commands
//
//   - topnotch            Full-screen chat (same as "tui")
//   - topnotch tui        Full-screen chat; falls back to "chat" without a TTY
//   - topnotch chat       Line-mode chat with history and slash commands
//   - topnotch ask TEXT   One-shot question, reply rendered as markdown
//   - topnotch list       Saved conversations
//   - topnotch export N   Write conversation N as markdown
//   - topnotch serve      HTTP API for one session
//   - topnotch config     show | path | init | get KEY | set KEY VALUE
//   - topnotch version    Version information
//
// # Global Flags
//
//	--config PATH     Config file (default ~/.topnotch/config.toml)
//	--backend NAME    Generation backend: rest, sdk or echo
//	--storage NAME    Conversation storage: memory, json or sqlite
//	--model NAME      Gemini model
//	--log-level LVL   Log level
//
// Every command that talks to a session bootstraps the same stack: config,
// logging, storage, generator and session, in that order.
package cli
