// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders saved conversations as documents.
//
// # Key Types
//
//   - Format: Export format name (md, html, json)
//   - Exporter: Interface implemented by each format
//   - Options: Metadata, timestamps and HTML theme
//
// # Supported Formats
//
//   - Markdown: Human-readable, with YAML frontmatter
//   - HTML: Standalone page styled with the TUI palette
//   - JSON: The stored conversation record in an envelope
//
// # Usage
//
//	format, err := export.ParseFormat("html")
//	exp, err := export.New(format, export.DefaultOptions())
//	err = export.WriteFile(exp, conv, export.Filename(".", conv, exp))
package export
