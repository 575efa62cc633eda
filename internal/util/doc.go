// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the storage, config and UI
// packages.
//
// # Key Functions
//
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - NormalizeInput: Canonical form for text typed by the user
//   - TruncateWidth: Display-width aware truncation for terminal layouts
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	prompt := util.NormalizeInput(raw)
//	label := util.TruncateWidth(title, 24)
package util
