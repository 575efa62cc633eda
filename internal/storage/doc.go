// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage holds the conversations listed in the sidebar.
//
// The ConversationStore is an in-memory, ordered collection. Brand-new
// conversations are inserted at the front; saving an existing conversation
// replaces it where it is. Store operations never fail.
//
// Durable storage is optional. Persistent decorates the in-memory store and
// writes every change through to a Backend (a JSON directory or a SQLite
// database). Backend failures are logged and otherwise ignored, so the
// in-memory view always stays authoritative for the running process.
//
// # Key Types
//
//   - Store: Interface consumed by the chat session
//   - ConversationStore: In-memory implementation
//   - Persistent: Write-through decorator over a Backend
//   - JSONDir, SQLite: Backends
//
// # Usage
//
//	store := storage.NewConversationStore()
//	store.Upsert(conv)
//	for _, c := range store.List() {
//	    fmt.Println(c.Title)
//	}
//
// Open the store selected in configuration:
//
//	store, err := storage.Open(ctx, storage.Options{Backend: "sqlite", Path: dbPath}, logger)
//	defer store.Close()
//
// # Storage Location
//
// Durable backends live under ~/.topnotch/ (conversations/ or topnotch.db).
package storage
