// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active chat thread and its conversation lifecycle.
//
// A Session holds the thread being composed, the id of the conversation it
// belongs to (empty until first saved), and a busy flag that is set while a
// reply is being generated. Every change to the thread restarts a one-second
// auto-save timer; switching or starting conversations saves immediately.
//
// All state changes are serialized by the session, so the UI loop, timer
// callbacks and HTTP handlers observe one ordered sequence of operations.
//
// # Key Types
//
//   - Session: Active thread, busy flag and conversation actions
//   - Exchange: One submitted prompt awaiting its reply
//   - AutoSaver: Debounce timer with replace-and-cancel semantics
//   - Event: Change notification for UI loops
//
// # Usage
//
// Synchronous use (REPL, HTTP, tests):
//
//	s := session.New(session.Options{Store: store, Generator: gen})
//	defer s.Close()
//	outcome, ok := s.Ask(ctx, "What is the tallest mountain on Earth?")
//
// Asynchronous use from an event loop:
//
//	ex, ok := s.Submit(text)          // on the loop
//	reply := ex.Run(ctx)              // off the loop
//	outcome := s.Complete(reply)      // back on the loop
package session
