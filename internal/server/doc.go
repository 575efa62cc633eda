// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes one chat session over a small JSON HTTP API.
//
// The API mirrors the actions of the terminal UI, so a browser or script can
// drive the same session:
//
//   - GET    /health                         - Liveness check (no auth)
//   - GET    /api/conversations              - Saved conversations, newest first
//   - POST   /api/conversations              - Start a new conversation
//   - POST   /api/conversations/:id/select   - Load a saved conversation
//   - DELETE /api/conversations/:id          - Delete a saved conversation
//   - GET    /api/thread                     - Active thread and busy flag
//   - POST   /api/messages                   - Submit a prompt and wait for the reply
//
// POST /api/messages answers 409 Conflict while another reply is pending.
//
// # Security
//
// When an auth token is configured every /api route requires
// "Authorization: Bearer <token>", compared in constant time. All responses
// carry restrictive security headers and handler panics are turned into 500
// responses.
//
// # Usage
//
//	srv := server.New(sess, logger).
//	    WithAddr("127.0.0.1:8787").
//	    WithAuthToken(token)
//	err := srv.ListenAndServe(ctx)
package server
