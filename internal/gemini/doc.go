// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the text-generation backends used by the chat session.
//
// Every backend implements Generator: one prompt in, one reply out, a single
// attempt, no streaming. Every failure is reported as a *GenerationError so
// callers can recover uniformly.
//
// # Backends
//
//   - Client: Plain REST client for the generateContent endpoint
//   - SDKClient: Same contract through google.golang.org/genai
//   - Echo: Offline generator for demos and tests
//
// # Wire Format
//
// Request:
//
//	{"contents":[{"parts":[{"text":"<prompt>"}]}]}
//
// Response:
//
//	{"candidates":[{"content":{"parts":[{"text":"<reply>"}]}}]}
//
// A response without candidates is a failure.
//
// # Usage
//
//	gen, err := gemini.New(ctx, gemini.Options{APIKey: key}, logger)
//	reply, err := gen.Generate(ctx, "What is the tallest mountain on Earth?")
//	var genErr *gemini.GenerationError
//	if errors.As(err, &genErr) {
//	    // show an apology
//	}
package gemini
