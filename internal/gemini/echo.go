// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"strings"
	"time"
)

// Echo answers every prompt locally without any network access.
type Echo struct {
	// Delay simulates generation latency.
	Delay time.Duration
}

// Generate implements Generator.
func (e Echo) Generate(ctx context.Context, prompt string) (string, error) {
	if e.Delay > 0 {
		t := time.NewTimer(e.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", &GenerationError{Backend: BackendEcho, Err: ctx.Err()}
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", &GenerationError{Backend: BackendEcho, Err: err}
	}
	return "You asked:\n\n> " + strings.ReplaceAll(prompt, "\n", "\n> "), nil
}

// unavailable fails every call with the same cause.
type unavailable struct {
	backend string
	err     error
}

// Unavailable returns a Generator that always fails with err. It keeps the
// chat usable for browsing when no backend can be built.
func Unavailable(backend string, err error) Generator {
	return unavailable{backend: backend, err: err}
}

func (u unavailable) Generate(context.Context, string) (string, error) {
	return "", &GenerationError{Backend: u.backend, Err: u.err}
}
