// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel causes wrapped by GenerationError.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Gemini API key not configured")

	// ErrEmptyCandidates indicates a response without any candidate text.
	ErrEmptyCandidates = errors.New("response contained no candidates")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the API refused the call for quota reasons.
	ErrRateLimited = errors.New("rate limited")
)

// GenerationError is the single failure type of every Generator.
type GenerationError struct {
	// Backend names the generator that failed ("rest", "sdk", ...).
	Backend string
	// Status is the HTTP status when the API answered, otherwise 0.
	Status int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gemini %s (HTTP %d): %v", e.Backend, e.Status, e.Err)
	}
	return fmt.Sprintf("gemini %s: %v", e.Backend, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is or wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
