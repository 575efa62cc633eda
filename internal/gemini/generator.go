// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Backend names accepted by New.
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
	BackendEcho = "echo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// New builds the Generator described by opts.
func New(ctx context.Context, opts Options, logger zerolog.Logger) (Generator, error) {
	logger = logger.With().Str("component", "gemini").Str("backend", opts.Backend).Logger()

	switch opts.Backend {
	case "", BackendREST:
		if opts.APIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewClient(opts.APIKey).
			WithModel(opts.Model).
			WithBaseURL(opts.BaseURL).
			WithTimeout(opts.Timeout).
			WithLogger(logger), nil
	case BackendSDK:
		return NewSDKClient(ctx, opts.APIKey, opts.Model, opts.BaseURL)
	case BackendEcho:
		return Echo{Delay: 300 * time.Millisecond}, nil
	default:
		return nil, errors.Errorf("unknown generation backend %q", opts.Backend)
	}
}
