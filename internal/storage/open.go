// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Options selects and locates the conversation store.
type Options struct {
	// Backend is one of BackendMemory, BackendJSON or BackendSQLite.
	Backend string
	// Path is the directory (json) or database file (sqlite).
	Path string
}

// Open returns the store described by opts. The memory backend ignores Path.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (StoreCloser, error) {
	logger = logger.With().Str("component", "storage").Str("backend", opts.Backend).Logger()

	var (
		backend Backend
		err     error
	)
	switch opts.Backend {
	case "", BackendMemory:
		return NewConversationStore(), nil
	case BackendJSON:
		backend, err = NewJSONDir(opts.Path, logger)
	case BackendSQLite:
		backend, err = NewSQLite(ctx, opts.Path)
	default:
		return nil, errors.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	store, err := NewPersistent(ctx, backend, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}
