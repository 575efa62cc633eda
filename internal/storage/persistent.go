// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// backendTimeout bounds a single write-through call.
const backendTimeout = 5 * time.Second

// Backend is durable storage for conversations.
type Backend interface {
	// LoadAll returns every stored conversation. Order is not significant.
	LoadAll(ctx context.Context) ([]model.Conversation, error)
	// Put creates or replaces a conversation.
	Put(ctx context.Context, conv model.Conversation) error
	// Delete removes a conversation. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

// =============================================================================
// PERSISTENT STORE
// =============================================================================

// Persistent is a Store that keeps an in-memory ConversationStore and writes
// every change through to a Backend.
type Persistent struct {
	mem     *ConversationStore
	backend Backend
	log     zerolog.Logger
}

// NewPersistent loads the backend's conversations and returns a store over them.
func NewPersistent(ctx context.Context, backend Backend, logger zerolog.Logger) (*Persistent, error) {
	convs, err := backend.LoadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load conversations")
	}
	SortNewestFirst(convs)

	logger.Debug().Int("conversations", len(convs)).Msg("loaded stored conversations")
	return &Persistent{
		mem:     NewConversationStoreWith(convs),
		backend: backend,
		log:     logger,
	}, nil
}

// Upsert implements Store.
func (p *Persistent) Upsert(conv model.Conversation) {
	p.mem.Upsert(conv)

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := p.backend.Put(ctx, conv); err != nil {
		p.log.Error().Err(err).Str("conversation", conv.ID).Msg("persist conversation")
	}
}

// Remove implements Store.
func (p *Persistent) Remove(id string) {
	p.mem.Remove(id)

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := p.backend.Delete(ctx, id); err != nil {
		p.log.Error().Err(err).Str("conversation", id).Msg("delete stored conversation")
	}
}

// List implements Store.
func (p *Persistent) List() []model.Conversation {
	return p.mem.List()
}

// Get implements Store.
func (p *Persistent) Get(id string) (model.Conversation, bool) {
	return p.mem.Get(id)
}

// Close releases the backend.
func (p *Persistent) Close() error {
	return p.backend.Close()
}

// SortNewestFirst orders conversations the way a fresh store would list them:
// most recently created first. Conversation ids are time-ordered, so this is
// a descending id sort.
func SortNewestFirst(convs []model.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].ID > convs[j].ID
	})
}
