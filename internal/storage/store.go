// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"sync"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the conversation collection used by a chat session.
type Store interface {
	// Upsert inserts conv at the front if its id is unknown, otherwise
	// replaces the existing entry in place.
	Upsert(conv model.Conversation)

	// Remove deletes the conversation with the given id. Unknown ids are ignored.
	Remove(id string)

	// List returns every conversation in display order.
	List() []model.Conversation

	// Get returns the conversation with the given id.
	Get(id string) (model.Conversation, bool)
}

// StoreCloser is a Store that holds resources.
type StoreCloser interface {
	Store
	Close() error
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore is the in-memory Store. It is safe for concurrent use.
type ConversationStore struct {
	mu    sync.RWMutex
	convs []model.Conversation
}

// NewConversationStore creates an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// NewConversationStoreWith creates a store holding convs in the given order.
func NewConversationStoreWith(convs []model.Conversation) *ConversationStore {
	s := &ConversationStore{convs: make([]model.Conversation, 0, len(convs))}
	for _, c := range convs {
		s.convs = append(s.convs, c.Clone())
	}
	return s
}

// Upsert implements Store.
func (s *ConversationStore) Upsert(conv model.Conversation) {
	conv = conv.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(conv.ID); i >= 0 {
		s.convs[i] = conv
		return
	}
	s.convs = append([]model.Conversation{conv}, s.convs...)
}

// Remove implements Store.
func (s *ConversationStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		s.convs = append(s.convs[:i], s.convs[i+1:]...)
	}
}

// List implements Store. The returned records are copies.
func (s *ConversationStore) List() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Conversation, len(s.convs))
	for i, c := range s.convs {
		out[i] = c.Clone()
	}
	return out
}

// Get implements Store.
func (s *ConversationStore) Get(id string) (model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.convs[i].Clone(), true
	}
	return model.Conversation{}, false
}

// Len returns the number of stored conversations.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}

// Close implements StoreCloser. The in-memory store holds no resources.
func (s *ConversationStore) Close() error {
	return nil
}

func (s *ConversationStore) indexLocked(id string) int {
	for i := range s.convs {
		if s.convs[i].ID == id {
			return i
		}
	}
	return -1
}
