// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// testConversation builds a well-formed conversation with n alternating messages.
func testConversation(first string, n int) model.Conversation {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	msgs := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		content := first
		if i%2 == 1 {
			role = model.RoleAssistant
			content = fmt.Sprintf("reply %d", i)
		} else if i > 0 {
			content = fmt.Sprintf("question %d", i)
		}
		msgs = append(msgs, model.NewMessageAt(role, content, at.Add(time.Duration(i)*time.Second)))
	}
	return model.Conversation{
		ID:           model.NewConversationID(),
		Title:        model.DeriveTitle(first),
		UpdatedAt:    at.Add(time.Duration(n) * time.Second),
		MessageCount: n,
		Messages:     msgs,
	}
}

func ids(convs []model.Conversation) []string {
	out := make([]string, len(convs))
	for i, c := range convs {
		out[i] = c.ID
	}
	return out
}

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestConversationStore_UpsertInsertsAtFront(t *testing.T) {
	s := NewConversationStore()
	a := testConversation("first", 2)
	b := testConversation("second", 2)

	s.Upsert(a)
	s.Upsert(b)

	assert.Equal(t, []string{b.ID, a.ID}, ids(s.List()))
	assert.Equal(t, 2, s.Len())
}

func TestConversationStore_UpsertReplacesInPlace(t *testing.T) {
	s := NewConversationStore()
	a := testConversation("first", 2)
	b := testConversation("second", 2)
	c := testConversation("third", 2)
	s.Upsert(a)
	s.Upsert(b)
	s.Upsert(c)

	updated := testConversation("first", 4)
	updated.ID = a.ID
	s.Upsert(updated)

	list := s.List()
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(list), "update must not reorder")
	assert.Equal(t, 4, list[2].MessageCount)
	assert.Len(t, list[2].Messages, 4)
}

func TestConversationStore_Remove(t *testing.T) {
	s := NewConversationStore()
	a := testConversation("first", 2)
	b := testConversation("second", 2)
	s.Upsert(a)
	s.Upsert(b)

	s.Remove(a.ID)
	assert.Equal(t, []string{b.ID}, ids(s.List()))

	s.Remove("conv_missing")
	s.Remove(a.ID)
	assert.Equal(t, []string{b.ID}, ids(s.List()), "removing an unknown id is a no-op")

	_, ok := s.Get(a.ID)
	assert.False(t, ok)
}

func TestConversationStore_ListIsReadOnlyView(t *testing.T) {
	s := NewConversationStore()
	a := testConversation("first", 2)
	s.Upsert(a)

	list := s.List()
	list[0].Title = "mutated"
	list[0].Messages[0] = model.NewUserMessage("mutated")

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, "first", got.Messages[0].Content)
}

func TestConversationStore_UpsertCopiesInput(t *testing.T) {
	s := NewConversationStore()
	a := testConversation("first", 2)
	s.Upsert(a)

	a.Messages[0] = model.NewUserMessage("changed after upsert")
	got, _ := s.Get(a.ID)
	assert.Equal(t, "first", got.Messages[0].Content)
}

func TestConversationStore_Concurrent(t *testing.T) {
	s := NewConversationStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := testConversation(fmt.Sprintf("conversation %d", i), 2)
			s.Upsert(c)
			_ = s.List()
			if i%2 == 0 {
				s.Remove(c.ID)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, s.Len())
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatList(t *testing.T) {
	assert.Equal(t, "No conversations yet.", FormatList(nil))

	a := testConversation("What is the tallest mountain on Earth?", 2)
	out := FormatList([]model.Conversation{a})
	assert.Contains(t, out, "1    What is the tallest mountain on...")
	assert.Contains(t, out, "Messages")
}
