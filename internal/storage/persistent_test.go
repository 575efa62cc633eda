// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// backendFactory opens a backend rooted in dir.
type backendFactory func(t *testing.T, dir string) Backend

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		"json": func(t *testing.T, dir string) Backend {
			b, err := NewJSONDir(filepath.Join(dir, "conversations"), zerolog.Nop())
			require.NoError(t, err)
			return b
		},
		"sqlite": func(t *testing.T, dir string) Backend {
			b, err := NewSQLite(context.Background(), filepath.Join(dir, "topnotch.db"))
			require.NoError(t, err)
			return b
		},
	}
}

// =============================================================================
// BACKEND ROUND TRIP TESTS
// =============================================================================

func TestPersistent_SurvivesReopen(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			store, err := NewPersistent(ctx, open(t, dir), zerolog.Nop())
			require.NoError(t, err)

			a := testConversation("first conversation", 2)
			b := testConversation("second conversation", 2)
			c := testConversation("third conversation", 2)
			store.Upsert(a)
			store.Upsert(b)
			store.Upsert(c)

			a2 := testConversation("first conversation", 4)
			a2.ID = a.ID
			store.Upsert(a2)
			store.Remove(b.ID)
			require.NoError(t, store.Close())

			reopened, err := NewPersistent(ctx, open(t, dir), zerolog.Nop())
			require.NoError(t, err)
			defer reopened.Close()

			list := reopened.List()
			require.Equal(t, []string{c.ID, a.ID}, ids(list))

			got := list[1]
			assert.Equal(t, a2.Title, got.Title)
			assert.Equal(t, 4, got.MessageCount)
			require.Len(t, got.Messages, 4)
			for i, msg := range got.Messages {
				assert.Equal(t, a2.Messages[i].ID, msg.ID)
				assert.Equal(t, a2.Messages[i].Role, msg.Role)
				assert.Equal(t, a2.Messages[i].Content, msg.Content)
				assert.True(t, a2.Messages[i].Timestamp.Equal(msg.Timestamp))
			}
			assert.True(t, a2.UpdatedAt.Equal(got.UpdatedAt))
		})
	}
}

func TestPersistent_RemoveUnknownIsNoop(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			store, err := NewPersistent(context.Background(), open(t, t.TempDir()), zerolog.Nop())
			require.NoError(t, err)
			defer store.Close()

			store.Remove("conv_missing")
			assert.Empty(t, store.List())
		})
	}
}

// failingBackend accepts loads but fails every write.
type failingBackend struct{ puts, deletes int }

func (f *failingBackend) LoadAll(context.Context) ([]model.Conversation, error) { return nil, nil }
func (f *failingBackend) Put(context.Context, model.Conversation) error {
	f.puts++
	return errors.New("disk full")
}
func (f *failingBackend) Delete(context.Context, string) error {
	f.deletes++
	return errors.New("disk full")
}
func (f *failingBackend) Close() error { return nil }

func TestPersistent_BackendErrorsDoNotSurface(t *testing.T) {
	backend := &failingBackend{}
	store, err := NewPersistent(context.Background(), backend, zerolog.Nop())
	require.NoError(t, err)

	a := testConversation("kept in memory", 2)
	store.Upsert(a)
	_, ok := store.Get(a.ID)
	assert.True(t, ok, "memory view stays authoritative")
	assert.Equal(t, 1, backend.puts)

	store.Remove(a.ID)
	assert.Empty(t, store.List())
	assert.Equal(t, 1, backend.deletes)
}

// =============================================================================
// JSON BACKEND TESTS
// =============================================================================

func TestJSONDir_SkipsCorruptedFiles(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewJSONDir(dir, zerolog.Nop())
	require.NoError(t, err)

	good := testConversation("good one", 2)
	require.NoError(t, backend.Put(context.Background(), good))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conv_broken.json"), []byte("{not json"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	convs, err := backend.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, good.ID, convs[0].ID)
}

func TestJSONDir_RejectsPathLikeIDs(t *testing.T) {
	backend, err := NewJSONDir(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		err := backend.Put(context.Background(), model.Conversation{ID: id})
		assert.True(t, errors.Is(err, ErrInvalidID), "id %q: %v", id, err)
	}
}

func TestJSONDir_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewJSONDir(dir, zerolog.Nop())
	require.NoError(t, err)

	conv := testConversation("private", 2)
	require.NoError(t, backend.Put(context.Background(), conv))

	info, err := os.Stat(filepath.Join(dir, conv.ID+".json"))
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

// =============================================================================
// OPEN TESTS
// =============================================================================

func TestOpen(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Options{Backend: BackendMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &ConversationStore{}, mem)

	dir := t.TempDir()
	sqlite, err := Open(ctx, Options{Backend: BackendSQLite, Path: filepath.Join(dir, "db.sqlite")}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Persistent{}, sqlite)
	require.NoError(t, sqlite.Close())

	_, err = Open(ctx, Options{Backend: "postgres"}, zerolog.Nop())
	assert.Error(t, err)
}
