// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// sqliteSchema creates the conversation tables.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	updated_at    INTEGER NOT NULL,
	message_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	id              TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	PRIMARY KEY (conversation_id, seq)
);
`

// =============================================================================
// SQLITE BACKEND
// =============================================================================

// SQLite stores conversations in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "set %s", pragma)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize schema")
	}

	return &SQLite{db: db}, nil
}

// LoadAll implements Backend.
func (s *SQLite) LoadAll(ctx context.Context) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, updated_at FROM conversations ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query conversations")
	}

	var convs []model.Conversation
	index := make(map[string]int)
	for rows.Next() {
		var (
			conv    model.Conversation
			updated int64
		)
		if err := rows.Scan(&conv.ID, &conv.Title, &updated); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan conversation")
		}
		conv.UpdatedAt = time.Unix(0, updated)
		conv.Messages = []model.Message{}
		index[conv.ID] = len(convs)
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "iterate conversations")
	}
	rows.Close()

	msgRows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, id, role, content, created_at
		   FROM messages ORDER BY conversation_id, seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query messages")
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var (
			convID, role string
			msg          model.Message
			created      int64
		)
		if err := msgRows.Scan(&convID, &msg.ID, &role, &msg.Content, &created); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		i, ok := index[convID]
		if !ok {
			continue
		}
		if msg.Role, err = model.ParseRole(role); err != nil {
			return nil, errors.Wrapf(err, "message %s", msg.ID)
		}
		msg.Timestamp = time.Unix(0, created)
		convs[i].Messages = append(convs[i].Messages, msg)
	}
	if err := msgRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate messages")
	}

	for i := range convs {
		convs[i].MessageCount = len(convs[i].Messages)
	}
	return convs, nil
}

// Put implements Backend. The conversation row and its messages are replaced
// in one transaction.
func (s *SQLite) Put(ctx context.Context, conv model.Conversation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, updated_at, message_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at,
			message_count = excluded.message_count`,
		conv.ID, conv.Title, conv.UpdatedAt.UnixNano(), len(conv.Messages))
	if err != nil {
		return errors.Wrapf(err, "upsert conversation %s", conv.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return errors.Wrapf(err, "clear messages of %s", conv.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (conversation_id, seq, id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare message insert")
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		if _, err := stmt.ExecContext(ctx, conv.ID, i, msg.ID, msg.Role.String(), msg.Content, msg.Timestamp.UnixNano()); err != nil {
			return errors.Wrapf(err, "insert message %s", msg.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit conversation")
}

// Delete implements Backend. Messages go with the conversation row.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "delete conversation %s", id)
	}
	return nil
}

// Close implements Backend.
func (s *SQLite) Close() error {
	return s.db.Close()
}
