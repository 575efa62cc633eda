// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/util"
)

// ErrInvalidID is returned for conversation ids that cannot name a file.
var ErrInvalidID = errors.New("invalid conversation id")

// =============================================================================
// JSON DIRECTORY BACKEND
// =============================================================================

// JSONDir stores each conversation as <id>.json in a directory.
type JSONDir struct {
	// BaseDir is the directory holding the conversation files.
	BaseDir string

	log zerolog.Logger
}

// NewJSONDir creates the directory if needed and returns a backend over it.
func NewJSONDir(baseDir string, logger zerolog.Logger) (*JSONDir, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "create %s", baseDir)
	}
	return &JSONDir{BaseDir: baseDir, log: logger}, nil
}

// LoadAll implements Backend. Unreadable or corrupted files are skipped.
func (d *JSONDir) LoadAll(ctx context.Context) ([]model.Conversation, error) {
	entries, err := os.ReadDir(d.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Conversation{}, nil
		}
		return nil, errors.Wrap(err, "read conversation directory")
	}

	convs := make([]model.Conversation, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		conv, err := d.load(filepath.Join(d.BaseDir, entry.Name()))
		if err != nil {
			d.log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable conversation")
			continue
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

// Put implements Backend.
func (d *JSONDir) Put(_ context.Context, conv model.Conversation) error {
	path, err := d.filePath(conv.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode conversation")
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "write conversation %s", conv.ID)
	}
	return nil
}

// Delete implements Backend.
func (d *JSONDir) Delete(_ context.Context, id string) error {
	path, err := d.filePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove conversation %s", id)
	}
	return nil
}

// Close implements Backend.
func (d *JSONDir) Close() error {
	return nil
}

func (d *JSONDir) load(path string) (model.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Conversation{}, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return model.Conversation{}, errors.Wrap(err, "decode conversation")
	}
	conv.MessageCount = len(conv.Messages)
	if conv.ID == "" {
		return model.Conversation{}, errors.New("conversation has no id")
	}
	return conv, nil
}

// filePath returns the file path for a conversation ID.
func (d *JSONDir) filePath(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return "", errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return filepath.Join(d.BaseDir, id+".json"), nil
}
