// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// Document is the JSON export envelope. The conversation is the same record
// the JSON storage backend writes, so an export can be dropped back into the
// conversations directory.
type Document struct {
	Generator    string             `json:"generator"`
	ExportedAt   time.Time          `json:"exported_at"`
	Conversation model.Conversation `json:"conversation"`
}

// JSONExporter exports conversations to JSON. It always writes the complete
// record; IncludeMetadata and IncludeTimestamps are ignored.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv model.Conversation) ([]byte, error) {
	if err := checkConversation(conv); err != nil {
		return nil, err
	}
	conv.MessageCount = len(conv.Messages)

	data, err := json.MarshalIndent(Document{
		Generator:    "topnotch",
		ExportedAt:   e.options.now().UTC(),
		Conversation: conv,
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode export")
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
