// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv model.Conversation) ([]byte, error)

	// FileExtension returns the file extension including the dot (".md").
	FileExtension() string

	// MimeType returns the MIME type of the exported content.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatMarkdown, FormatHTML, FormatJSON}

// ErrEmptyConversation is returned when exporting a conversation without messages.
var ErrEmptyConversation = errors.New("conversation has no messages")

// ParseFormat resolves a format name. "markdown" is accepted as an alias for md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.Errorf("unknown export format %q (valid: md, html, json)", s)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a header with the conversation id, date and counts.
	IncludeMetadata bool

	// IncludeTimestamps shows the time of each message.
	IncludeTimestamps bool

	// Theme selects the HTML color scheme ("light" or "dark").
	Theme string

	// Now stamps the export footer. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "light",
	}
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// New returns the exporter for a format. Nil options select DefaultOptions.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	}
	return nil, errors.Errorf("unknown export format %q", format)
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteFile exports conv and writes it atomically to path with owner-only
// permissions.
func WriteFile(e Exporter, conv model.Conversation, path string) error {
	data, err := e.Export(conv)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "write export %s", path)
	}
	return nil
}

// Filename suggests a file name in dir for conv, built from its title and
// the exporter's extension.
func Filename(dir string, conv model.Conversation, e Exporter) string {
	name := sanitizeFilename(conv.Title)
	if len(name) > 50 {
		name = strings.TrimRight(truncateRunes(name, 50), "-_")
	}
	return filepath.Join(dir, name+e.FileExtension())
}

// sanitizeFilename removes characters that are invalid in file names on
// common platforms.
func sanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			sb.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			sb.WriteRune('_')
		case r < 32 || r == 127:
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}
	out := strings.Trim(sb.String(), ".")
	if out == "" {
		return "conversation"
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func checkConversation(conv model.Conversation) error {
	if conv.IsEmpty() {
		return ErrEmptyConversation
	}
	return nil
}

func titleOf(conv model.Conversation) string {
	if conv.Title != "" {
		return conv.Title
	}
	return "Conversation " + conv.ID
}
