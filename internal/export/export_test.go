// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/topnotch-tui/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func testOptions() *Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func testConversation() model.Conversation {
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	msgs := []model.Message{
		model.NewMessageAt(model.RoleUser, "What is the tallest mountain?", at),
		model.NewMessageAt(model.RoleAssistant, "Mount **Everest**.\n\n```go\nfmt.Println(\"<peak>\")\n```\n\nUse `ls` to list.", at.Add(time.Minute)),
	}
	return model.Conversation{
		ID:           model.NewConversationID(),
		Title:        "What is the tallest mountain?",
		UpdatedAt:    at.Add(time.Minute),
		MessageCount: len(msgs),
		Messages:     msgs,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatMarkdown, true},
		{"md", FormatMarkdown, true},
		{"Markdown", FormatMarkdown, true},
		{"html", FormatHTML, true},
		{" JSON ", FormatJSON, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_AllFormats(t *testing.T) {
	exts := map[Format]string{FormatMarkdown: ".md", FormatHTML: ".html", FormatJSON: ".json"}
	for _, f := range Formats {
		exp, err := New(f, nil)
		require.NoError(t, err)
		assert.Equal(t, exts[f], exp.FileExtension())
		assert.NotEmpty(t, exp.MimeType())
	}

	_, err := New(Format("pdf"), nil)
	assert.Error(t, err)
}

func TestExport_EmptyConversation(t *testing.T) {
	for _, f := range Formats {
		exp, err := New(f, nil)
		require.NoError(t, err)
		_, err = exp.Export(model.Conversation{ID: "x"})
		assert.ErrorIs(t, err, ErrEmptyConversation, string(f))
	}
}

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter(testOptions()).Export(testConversation())
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "title: What is the tallest mountain?\n")
	assert.Contains(t, md, "messages: 2\n")
	assert.Contains(t, md, "# What is the tallest mountain?\n")
	assert.Contains(t, md, "**You** (09:00):")
	assert.Contains(t, md, "**Assistant** (09:01):")
	assert.Contains(t, md, "Mount **Everest**.")
	assert.Contains(t, md, "March 14, 2025 at 9:30 AM")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions()
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	data, err := NewMarkdownExporter(opts).Export(testConversation())
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "# "))
	assert.Contains(t, md, "**You**:")
	assert.NotContains(t, md, "(09:00)")
}

func TestHTMLExporter(t *testing.T) {
	data, err := NewHTMLExporter(testOptions()).Export(testConversation())
	require.NoError(t, err)
	page := string(data)

	assert.Contains(t, page, "<title>What is the tallest mountain?</title>")
	assert.Contains(t, page, `<section class="message user">`)
	assert.Contains(t, page, `<section class="message assistant">`)
	assert.Contains(t, page, `<code class="language-go">fmt.Println(&#34;&lt;peak&gt;&#34;)</code>`)
	assert.Contains(t, page, "<code>ls</code>")
	assert.Contains(t, page, "2 messages")
	assert.NotContains(t, page, "<peak>")
}

func TestHTMLExporter_Theme(t *testing.T) {
	light, err := NewHTMLExporter(testOptions()).Export(testConversation())
	require.NoError(t, err)

	opts := testOptions()
	opts.Theme = "dark"
	dark, err := NewHTMLExporter(opts).Export(testConversation())
	require.NoError(t, err)

	assert.Contains(t, string(light), "--bg: #FFFFFF")
	assert.Contains(t, string(dark), "--bg: #111827")
}

func TestHTMLExporter_EscapesTitle(t *testing.T) {
	conv := testConversation()
	conv.Title = "<script>alert(1)</script>"

	data, err := NewHTMLExporter(testOptions()).Export(conv)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<script>")
}

func TestJSONExporter(t *testing.T) {
	conv := testConversation()
	conv.MessageCount = 0

	data, err := NewJSONExporter(testOptions()).Export(conv)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "topnotch", doc.Generator)
	assert.True(t, doc.ExportedAt.Equal(fixedNow))
	assert.Equal(t, conv.ID, doc.Conversation.ID)
	assert.Equal(t, 2, doc.Conversation.MessageCount)
	assert.True(t, doc.Conversation.Valid())
	assert.Contains(t, string(data), `"role": "assistant"`)
}

func TestFilename(t *testing.T) {
	conv := testConversation()
	conv.Title = `a/b: c?`
	assert.Equal(t, filepath.Join("out", "a-b-_c-.md"), Filename("out", conv, NewMarkdownExporter(nil)))

	conv.Title = ""
	assert.Equal(t, "conversation.json", Filename("", conv, NewJSONExporter(nil)))

	conv.Title = strings.Repeat("x", 80)
	name := Filename("", conv, NewHTMLExporter(nil))
	assert.Equal(t, strings.Repeat("x", 50)+".html", name)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "conversation", sanitizeFilename("  "))
	assert.Equal(t, "conversation", sanitizeFilename(".."))
	assert.Equal(t, "tab_and-ctrl", sanitizeFilename("tab\tand\x01ctrl"))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "conv.md")
	require.NoError(t, WriteFile(NewMarkdownExporter(testOptions()), testConversation(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# What is the tallest mountain?")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWriteFile_EmptyConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.md")
	err := WriteFile(NewMarkdownExporter(nil), model.Conversation{ID: "x"}, path)
	assert.ErrorIs(t, err, ErrEmptyConversation)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
