// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations as a standalone HTML page with embedded
// CSS. Colors come from the TUI palette.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv model.Conversation) ([]byte, error) {
	if err := checkConversation(conv); err != nil {
		return nil, err
	}
	title := html.EscapeString(titleOf(conv))

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("<meta name=\"generator\" content=\"topnotch\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	sb.WriteString(e.css())
	sb.WriteString("</head>\n<body>\n<div class=\"container\">\n")

	fmt.Fprintf(&sb, "<header><h1>%s</h1>\n", title)
	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "<p class=\"meta\">%s &middot; updated %s</p>\n",
			html.EscapeString(model.FormatMessageCount(len(conv.Messages))),
			html.EscapeString(conv.UpdatedAt.Format("January 2, 2006 15:04")))
	}
	sb.WriteString("</header>\n<main>\n")

	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}

	sb.WriteString("</main>\n")
	fmt.Fprintf(&sb, "<footer>Exported from <strong>Topnotch</strong> on %s</footer>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING
// =============================================================================

func (e *HTMLExporter) renderMessage(msg model.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<section class=\"message %s\">\n", msg.Role.String())
	sb.WriteString("<div class=\"role\">")
	sb.WriteString(html.EscapeString(msg.Role.DisplayName()))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		fmt.Fprintf(&sb, " <time datetime=\"%s\">%s</time>",
			msg.Timestamp.Format(time.RFC3339), msg.Timestamp.Format("15:04"))
	}
	sb.WriteString("</div>\n")
	sb.WriteString(formatContent(msg.Content))
	sb.WriteString("\n</section>\n")
	return sb.String()
}

var (
	codeBlockRe  = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")
)

// formatContent renders message text as HTML. Fenced code blocks become
// <pre> elements, inline code becomes <code>, and the remaining text is split
// into paragraphs on blank lines. All text is escaped first.
func formatContent(content string) string {
	content = strings.TrimSpace(content)

	var out strings.Builder
	last := 0
	for _, m := range codeBlockRe.FindAllStringSubmatchIndex(content, -1) {
		out.WriteString(paragraphs(content[last:m[0]]))
		lang := content[m[2]:m[3]]
		code := strings.TrimRight(content[m[4]:m[5]], "\n")
		if lang != "" {
			fmt.Fprintf(&out, "<pre><code class=\"language-%s\">%s</code></pre>\n",
				html.EscapeString(lang), html.EscapeString(code))
		} else {
			fmt.Fprintf(&out, "<pre><code>%s</code></pre>\n", html.EscapeString(code))
		}
		last = m[1]
	}
	out.WriteString(paragraphs(content[last:]))
	return strings.TrimRight(out.String(), "\n")
}

func paragraphs(text string) string {
	var sb strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		escaped := html.EscapeString(para)
		escaped = inlineCodeRe.ReplaceAllString(escaped, "<code>$1</code>")
		escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
		sb.WriteString("<p>" + escaped + "</p>\n")
	}
	return sb.String()
}

// =============================================================================
// STYLESHEET
// =============================================================================

// css builds the embedded stylesheet from the TUI palette, choosing the
// light or dark side of each color from Options.Theme.
func (e *HTMLExporter) css() string {
	dark := strings.EqualFold(e.options.Theme, "dark")
	pick := func(c lipgloss.AdaptiveColor) string {
		if dark {
			return c.Dark
		}
		return c.Light
	}

	return fmt.Sprintf(`<style>
:root {
  --bg: %s; --bg-dim: %s; --border: %s;
  --text: %s; --text-muted: %s; --accent: %s;
  --user-bg: %s; --user-fg: %s; --assistant-fg: %s;
}
* { box-sizing: border-box; }
body { margin: 0; background: var(--bg); color: var(--text);
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; line-height: 1.6; }
.container { max-width: 820px; margin: 0 auto; padding: 2rem 1rem; }
header h1 { color: var(--accent); margin-bottom: 0.25rem; }
.meta, footer, time { color: var(--text-muted); font-size: 0.85rem; }
.message { border: 1px solid var(--border); border-radius: 10px; padding: 0.75rem 1rem; margin: 1rem 0; }
.message.user { background: var(--user-bg); color: var(--user-fg); margin-left: 15%%; border: none; }
.message.assistant { color: var(--assistant-fg); margin-right: 15%%; }
.role { font-weight: 600; margin-bottom: 0.25rem; }
pre { background: var(--bg-dim); padding: 0.75rem; border-radius: 6px; overflow-x: auto; }
code { font-family: "SF Mono", Menlo, Consolas, monospace; font-size: 0.9em; }
footer { margin-top: 2rem; text-align: center; }
</style>
`,
		pick(styles.Surface), pick(styles.SurfaceDim), pick(styles.AssistantBubbleBorder),
		pick(styles.TextPrimary), pick(styles.TextMuted), pick(styles.Indigo),
		pick(styles.UserBubbleBg), pick(styles.UserBubbleFg), pick(styles.AssistantBubbleFg))
}
