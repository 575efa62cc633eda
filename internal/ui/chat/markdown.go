// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// markdown renders finished assistant replies. Output is cached per message
// and dropped whenever the width or theme changes.
type markdown struct {
	width   int
	dark    bool
	profile termenv.Profile

	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newMarkdown(profile termenv.Profile) *markdown {
	return &markdown{profile: profile, cache: make(map[string]string)}
}

// configure resets the renderer when the layout changes.
func (md *markdown) configure(width int, dark bool, profile termenv.Profile) {
	if width == md.width && dark == md.dark && profile == md.profile && md.renderer != nil {
		return
	}
	md.width = width
	md.dark = dark
	md.profile = profile
	md.renderer = nil
	md.cache = make(map[string]string)
}

// render returns the styled text for the message id, or ok=false if the
// content cannot be rendered and should be shown as plain text.
func (md *markdown) render(id, content string) (string, bool) {
	if out, ok := md.cache[id]; ok {
		return out, true
	}
	if md.renderer == nil {
		style := "light"
		if md.dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(md.width),
			glamour.WithColorProfile(md.profile),
		)
		if err != nil {
			return "", false
		}
		md.renderer = r
	}
	out, err := md.renderer.Render(content)
	if err != nil {
		return "", false
	}
	md.cache[id] = out
	return out, true
}
