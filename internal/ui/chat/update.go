// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/reveal"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
	"github.com/jeranaias/topnotch-tui/internal/util"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case replyMsg:
		return m.handleReply(msg)

	case revealTickMsg:
		return m.handleRevealTick(msg)

	case spinner.TickMsg:
		if !m.snap.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.renderThread()
		return m, cmd

	case sessionEventMsg:
		m.refresh()
		return m, nil

	case configReloadedMsg:
		return m.handleConfigReload(msg)

	case themeSavedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("theme", msg.pref.String()).Msg("saving theme preference failed")
			m.setStatus("Could not save theme: "+msg.err.Error(), true)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleTheme):
		pref := m.theme.Preference.Next()
		m.applyTheme(pref)
		m.setStatus("Theme: "+pref.String(), false)
		cmd := m.saveTheme(pref)
		return m, cmd

	case key.Matches(msg, m.keys.NewChat):
		m.sess.NewConversation()
		m.stopReveal()
		m.setFocus(focusInput)
		m.setStatus("", false)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput && m.theme.ShowSidebar() {
			m.setFocus(focusSidebar)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveDown()
	case key.Matches(msg, m.keys.Open):
		conv, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		if conv.ID != m.snap.ActiveID {
			m.stopReveal()
		}
		if !m.sess.SelectConversation(conv.ID) {
			m.setStatus("Conversation not found", true)
		}
		m.setFocus(focusInput)
		m.refresh()
		m.sidebar.SelectActive()
	case key.Matches(msg, m.keys.Delete):
		conv, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		m.sess.DeleteConversation(conv.ID)
		m.setStatus("Deleted conversation", false)
		m.refresh()
	case key.Matches(msg, m.keys.SkipReveal):
		m.setFocus(focusInput)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.SkipReveal):
		if m.reveal.active() {
			m.reveal.cursor.Finish()
			m.stopReveal()
			m.renderThread()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the session and starts the generation call off
// the update loop.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := util.NormalizeInput(m.input.Value())
	ex, ok := m.sess.Submit(text)
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.setStatus("", false)
	m.stopReveal()
	m.refresh()

	ctx := m.ctx
	run := func() tea.Msg {
		return replyMsg{reply: ex.Run(ctx)}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

// =============================================================================
// REPLIES AND REVEAL
// =============================================================================

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	out := m.sess.Complete(msg.reply)
	if out.Err != nil {
		m.setStatus("Request failed", true)
	}
	m.refresh()
	if !out.Visible {
		return m, nil
	}
	cmd := m.startReveal(out.Message.ID, out.Message.Content)
	return m, cmd
}

// startReveal begins typing out the message and returns the first tick.
func (m *Model) startReveal(id, text string) tea.Cmd {
	m.reveal.gen++
	m.reveal.msgID = id
	m.reveal.cursor = reveal.NewCursor(text)
	if m.reveal.cursor.Done() {
		m.stopReveal()
		m.renderThread()
		return nil
	}
	m.renderThread()
	return m.revealTick()
}

func (m *Model) revealTick() tea.Cmd {
	gen := m.reveal.gen
	return tea.Tick(m.revealInterval, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

func (m Model) handleRevealTick(msg revealTickMsg) (tea.Model, tea.Cmd) {
	if !m.reveal.active() || msg.gen != m.reveal.gen {
		return m, nil
	}
	m.reveal.cursor.Next()
	if m.reveal.cursor.Done() {
		m.stopReveal()
		m.renderThread()
		return m, nil
	}
	m.renderThread()
	return m, m.revealTick()
}

// stopReveal drops the running reveal. Pending ticks become stale.
func (m *Model) stopReveal() {
	m.reveal.cursor = nil
	m.reveal.msgID = ""
	m.reveal.gen++
}

// =============================================================================
// FOCUS, THEME AND CONFIG
// =============================================================================

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.sidebar.SetFocused(f == focusSidebar)
	if f == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
	m.sidebar.SelectActive()
}

// applyTheme rebuilds styles for pref and re-renders.
func (m *Model) applyTheme(pref styles.ThemePreference) {
	m.theme = m.theme.WithPreference(pref)
	m.applyThemeStyles()
	m.layout()
}

// saveTheme persists pref to the config file off the update loop.
func (m *Model) saveTheme(pref styles.ThemePreference) tea.Cmd {
	m.cfg = m.cfg.Clone()
	m.cfg.UI.Theme = pref.String()
	if m.cfgPath == "" {
		return nil
	}
	path := m.cfgPath
	return func() tea.Msg {
		_, err := config.UpdateFile(path, func(c *config.Config) error {
			c.UI.Theme = pref.String()
			return nil
		})
		return themeSavedMsg{pref: pref, err: err}
	}
}

func (m Model) handleConfigReload(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("config reload failed")
		m.setStatus("Config reload failed", true)
		return m, nil
	}
	m.cfg = msg.cfg
	if msg.cfg.Chat.RevealInterval.Duration > 0 {
		m.revealInterval = msg.cfg.Chat.RevealInterval.Duration
	}
	if pref, err := styles.ParseThemePreference(msg.cfg.UI.Theme); err == nil && pref != m.theme.Preference {
		m.applyTheme(pref)
		m.setStatus("Theme: "+pref.String(), false)
		return m, nil
	}
	m.renderThread()
	return m, nil
}
