// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/reveal"
	"github.com/jeranaias/topnotch-tui/internal/session"
	"github.com/jeranaias/topnotch-tui/internal/ui/components"
	"github.com/jeranaias/topnotch-tui/internal/ui/styles"
)

// Placeholder is shown in the empty input box.
const Placeholder = "Ask me anything..."

// MaxInputLength caps a single prompt.
const MaxInputLength = 8000

// =============================================================================
// CHAT STATE
// =============================================================================

// focusArea is the part of the screen receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// revealState tracks the reply currently being typed out.
type revealState struct {
	msgID  string
	cursor *reveal.Cursor
	gen    uint64
}

func (r *revealState) active() bool {
	return r.cursor != nil
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	Session *session.Session
	Theme   *styles.Theme
	// Config supplies UI preferences. Nil means defaults.
	Config *config.Config
	// ConfigPath is where theme changes are saved. Empty disables saving.
	ConfigPath string
	// Context bounds generation calls.
	Context context.Context
	Logger  zerolog.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	cfg     *config.Config
	cfgPath string
	log     zerolog.Logger

	// Styling
	theme *styles.Theme
	md    *markdown

	// Widgets
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	sidebar  components.Sidebar
	welcome  components.Welcome

	// Dimensions
	width  int
	height int

	focus          focusArea
	snap           session.Snapshot
	reveal         revealState
	revealInterval time.Duration

	status    string
	statusErr bool
}

// New creates a chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := opts.Theme
	if theme == nil {
		pref, _ := styles.ParseThemePreference(cfg.UI.Theme)
		theme = styles.NewTheme(pref)
	}

	input := textinput.New()
	input.Placeholder = Placeholder
	input.Prompt = "› "
	input.CharLimit = MaxInputLength
	input.Focus()

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Bubble()

	interval := cfg.Chat.RevealInterval.Duration
	if interval <= 0 {
		interval = reveal.DefaultInterval
	}

	m := Model{
		ctx:            ctx,
		sess:           opts.Session,
		cfg:            cfg,
		cfgPath:        opts.ConfigPath,
		log:            opts.Logger.With().Str("component", "tui").Logger(),
		theme:          theme,
		md:             newMarkdown(theme.ColorProfile),
		keys:           DefaultKeyMap(),
		help:           help.New(),
		input:          input,
		viewport:       viewport.New(80, 20),
		spinner:        sp,
		sidebar:        components.NewSidebar(theme),
		welcome:        components.NewWelcome(theme),
		revealInterval: interval,
	}
	m.applyThemeStyles()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Theme returns the active theme.
func (m Model) Theme() *styles.Theme {
	return m.theme
}

// Revealing reports whether a reply is still being typed out.
func (m Model) Revealing() bool {
	return m.reveal.active()
}

// SidebarFocused reports whether the conversation list has focus.
func (m Model) SidebarFocused() bool {
	return m.focus == focusSidebar
}

// applyThemeStyles pushes theme styles into the bubbles widgets.
func (m *Model) applyThemeStyles() {
	t := m.theme
	m.input.PromptStyle = t.InputPrompt
	m.input.PlaceholderStyle = t.InputPlaceholder
	m.spinner.Style = t.Spinner
	m.help.Styles.ShortKey = t.ShortcutKey
	m.help.Styles.ShortDesc = t.ShortcutDesc
	m.help.Styles.FullKey = t.ShortcutKey
	m.help.Styles.FullDesc = t.ShortcutDesc
	m.sidebar.SetTheme(t)
	m.welcome = components.NewWelcome(t)
}

// refresh re-reads the session and re-renders the thread. A reveal whose
// message left the thread is dropped.
func (m *Model) refresh() {
	m.snap = m.sess.Snapshot()
	m.sidebar.SetConversations(m.snap.Conversations, m.snap.ActiveID)

	if m.reveal.active() && !m.threadHas(m.reveal.msgID) {
		m.stopReveal()
	}
	m.renderThread()
}

func (m *Model) threadHas(id string) bool {
	for _, msg := range m.snap.Messages {
		if msg.ID == id {
			return true
		}
	}
	return false
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
