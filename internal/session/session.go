// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/topnotch-tui/internal/clock"
	"github.com/jeranaias/topnotch-tui/internal/gemini"
	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/storage"
)

// ApologyMessage replaces the reply when generation fails.
const ApologyMessage = "Sorry, I encountered an error while processing your request. Please try again."

// =============================================================================
// EVENTS
// =============================================================================

// EventKind classifies a session change.
type EventKind int

const (
	// EventThreadChanged: messages of the active thread changed or the
	// active thread was replaced.
	EventThreadChanged EventKind = iota + 1
	// EventSaved: a conversation was written to the store.
	EventSaved
	// EventRemoved: a conversation was deleted from the store.
	EventRemoved
	// EventBusyChanged: the busy flag flipped.
	EventBusyChanged
)

// String returns a short name for logs.
func (k EventKind) String() string {
	switch k {
	case EventThreadChanged:
		return "thread_changed"
	case EventSaved:
		return "saved"
	case EventRemoved:
		return "removed"
	case EventBusyChanged:
		return "busy_changed"
	default:
		return "unknown"
	}
}

// Event describes one change. ConversationID is set for saves and removals.
type Event struct {
	Kind           EventKind
	ConversationID string
}

// =============================================================================
// SESSION
// =============================================================================

// Options configures a Session.
type Options struct {
	Store     storage.Store
	Generator gemini.Generator
	// Clock defaults to the real clock.
	Clock clock.Clock
	// AutoSaveDelay defaults to DefaultAutoSaveDelay.
	AutoSaveDelay time.Duration
	Logger        zerolog.Logger
}

// thread is the working copy of the messages being displayed. A new value is
// created whenever the active thread is replaced, so exchanges can tell
// whether the thread they were submitted on is still the active one.
type thread struct {
	id       string
	title    string
	messages []model.Message
}

// Session owns the active thread. It is safe for concurrent use; all methods
// are serialized.
type Session struct {
	mu sync.Mutex

	store    storage.Store
	gen      gemini.Generator
	clk      clock.Clock
	log      zerolog.Logger
	autosave *AutoSaver

	thread *thread
	busy   bool
	closed bool

	listeners []func(Event)
	pending   []Event
}

// New creates a session with an empty, unsaved thread.
func New(opts Options) *Session {
	if opts.Store == nil {
		opts.Store = storage.NewConversationStore()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Generator == nil {
		opts.Generator = gemini.Unavailable("none", gemini.ErrNotConfigured)
	}

	s := &Session{
		store:  opts.Store,
		gen:    opts.Generator,
		clk:    opts.Clock,
		log:    opts.Logger.With().Str("component", "session").Logger(),
		thread: &thread{},
	}
	s.autosave = NewAutoSaver(opts.Clock, opts.AutoSaveDelay, s.autoSaveDue)
	return s
}

// OnChange registers a listener. Listeners run after the session lock is
// released and may call back into the session. A listener invoked from an
// event loop must not block on that same loop.
func (s *Session) OnChange(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// lock and unlock bracket every operation; unlock delivers the events the
// operation produced.
func (s *Session) lock() {
	s.mu.Lock()
}

func (s *Session) unlock() {
	events := s.pending
	s.pending = nil
	listeners := s.listeners
	s.mu.Unlock()

	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

func (s *Session) emit(kind EventKind, convID string) {
	s.pending = append(s.pending, Event{Kind: kind, ConversationID: convID})
}

// =============================================================================
// OBSERVABLES
// =============================================================================

// Messages returns a copy of the active thread.
func (s *Session) Messages() []model.Message {
	s.lock()
	defer s.unlock()
	return model.CloneMessages(s.thread.messages)
}

// Busy reports whether a reply is being generated.
func (s *Session) Busy() bool {
	s.lock()
	defer s.unlock()
	return s.busy
}

// ActiveID returns the id of the active conversation, or "" for an unsaved thread.
func (s *Session) ActiveID() string {
	s.lock()
	defer s.unlock()
	return s.thread.id
}

// Conversations lists the store.
func (s *Session) Conversations() []model.Conversation {
	return s.store.List()
}

// Snapshot is a consistent view of the session for rendering.
type Snapshot struct {
	Messages      []model.Message
	Busy          bool
	ActiveID      string
	Conversations []model.Conversation

	// SavePending is true while the thread has changes waiting for the
	// auto-save quiet period.
	SavePending bool
}

// Snapshot returns the thread, busy flag, active id and listing taken under
// one lock.
func (s *Session) Snapshot() Snapshot {
	s.lock()
	defer s.unlock()
	return Snapshot{
		Messages:      model.CloneMessages(s.thread.messages),
		Busy:          s.busy,
		ActiveID:      s.thread.id,
		Conversations: s.store.List(),
		SavePending:   s.autosave.Pending(),
	}
}

// =============================================================================
// CONVERSATION ACTIONS
// =============================================================================

// NewConversation saves a non-empty thread immediately and starts an empty,
// unsaved one.
func (s *Session) NewConversation() {
	s.lock()
	defer s.unlock()

	s.autosave.Cancel()
	if len(s.thread.messages) > 0 {
		s.saveLocked()
	}
	s.thread = &thread{}
	s.emit(EventThreadChanged, "")
}

// SelectConversation makes the stored conversation id the active thread. A
// non-empty current thread is saved first, even when id turns out to be
// unknown. Selecting the active conversation is a no-op. It returns false if
// id is unknown, leaving the current thread active.
func (s *Session) SelectConversation(id string) bool {
	s.lock()
	defer s.unlock()

	if id != "" && id == s.thread.id {
		return true
	}

	s.autosave.Cancel()
	if len(s.thread.messages) > 0 {
		s.saveLocked()
	}

	conv, ok := s.store.Get(id)
	if !ok {
		return false
	}

	s.thread = &thread{
		id:       conv.ID,
		title:    conv.Title,
		messages: conv.Messages,
	}
	s.emit(EventThreadChanged, conv.ID)
	return true
}

// DeleteConversation removes id from the store. Deleting the active
// conversation discards the thread, including any pending save.
func (s *Session) DeleteConversation(id string) {
	s.lock()
	defer s.unlock()

	s.store.Remove(id)
	s.emit(EventRemoved, id)

	if id != "" && id == s.thread.id {
		s.autosave.Cancel()
		s.thread = &thread{}
		s.emit(EventThreadChanged, "")
	}
}

// Flush saves a pending change now instead of waiting for the quiet period.
// Front ends call it before showing the conversation list so the active
// thread appears in it.
func (s *Session) Flush() {
	s.lock()
	defer s.unlock()
	s.flushLocked()
}

func (s *Session) flushLocked() {
	if s.autosave.Pending() {
		s.autosave.Cancel()
		s.saveLocked()
	}
}

// Close flushes any pending change and stops the auto-save timer. Later
// submissions are ignored.
func (s *Session) Close() {
	s.lock()
	defer s.unlock()

	if s.closed {
		return
	}
	s.flushLocked()
	s.closed = true
}

// =============================================================================
// SAVING
// =============================================================================

func (s *Session) autoSaveDue(gen uint64) {
	s.lock()
	defer s.unlock()

	if s.closed || !s.autosave.Claim(gen) {
		return
	}
	s.saveLocked()
}

// saveLocked upserts the active thread. The first save assigns an id and a
// title; later saves keep both.
func (s *Session) saveLocked() {
	t := s.thread
	if len(t.messages) == 0 {
		return
	}
	if t.id == "" {
		t.id = model.NewConversationID()
	}
	if t.title == "" {
		t.title = model.DeriveTitle(t.messages[0].Content)
	}

	s.store.Upsert(model.Conversation{
		ID:           t.id,
		Title:        t.title,
		UpdatedAt:    s.clk.Now(),
		MessageCount: len(t.messages),
		Messages:     model.CloneMessages(t.messages),
	})
	s.log.Debug().Str("conversation", t.id).Int("messages", len(t.messages)).Msg("saved conversation")
	s.emit(EventSaved, t.id)
}

// =============================================================================
// EXCHANGES
// =============================================================================

// Exchange is a submitted prompt whose reply is pending.
type Exchange struct {
	session   *Session
	thread    *thread
	prompt    string
	completed bool

	// UserMessage is the message appended by Submit.
	UserMessage model.Message
}

// Prompt returns the trimmed text sent to the generator.
func (e *Exchange) Prompt() string {
	return e.prompt
}

// Reply is the raw result of running an exchange.
type Reply struct {
	Text string
	Err  error

	exchange *Exchange
}

// Run calls the generator once. It does not touch session state and is meant
// to run off the owner's event loop.
func (e *Exchange) Run(ctx context.Context) Reply {
	text, err := e.session.gen.Generate(ctx, e.prompt)
	return Reply{Text: text, Err: err, exchange: e}
}

// Outcome describes how a reply was applied.
type Outcome struct {
	// Message is the assistant message that was appended.
	Message model.Message
	// Visible is true when the message was appended to the active thread.
	Visible bool
	// Err is the generation failure that produced an apology, if any.
	Err error
}

// Submit appends a user message and marks the session busy. It returns false
// and changes nothing when the trimmed text is empty or a reply is pending.
func (s *Session) Submit(text string) (*Exchange, bool) {
	prompt := strings.TrimSpace(text)

	s.lock()
	defer s.unlock()

	if prompt == "" || s.busy || s.closed {
		return nil, false
	}

	msg := model.NewMessageAt(model.RoleUser, prompt, s.clk.Now())
	s.thread.messages = append(s.thread.messages, msg)
	s.busy = true
	s.autosave.Touch()

	s.emit(EventThreadChanged, s.thread.id)
	s.emit(EventBusyChanged, s.thread.id)

	return &Exchange{
		session:     s,
		thread:      s.thread,
		prompt:      prompt,
		UserMessage: msg,
	}, true
}

// Complete appends the reply, or the apology if generation failed, and clears
// the busy flag last.
//
// The reply goes to the conversation it was asked in. If the user has since
// switched away, it is appended to that stored conversation; if that
// conversation was deleted, the reply is dropped.
func (s *Session) Complete(r Reply) Outcome {
	s.lock()
	defer s.unlock()

	ex := r.exchange
	if ex == nil || ex.session != s || ex.completed {
		return Outcome{}
	}
	ex.completed = true

	content := r.Text
	if r.Err != nil {
		s.log.Warn().Err(r.Err).Msg("generation failed")
		content = ApologyMessage
	}
	msg := model.NewMessageAt(model.RoleAssistant, content, s.clk.Now())
	out := Outcome{Message: msg, Err: r.Err}

	switch {
	case ex.thread == s.thread || (ex.thread.id != "" && ex.thread.id == s.thread.id):
		s.thread.messages = append(s.thread.messages, msg)
		s.autosave.Touch()
		s.emit(EventThreadChanged, s.thread.id)
		out.Visible = true
	default:
		s.appendToStoredLocked(ex.thread.id, msg)
	}

	s.busy = false
	s.emit(EventBusyChanged, s.thread.id)
	return out
}

func (s *Session) appendToStoredLocked(id string, msg model.Message) {
	conv, ok := s.store.Get(id)
	if id == "" || !ok {
		s.log.Info().Str("conversation", id).Msg("dropping reply for deleted conversation")
		return
	}
	conv.Messages = append(conv.Messages, msg)
	conv.MessageCount = len(conv.Messages)
	conv.UpdatedAt = s.clk.Now()
	s.store.Upsert(conv)
	s.emit(EventSaved, id)
}

// Ask submits text, waits for the reply and applies it. ok is false when the
// submission was rejected.
func (s *Session) Ask(ctx context.Context, text string) (out Outcome, ok bool) {
	ex, ok := s.Submit(text)
	if !ok {
		return Outcome{}, false
	}
	return s.Complete(ex.Run(ctx)), true
}
