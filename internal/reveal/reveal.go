// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"iter"
	"sync"
	"time"

	"github.com/jeranaias/topnotch-tui/internal/clock"
)

// DefaultInterval is the delay between two revealed characters.
const DefaultInterval = 20 * time.Millisecond

// DefaultCaret is drawn after the visible text while a reveal is running.
const DefaultCaret = "▋"

// =============================================================================
// FRAME
// =============================================================================

// Frame is the visible state of a reveal.
type Frame struct {
	Text string
	Done bool
}

// Render returns the frame text with the caret appended while the reveal is
// still running.
func (f Frame) Render(caret string) string {
	if f.Done {
		return f.Text
	}
	return f.Text + caret
}

// =============================================================================
// CURSOR
// =============================================================================

// Cursor steps through a string one rune at a time. It has no notion of time.
type Cursor struct {
	runes []rune
	pos   int
}

// NewCursor returns a cursor positioned before the first character of text.
func NewCursor(text string) *Cursor {
	return &Cursor{runes: []rune(text)}
}

// Next advances by one character and returns the new frame. The returned
// bool is false once the cursor had already reached the end.
func (c *Cursor) Next() (Frame, bool) {
	if c.pos >= len(c.runes) {
		return c.Frame(), false
	}
	c.pos++
	return c.Frame(), true
}

// Frame returns the current frame without advancing.
func (c *Cursor) Frame() Frame {
	return Frame{
		Text: string(c.runes[:c.pos]),
		Done: c.pos >= len(c.runes),
	}
}

// Done reports whether the full text is visible.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.runes)
}

// Finish jumps straight to the full text.
func (c *Cursor) Finish() Frame {
	c.pos = len(c.runes)
	return c.Frame()
}

// Prefixes yields every prefix of text, one character longer each step,
// ending with text itself. An empty text yields nothing.
func Prefixes(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		c := NewCursor(text)
		for {
			f, ok := c.Next()
			if !ok || !yield(f.Text) {
				return
			}
		}
	}
}

// =============================================================================
// REVEALER
// =============================================================================

// Revealer paces a Cursor with a clock and pushes each frame to a sink.
//
// Frames are delivered in order while the Revealer's lock is held, so the
// sink must not call back into the Revealer. No frame of a cancelled run is
// delivered after Start or Stop returns.
type Revealer struct {
	mu       sync.Mutex
	clk      clock.Clock
	interval time.Duration
	sink     func(Frame)

	gen     uint64
	timer   clock.Timer
	cursor  *Cursor
	current Frame
}

// New creates a Revealer. A non-positive interval falls back to DefaultInterval.
func New(clk clock.Clock, interval time.Duration, sink func(Frame)) *Revealer {
	if clk == nil {
		clk = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if sink == nil {
		sink = func(Frame) {}
	}
	return &Revealer{
		clk:      clk,
		interval: interval,
		sink:     sink,
		current:  Frame{Done: true},
	}
}

// Start cancels any reveal in progress and begins revealing text from the
// empty prefix. An empty text completes immediately.
func (r *Revealer) Start(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()
	r.cursor = NewCursor(text)
	r.current = r.cursor.Frame()

	if r.cursor.Done() {
		r.sink(r.current)
		return
	}
	r.scheduleLocked(r.gen)
}

// Stop cancels the current reveal, leaving the last delivered frame visible.
func (r *Revealer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

// Skip jumps the current reveal to its full text and delivers the final frame.
func (r *Revealer) Skip() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor == nil || r.current.Done {
		return
	}
	r.cancelLocked()
	r.current = r.cursor.Finish()
	r.sink(r.current)
}

// Current returns the most recently produced frame.
func (r *Revealer) Current() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Active reports whether a reveal timer is pending.
func (r *Revealer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *Revealer) cancelLocked() {
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Revealer) scheduleLocked(gen uint64) {
	r.timer = r.clk.AfterFunc(r.interval, func() { r.step(gen) })
}

func (r *Revealer) step(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A timer that was already running when its reveal was cancelled.
	if gen != r.gen {
		return
	}

	r.current, _ = r.cursor.Next()
	if r.current.Done {
		r.timer = nil
	} else {
		r.scheduleLocked(gen)
	}
	r.sink(r.current)
}
