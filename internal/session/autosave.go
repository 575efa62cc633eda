// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/jeranaias/topnotch-tui/internal/clock"
)

// DefaultAutoSaveDelay is the quiet period after the last thread change
// before the thread is saved.
const DefaultAutoSaveDelay = 1000 * time.Millisecond

// =============================================================================
// AUTO SAVER
// =============================================================================

// AutoSaver is a debounce timer. At most one timer is pending; Touch replaces
// it. When a timer elapses, fire is called with the timer's generation and the
// owner must Claim that generation before saving, which discards callbacks of
// timers that were replaced or cancelled after they started running.
//
// AutoSaver is not safe for concurrent use; its owner serializes access.
type AutoSaver struct {
	clk   clock.Clock
	delay time.Duration
	fire  func(gen uint64)

	gen   uint64
	timer clock.Timer
}

// NewAutoSaver creates an idle AutoSaver. A non-positive delay falls back to
// DefaultAutoSaveDelay.
func NewAutoSaver(clk clock.Clock, delay time.Duration, fire func(gen uint64)) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{clk: clk, delay: delay, fire: fire}
}

// Touch (re)starts the quiet period.
func (a *AutoSaver) Touch() {
	a.Cancel()
	gen := a.gen
	a.timer = a.clk.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Cancel drops the pending timer, if any.
func (a *AutoSaver) Cancel() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Pending reports whether a save is scheduled.
func (a *AutoSaver) Pending() bool {
	return a.timer != nil
}

// Claim reports whether gen belongs to the timer that is currently pending,
// and if so marks it consumed.
func (a *AutoSaver) Claim(gen uint64) bool {
	if a.timer == nil || gen != a.gen {
		return false
	}
	a.timer = nil
	a.gen++
	return true
}

// Delay returns the quiet period.
func (a *AutoSaver) Delay() time.Duration {
	return a.delay
}
