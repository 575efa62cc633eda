// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clock abstracts time so that delayed work can be tested without
// sleeping.
//
// # Key Types
//
//   - Clock: Source of the current time and of one-shot timers
//   - Timer: Handle to a pending callback that can be stopped
//   - Fake: Manually advanced clock that fires due timers synchronously
//
// # Usage
//
// Production code takes a Clock and uses clock.Real() by default:
//
//	t := clk.AfterFunc(time.Second, save)
//	defer t.Stop()
//
// Tests drive time explicitly:
//
//	fake := clock.NewFake(time.Unix(0, 0))
//	fake.Advance(999 * time.Millisecond) // nothing fires
//	fake.Advance(time.Millisecond)       // save runs here
package clock
