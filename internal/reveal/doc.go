// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal implements the typewriter effect used for assistant replies.
//
// A reply is fetched in full, then disclosed one character at a time at a
// fixed pace so it reads like live typing. A caret trails the text until the
// last character is shown.
//
// # Key Types
//
//   - Frame: One step of a reveal (visible prefix and whether it is complete)
//   - Cursor: Pure stepper over a string, one rune per Next call
//   - Revealer: Clock-driven, restartable reveal that pushes frames to a sink
//
// # Usage
//
// Pull prefixes directly:
//
//	for p := range reveal.Prefixes("hi") {
//	    fmt.Println(p) // "h", then "hi"
//	}
//
// Drive a reveal in real time:
//
//	r := reveal.New(clock.Real(), reveal.DefaultInterval, func(f reveal.Frame) {
//	    fmt.Print("\r" + f.Render("▋"))
//	})
//	r.Start(reply)
//	defer r.Stop()
package reveal
