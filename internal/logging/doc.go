// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger shared by every component.
//
// The terminal UI owns stdout, so by default logs go to a rotating file under
// ~/.topnotch. Commands that keep the terminal free can add a console writer.
//
// # Usage
//
//	opts, _ := logging.FromConfig(cfg, nil)
//	logger, closer, err := logging.New(opts)
//	defer closer.Close()
package logging
