// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for topnotch.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - GeminiConfig: Generation backend, model and credentials
//   - ChatConfig: Auto-save and reveal timing
//   - StorageConfig: Conversation storage backend
//   - Watcher: Reloads the config file when it changes on disk
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TOPNOTCH_*, GEMINI_API_KEY)
//   - ~/.topnotch/config.toml
//   - ~/.topnotch/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Watch for edits:
//
//	w, err := config.NewWatcher(path, 0, func(cfg *config.Config, err error) {
//	    // apply cfg.UI.Theme
//	})
//	defer w.Close()
package config
