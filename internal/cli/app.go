// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/topnotch-tui/internal/config"
	"github.com/jeranaias/topnotch-tui/internal/gemini"
	"github.com/jeranaias/topnotch-tui/internal/logging"
	"github.com/jeranaias/topnotch-tui/internal/session"
	"github.com/jeranaias/topnotch-tui/internal/storage"
)

// =============================================================================
// CONFIG LOADING
// =============================================================================

// loadConfig reads the config selected by --config, or the default location,
// and applies the global flag overrides. It returns the path theme changes
// are saved to.
func (g *globalFlags) loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path = g.configPath
		warn error
		err  error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return nil, "", err
		}
	} else {
		cfg, warn = config.Load()
		if cfg == nil {
			return nil, "", warn
		}
		if path, err = config.ConfigPathTOML(); err != nil {
			path = ""
		}
	}

	if g.backend != "" {
		cfg.Gemini.Backend = strings.ToLower(g.backend)
	}
	if g.storage != "" {
		cfg.Storage.Backend = strings.ToLower(g.storage)
	}
	if g.model != "" {
		cfg.Gemini.Model = g.model
	}
	if g.logLevel != "" {
		cfg.Log.Level = strings.ToLower(g.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, warn
}

// =============================================================================
// APPLICATION STACK
// =============================================================================

// app is the stack shared by the session commands.
type app struct {
	cfg     *config.Config
	cfgPath string
	log     zerolog.Logger

	// genErr is why the configured generator could not be built, if it
	// could not. The session then answers every prompt with the apology.
	genErr error

	store   storage.StoreCloser
	sess    *session.Session
	closers []io.Closer
}

// openApp bootstraps config, logging, storage, generator and session.
// console receives human-readable log lines; nil keeps logs in the file only.
func openApp(ctx context.Context, g *globalFlags, console io.Writer) (*app, error) {
	cfg, cfgPath, warn := g.loadConfig()
	if cfg == nil {
		return nil, warn
	}

	logOpts, err := logging.FromConfig(cfg, console)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, cfgPath: cfgPath, log: logger, closers: []io.Closer{logCloser}}
	if warn != nil {
		logger.Warn().Err(warn).Msg("using default config")
	}

	storePath, err := cfg.StoragePath()
	if err != nil {
		a.Close()
		return nil, err
	}
	store, err := storage.Open(ctx, storage.Options{Backend: cfg.Storage.Backend, Path: storePath}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	a.store = store

	gen, err := gemini.New(ctx, gemini.Options{
		Backend: cfg.Gemini.Backend,
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout.Duration,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Gemini.Backend).Msg("generator unavailable")
		a.genErr = err
		gen = gemini.Unavailable(cfg.Gemini.Backend, err)
	}

	a.sess = session.New(session.Options{
		Store:         store,
		Generator:     gen,
		AutoSaveDelay: cfg.Chat.AutoSaveDelay.Duration,
		Logger:        logger,
	})
	return a, nil
}

// Close flushes the session and releases storage and the log file.
func (a *app) Close() {
	if a.sess != nil {
		a.sess.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing storage")
		}
	}
	for _, c := range a.closers {
		c.Close()
	}
}
