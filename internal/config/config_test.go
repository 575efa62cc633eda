// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the config directory at a temp dir and clears the
// environment overrides for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TOPNOTCH_HOME", dir)
	for _, key := range []string{
		"GEMINI_API_KEY", "TOPNOTCH_API_KEY", "TOPNOTCH_MODEL", "TOPNOTCH_BACKEND",
		"TOPNOTCH_BASE_URL", "TOPNOTCH_STORAGE", "TOPNOTCH_THEME", "TOPNOTCH_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

// TestConfig_Default tests that Default() returns a valid config.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Chat.AutoSaveDelay.Duration != time.Second {
		t.Errorf("Expected autosave delay 1s, got %v", cfg.Chat.AutoSaveDelay)
	}
	if cfg.Chat.RevealInterval.Duration != 20*time.Millisecond {
		t.Errorf("Expected reveal interval 20ms, got %v", cfg.Chat.RevealInterval)
	}
	if cfg.UI.Theme != ThemeSystem {
		t.Errorf("Expected theme 'system', got '%s'", cfg.UI.Theme)
	}
	if cfg.Gemini.Backend != BackendREST {
		t.Errorf("Expected backend 'rest', got '%s'", cfg.Gemini.Backend)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid default config", mutate: func(c *Config) {}},
		{name: "invalid backend", mutate: func(c *Config) { c.Gemini.Backend = "openai" }, wantErr: "gemini.backend"},
		{name: "invalid storage", mutate: func(c *Config) { c.Storage.Backend = "redis" }, wantErr: "storage.backend"},
		{name: "invalid theme", mutate: func(c *Config) { c.UI.Theme = "sepia" }, wantErr: "ui.theme"},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "empty model", mutate: func(c *Config) { c.Gemini.Model = " " }, wantErr: "gemini.model"},
		{name: "model with path", mutate: func(c *Config) { c.Gemini.Model = "../admin" }, wantErr: "gemini.model"},
		{name: "relative base url", mutate: func(c *Config) { c.Gemini.BaseURL = "v1beta" }, wantErr: "gemini.base_url"},
		{name: "ftp base url", mutate: func(c *Config) { c.Gemini.BaseURL = "ftp://example.com" }, wantErr: "gemini.base_url"},
		{name: "zero autosave", mutate: func(c *Config) { c.Chat.AutoSaveDelay = Dur(0) }, wantErr: "chat.autosave_delay"},
		{name: "zero reveal", mutate: func(c *Config) { c.Chat.RevealInterval = Dur(0) }, wantErr: "chat.reveal_interval"},
		{name: "bad server addr", mutate: func(c *Config) { c.Server.Addr = "localhost" }, wantErr: "server.addr"},
		{name: "bad server port", mutate: func(c *Config) { c.Server.Addr = ":99999" }, wantErr: "server.addr"},
		{name: "empty server addr", mutate: func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error = %v, want ValidateErrors", err)
			}
			if verrs[0].Field != tt.wantErr {
				t.Errorf("Validate() field = %s, want %s", verrs[0].Field, tt.wantErr)
			}
		})
	}
}

// TestConfig_SaveLoadRoundTrip writes a config with SaveTOML and loads it back.
func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Gemini.APIKey = "secret"
	cfg.UI.Theme = ThemeDark
	cfg.UI.ShowTimestamps = false
	cfg.Chat.AutoSaveDelay = Dur(2500 * time.Millisecond)
	cfg.Storage.Backend = StorageJSON

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Gemini.APIKey != "secret" {
		t.Errorf("api key = %q", loaded.Gemini.APIKey)
	}
	if loaded.UI.Theme != ThemeDark || loaded.UI.ShowTimestamps {
		t.Errorf("ui = %+v", loaded.UI)
	}
	if loaded.Chat.AutoSaveDelay.Duration != 2500*time.Millisecond {
		t.Errorf("autosave delay = %v", loaded.Chat.AutoSaveDelay)
	}
	if loaded.Storage.Backend != StorageJSON {
		t.Errorf("storage backend = %q", loaded.Storage.Backend)
	}
}

// TestConfig_PartialFileGetsDefaults checks that omitted keys fall back to defaults.
func TestConfig_PartialFileGetsDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	content := "[ui]\ntheme = \"light\"\n\n[chat]\nreveal_interval = \"5ms\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.UI.Theme != ThemeLight {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Chat.RevealInterval.Duration != 5*time.Millisecond {
		t.Errorf("reveal interval = %v", cfg.Chat.RevealInterval)
	}
	if cfg.Gemini.Model != Default().Gemini.Model {
		t.Errorf("model = %q, want default", cfg.Gemini.Model)
	}

	// SECURITY: loading tightens permissions.
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %o, want 600", info.Mode().Perm())
	}
}

// TestConfig_LoadInvalidFileFallsBack returns defaults alongside the error.
func TestConfig_LoadInvalidFileFallsBack(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui\ntheme="), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() should report the broken file")
	}
	if cfg == nil || cfg.UI.Theme != ThemeSystem {
		t.Fatalf("Load() should return defaults, got %+v", cfg)
	}
}

// TestConfig_LoadJSONFallback loads config.json when there is no config.toml.
func TestConfig_LoadJSONFallback(t *testing.T) {
	dir := isolate(t)
	content := `{"gemini": {"backend": "echo", "timeout": "5s"}, "storage": {"backend": "memory"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gemini.Backend != BackendEcho || cfg.Gemini.Timeout.Duration != 5*time.Second {
		t.Errorf("gemini = %+v", cfg.Gemini)
	}
	if cfg.Storage.Backend != StorageMemory {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

// TestConfig_EnvOverrides tests environment variable precedence.
func TestConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "from-gemini")
	t.Setenv("TOPNOTCH_MODEL", "gemini-1.5-pro")
	t.Setenv("TOPNOTCH_THEME", "DARK")
	t.Setenv("TOPNOTCH_STORAGE", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gemini.APIKey != "from-gemini" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
	if cfg.UI.Theme != ThemeDark {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Storage.Backend != StorageJSON {
		t.Errorf("storage = %q", cfg.Storage.Backend)
	}

	t.Setenv("TOPNOTCH_API_KEY", "from-topnotch")
	cfg.ApplyEnvOverrides()
	if cfg.Gemini.APIKey != "from-topnotch" {
		t.Errorf("TOPNOTCH_API_KEY should win, got %q", cfg.Gemini.APIKey)
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != ThemeSystem {
		t.Errorf("Get('ui.theme') = %v, want 'system'", val)
	}

	if err := cfg.Set("ui.show_timestamps", "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.UI.ShowTimestamps {
		t.Error("ShowTimestamps should be false after Set")
	}

	if err := cfg.Set("chat.autosave_delay", "3s"); err != nil {
		t.Fatalf("Set() duration error = %v", err)
	}
	val, _ = cfg.Get("chat.autosave_delay")
	if val != 3*time.Second {
		t.Errorf("Get('chat.autosave_delay') = %v, want 3s", val)
	}

	if err := cfg.Set("chat.autosave_delay", "soon"); err == nil {
		t.Error("Set() with a bad duration should fail")
	}
	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if _, err := cfg.Get("chat.autosave_delay.duration"); err == nil {
		t.Error("Get() should not descend into a duration")
	}
}

// TestConfig_GetAllKeysResolve makes sure every listed key is gettable.
func TestConfig_GetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

// TestConfig_StringRedactsSecrets ensures secrets never reach debug output.
func TestConfig_StringRedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "AIza-very-secret"
	cfg.Server.AuthToken = "tok-secret"

	out := cfg.String()
	if strings.Contains(out, "very-secret") || strings.Contains(out, "tok-secret") {
		t.Errorf("String() leaked a secret:\n%s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Error("String() should mark redacted fields")
	}
	if cfg.Gemini.APIKey != "AIza-very-secret" {
		t.Error("String() must not modify the config")
	}
}

// TestConfig_StoragePath tests default storage locations.
func TestConfig_StoragePath(t *testing.T) {
	dir := isolate(t)
	cfg := Default()

	path, err := cfg.StoragePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "topnotch.db") {
		t.Errorf("sqlite path = %q", path)
	}

	cfg.Storage.Backend = StorageJSON
	path, _ = cfg.StoragePath()
	if path != filepath.Join(dir, "conversations") {
		t.Errorf("json path = %q", path)
	}

	cfg.Storage.Backend = StorageMemory
	path, _ = cfg.StoragePath()
	if path != "" {
		t.Errorf("memory path = %q, want empty", path)
	}
}

// TestUpdateFile tests that updates keep file values and never persist
// environment secrets.
func TestUpdateFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")

	cfg, err := UpdateFile(path, func(c *Config) error {
		c.Gemini.Model = "gemini-1.5-pro"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateFile() on missing file error = %v", err)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", cfg.Gemini.Model)
	}

	t.Setenv("TOPNOTCH_API_KEY", "from-env")
	cfg, err = UpdateFile(path, func(c *Config) error {
		c.UI.Theme = ThemeDark
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateFile() error = %v", err)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q, want value kept from file", cfg.Gemini.Model)
	}
	if cfg.Gemini.APIKey != "" {
		t.Errorf("APIKey = %q, environment must not be persisted", cfg.Gemini.APIKey)
	}
	if !cfg.UI.ShowTimestamps {
		t.Error("ShowTimestamps default lost")
	}

	if _, err := UpdateFile(path, func(c *Config) error {
		c.UI.Theme = "neon"
		return nil
	}); err == nil {
		t.Error("UpdateFile() accepted an invalid theme")
	}
	saved := Default()
	if err := LoadTOML(saved, path); err != nil {
		t.Fatal(err)
	}
	if saved.UI.Theme != ThemeDark {
		t.Errorf("invalid update was saved: theme = %q", saved.UI.Theme)
	}
}

// TestLoadFromPath_IndependentInstances tests that every load returns its own
// Config, so a command changing its copy never affects another.
func TestLoadFromPath_IndependentInstances(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	a, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	b, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if a == b {
		t.Fatal("LoadFromPath() returned a shared instance")
	}

	a.Gemini.Model = "changed"
	if b.Gemini.Model == "changed" {
		t.Error("change to one loaded config leaked into another")
	}
}
