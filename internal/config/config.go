// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/topnotch-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete topnotch configuration.
type Config struct {
	Gemini  GeminiConfig  `toml:"gemini" json:"gemini"`
	Chat    ChatConfig    `toml:"chat" json:"chat"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
	Server  ServerConfig  `toml:"server" json:"server"`
}

// GeminiConfig selects and configures the generation backend.
type GeminiConfig struct {
	// APIKey is the Gemini API key. GEMINI_API_KEY overrides it.
	APIKey string `toml:"api_key" json:"api_key"`
	// Model is the model name used in the generateContent path.
	Model string `toml:"model" json:"model"`
	// BaseURL is the API root, e.g. https://generativelanguage.googleapis.com/v1beta
	BaseURL string `toml:"base_url" json:"base_url"`
	// Backend is "rest", "sdk" or "echo".
	Backend string `toml:"backend" json:"backend"`
	// Timeout bounds one generateContent call.
	Timeout Duration `toml:"timeout" json:"timeout"`
}

// ChatConfig tunes the chat session timers.
type ChatConfig struct {
	// AutoSaveDelay is the quiet period before the active thread is saved.
	AutoSaveDelay Duration `toml:"autosave_delay" json:"autosave_delay"`
	// RevealInterval is the delay between revealed characters.
	RevealInterval Duration `toml:"reveal_interval" json:"reveal_interval"`
}

// StorageConfig selects where conversations are kept.
type StorageConfig struct {
	// Backend is "memory", "json" or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// Path is the JSON directory or SQLite file. Empty means the default
	// location under the config directory.
	Path string `toml:"path" json:"path"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "light", "dark" or "system".
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps prints the time under each message.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
}

// LogConfig configures the log file.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error, disabled.
	Level string `toml:"level" json:"level"`
	// File is the log path. Empty means ~/.topnotch/topnotch.log.
	File string `toml:"file" json:"file"`
}

// ServerConfig configures the HTTP API started by "topnotch serve".
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// AuthToken enables bearer authentication when set.
	AuthToken string `toml:"auth_token" json:"auth_token"`
}

// Duration is a time.Duration written as a Go duration string ("1s", "20ms").
type Duration struct {
	time.Duration
}

// Dur wraps d.
func Dur(d time.Duration) Duration {
	return Duration{Duration: d}
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Generation backends.
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
	BackendEcho = "echo"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Theme preferences.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

var (
	validBackends  = []string{BackendREST, BackendSDK, BackendEcho}
	validStorage   = []string{StorageMemory, StorageJSON, StorageSQLite}
	validThemes    = []string{ThemeLight, ThemeDark, ThemeSystem}
	validLogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Backend: BackendREST,
			Timeout: Dur(60 * time.Second),
		},
		Chat: ChatConfig{
			AutoSaveDelay:  Dur(time.Second),
			RevealInterval: Dur(20 * time.Millisecond),
		},
		Storage: StorageConfig{
			Backend: StorageSQLite,
		},
		UI: UIConfig{
			Theme:          ThemeSystem,
			ShowTimestamps: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the topnotch configuration directory path. TOPNOTCH_HOME
// replaces ~/.topnotch when set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("TOPNOTCH_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".topnotch"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StoragePath returns the configured storage location, or the default one for
// the selected backend. It is empty for the memory backend.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" || c.Storage.Backend == StorageMemory {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == StorageJSON {
		return filepath.Join(dir, "conversations"), nil
	}
	return filepath.Join(dir, "topnotch.db"), nil
}

// LogPath returns the configured log file or ~/.topnotch/topnotch.log.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "topnotch.log"), nil
}

// HistoryPath returns the line-editor history file used by "topnotch chat".
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files hold the API key and must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg, err := LoadFromPath(tomlPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg, err := LoadFromPath(jsonPath)
			if err == nil {
				return cfg, nil
			}
			loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Defaults, with any load error for informational purposes.
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. Booleans are left
// as decoded.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaults.Gemini.Model
	}
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = defaults.Gemini.BaseURL
	}
	if cfg.Gemini.Backend == "" {
		cfg.Gemini.Backend = defaults.Gemini.Backend
	}
	if cfg.Gemini.Timeout.Duration == 0 {
		cfg.Gemini.Timeout = defaults.Gemini.Timeout
	}

	if cfg.Chat.AutoSaveDelay.Duration == 0 {
		cfg.Chat.AutoSaveDelay = defaults.Chat.AutoSaveDelay
	}
	if cfg.Chat.RevealInterval.Duration == 0 {
		cfg.Chat.RevealInterval = defaults.Chat.RevealInterval
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Config files are written 0600 (owner read/write only).
// RELIABILITY: Atomic write so a watcher never reads a half-written file.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# topnotch configuration file")
	fmt.Fprintln(&buf, "# Generated by topnotch - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UpdateFile loads the TOML file at path without environment overrides,
// applies mutate, validates and saves it back. A missing file starts from
// defaults. Secrets supplied through the environment never reach the file.
func UpdateFile(path string, mutate func(*Config) error) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := mutate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := SaveTOML(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	oneOf := func(field, value string, allowed []string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be one of %s (got %q)", strings.Join(allowed, ", "), value),
		})
	}

	oneOf("gemini.backend", c.Gemini.Backend, validBackends)
	oneOf("storage.backend", c.Storage.Backend, validStorage)
	oneOf("ui.theme", c.UI.Theme, validThemes)
	oneOf("log.level", strings.ToLower(c.Log.Level), validLogLevels)

	if strings.TrimSpace(c.Gemini.Model) == "" {
		errs = append(errs, ValidationError{Field: "gemini.model", Message: "must not be empty"})
	} else if strings.ContainsAny(c.Gemini.Model, "/?#: ") {
		// The model name is a path segment of the request URL.
		errs = append(errs, ValidationError{Field: "gemini.model", Message: "must be a bare model name"})
	}

	if u, err := url.Parse(c.Gemini.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, ValidationError{Field: "gemini.base_url", Message: "must be an absolute URL"})
	} else if u.Scheme != "https" && u.Scheme != "http" {
		errs = append(errs, ValidationError{Field: "gemini.base_url", Message: "scheme must be http or https"})
	}

	if c.Gemini.Timeout.Duration < 0 {
		errs = append(errs, ValidationError{Field: "gemini.timeout", Message: "must not be negative"})
	}
	if c.Chat.AutoSaveDelay.Duration <= 0 {
		errs = append(errs, ValidationError{Field: "chat.autosave_delay", Message: "must be positive"})
	}
	if c.Chat.RevealInterval.Duration <= 0 {
		errs = append(errs, ValidationError{Field: "chat.reveal_interval", Message: "must be positive"})
	}

	if c.Server.Addr != "" {
		if _, port, err := net.SplitHostPort(c.Server.Addr); err != nil {
			errs = append(errs, ValidationError{Field: "server.addr", Message: err.Error()})
		} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			errs = append(errs, ValidationError{Field: "server.addr", Message: "invalid port " + port})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - GEMINI_API_KEY, TOPNOTCH_API_KEY: override gemini.api_key (the latter wins)
//   - TOPNOTCH_MODEL: overrides gemini.model
//   - TOPNOTCH_BACKEND: overrides gemini.backend
//   - TOPNOTCH_BASE_URL: overrides gemini.base_url
//   - TOPNOTCH_STORAGE: overrides storage.backend
//   - TOPNOTCH_THEME: overrides ui.theme
//   - TOPNOTCH_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("TOPNOTCH_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("TOPNOTCH_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if backend := os.Getenv("TOPNOTCH_BACKEND"); backend != "" {
		c.Gemini.Backend = strings.ToLower(backend)
	}
	if base := os.Getenv("TOPNOTCH_BASE_URL"); base != "" {
		c.Gemini.BaseURL = base
	}
	if storage := os.Getenv("TOPNOTCH_STORAGE"); storage != "" {
		c.Storage.Backend = strings.ToLower(storage)
	}
	if theme := os.Getenv("TOPNOTCH_THEME"); theme != "" {
		c.UI.Theme = strings.ToLower(theme)
	}
	if level := os.Getenv("TOPNOTCH_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if d, ok := field.Interface().(Duration); ok {
		return d.Duration, nil
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct || field.Type() == durationType {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

var durationType = reflect.TypeOf(Duration{})

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if field.Type() == durationType {
		switch v := value.(type) {
		case time.Duration:
			field.Set(reflect.ValueOf(Dur(v)))
			return nil
		case string:
			var d Duration
			if err := d.UnmarshalText([]byte(v)); err != nil {
				return err
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}
	}

	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"gemini.api_key",
		"gemini.model",
		"gemini.base_url",
		"gemini.backend",
		"gemini.timeout",
		"chat.autosave_delay",
		"chat.reveal_interval",
		"storage.backend",
		"storage.path",
		"ui.theme",
		"ui.show_timestamps",
		"log.level",
		"log.file",
		"server.addr",
		"server.auth_token",
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
// SECURITY: API key and server token are redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Gemini.APIKey != "" {
		safe.Gemini.APIKey = "[REDACTED]"
	}
	if safe.Server.AuthToken != "" {
		safe.Server.AuthToken = "[REDACTED]"
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
