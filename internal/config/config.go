// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for elastui.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.elastui/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/elastui/internal/elastic"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete elastui configuration.
type Config struct {
	Chat          ChatConfig               `toml:"chat"`
	Elasticsearch elastic.ConnectionConfig `toml:"elasticsearch"`
	Storage       StorageConfig            `toml:"storage"`
	UI            UIConfig                 `toml:"ui"`
}

// ChatConfig contains the local model server configuration.
type ChatConfig struct {
	// OllamaURL is the URL of the Ollama server
	OllamaURL string `toml:"ollama_url"`
	// Model is the model used for chat assistance
	Model string `toml:"model"`
	// SystemPrompt is prepended to every new session
	SystemPrompt string `toml:"system_prompt"`
	// Temperature controls sampling randomness (0.0-2.0)
	Temperature float64 `toml:"temperature"`
	// NumPredict caps generated tokens per turn (0 = model default)
	NumPredict int `toml:"num_predict"`
}

// StorageConfig contains session persistence configuration.
type StorageConfig struct {
	// DBPath is the session database path (empty = ~/.elastui/sessions.db)
	DBPath string `toml:"db_path"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// RenderMarkdown renders finished answers through glamour
	RenderMarkdown bool `toml:"render_markdown"`
	// ShowReasoning shows model reasoning segments in the transcript
	ShowReasoning bool `toml:"show_reasoning"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			OllamaURL:    "http://127.0.0.1:11434",
			Model:        "qwen2.5:7b",
			SystemPrompt: "You are an assistant for Elasticsearch cluster administration. Be concise and precise.",
			Temperature:  0.7,
			NumPredict:   0,
		},
		Elasticsearch: elastic.DefaultConnection(),
		Storage:       StorageConfig{},
		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			ShowReasoning:  false,
			CompactMode:    false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the elastui configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".elastui"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the default file, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default TOML file.
// Credentials may live here, so the file is owner read/write only.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# elastui configuration file")
	fmt.Fprintln(file, "# Generated by elastui - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills in any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Chat.OllamaURL == "" {
		c.Chat.OllamaURL = defaults.Chat.OllamaURL
	}
	if c.Chat.Model == "" {
		c.Chat.Model = defaults.Chat.Model
	}
	if c.Chat.Temperature == 0 {
		c.Chat.Temperature = defaults.Chat.Temperature
	}

	if c.Elasticsearch.Host == "" {
		c.Elasticsearch.Host = defaults.Elasticsearch.Host
	}
	if c.Elasticsearch.Port == 0 {
		c.Elasticsearch.Port = defaults.Elasticsearch.Port
	}
	if c.Elasticsearch.Protocol == "" {
		c.Elasticsearch.Protocol = defaults.Elasticsearch.Protocol
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Chat.OllamaURL != "" {
		if _, err := url.Parse(c.Chat.OllamaURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "chat.ollama_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "chat.temperature",
			Message: fmt.Sprintf("must be between 0.0 and 2.0, got %g", c.Chat.Temperature),
		})
	}

	if c.Chat.NumPredict < 0 {
		errs = append(errs, ValidationError{
			Field:   "chat.num_predict",
			Message: "must be non-negative",
		})
	}

	if err := c.Elasticsearch.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:   "elasticsearch",
			Message: err.Error(),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
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
//   - ELASTUI_OLLAMA_URL: overrides chat.ollama_url
//   - ELASTUI_MODEL: overrides chat.model
//   - ELASTUI_ES_HOST: overrides elasticsearch.host
//   - ELASTUI_ES_PORT: overrides elasticsearch.port
//   - ELASTUI_ES_PROTOCOL: overrides elasticsearch.protocol
//   - ELASTUI_ES_USERNAME: overrides elasticsearch.username
//   - ELASTUI_ES_PASSWORD: overrides elasticsearch.password
//   - ELASTUI_DB_PATH: overrides storage.db_path
//   - ELASTUI_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ELASTUI_OLLAMA_URL"); v != "" {
		c.Chat.OllamaURL = v
	}
	if v := os.Getenv("ELASTUI_MODEL"); v != "" {
		c.Chat.Model = v
	}
	if v := os.Getenv("ELASTUI_ES_HOST"); v != "" {
		c.Elasticsearch.Host = v
	}
	if v := os.Getenv("ELASTUI_ES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Elasticsearch.Port = port
		}
	}
	if v := os.Getenv("ELASTUI_ES_PROTOCOL"); v != "" {
		c.Elasticsearch.Protocol = v
	}
	if v := os.Getenv("ELASTUI_ES_USERNAME"); v != "" {
		c.Elasticsearch.Username = v
	}
	if v := os.Getenv("ELASTUI_ES_PASSWORD"); v != "" {
		c.Elasticsearch.Password = v
	}
	if v := os.Getenv("ELASTUI_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("ELASTUI_THEME"); v != "" {
		c.UI.Theme = v
	}
}
