// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[chat]
ollama_url = "http://10.0.0.5:11434"
model = "llama3:8b"
temperature = 0.2

[elasticsearch]
host = "es.internal"
port = 9243
protocol = "https"
username = "admin"

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Chat.Model != "llama3:8b" {
		t.Errorf("Model = %q", cfg.Chat.Model)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Errorf("Temperature = %g", cfg.Chat.Temperature)
	}
	if cfg.Elasticsearch.Host != "es.internal" || cfg.Elasticsearch.Port != 9243 {
		t.Errorf("Elasticsearch = %+v", cfg.Elasticsearch)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Chat.OllamaURL != "http://10.0.0.5:11434" {
		t.Errorf("OllamaURL = %q", cfg.Chat.OllamaURL)
	}
	if cfg.Chat.SystemPrompt == "" {
		t.Error("SystemPrompt default was lost")
	}
}

func TestLoadFromPathRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad theme", "[ui]\ntheme = \"neon\"\n"},
		{"bad temperature", "[chat]\ntemperature = 3.5\n"},
		{"bad port", "[elasticsearch]\nhost = \"localhost\"\nport = 99999\n"},
		{"bad protocol", "[elasticsearch]\nhost = \"localhost\"\nport = 9200\nprotocol = \"gopher\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromPath(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ELASTUI_MODEL", "deepseek-r1:8b")
	t.Setenv("ELASTUI_ES_HOST", "override.local")
	t.Setenv("ELASTUI_ES_PORT", "9201")
	t.Setenv("ELASTUI_THEME", "auto")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Chat.Model != "deepseek-r1:8b" {
		t.Errorf("Model = %q", cfg.Chat.Model)
	}
	if cfg.Elasticsearch.Host != "override.local" {
		t.Errorf("Host = %q", cfg.Elasticsearch.Host)
	}
	if cfg.Elasticsearch.Port != 9201 {
		t.Errorf("Port = %d", cfg.Elasticsearch.Port)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestEnvOverrideIgnoresBadPort(t *testing.T) {
	t.Setenv("ELASTUI_ES_PORT", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Elasticsearch.Port != 9200 {
		t.Errorf("Port = %d, bad env value must be ignored", cfg.Elasticsearch.Port)
	}
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Chat.Model = "saved-model"
	cfg.Elasticsearch.Host = "saved-host"

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Chat.Model != "saved-model" || loaded.Elasticsearch.Host != "saved-host" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	updated := Default()
	updated.Chat.Model = "hot-reloaded"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Chat.Model != "hot-reloaded" {
			t.Errorf("Model = %q", cfg.Chat.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcherIgnoresInvalidRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	// Broken TOML must not reach the callback.
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"neon"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		t.Errorf("invalid config was delivered: %+v", cfg)
	case <-time.After(1 * time.Second):
	}
}
