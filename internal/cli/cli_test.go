// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParserSubcommandAndPositionals(t *testing.T) {
	p := NewArgParser([]string{"create", "logs", "--shards", "3"})

	if p.Subcommand() != "create" {
		t.Errorf("Subcommand = %q", p.Subcommand())
	}
	if p.Positional(1) != "logs" {
		t.Errorf("Positional(1) = %q", p.Positional(1))
	}
	if p.Positional(9) != "" {
		t.Error("out-of-range positional must be empty")
	}
}

func TestArgParserFlagFormats(t *testing.T) {
	p := NewArgParser([]string{"--format=json", "--out", "report.md", "-m", "llama3", "--confirm"})

	if p.Flag("format") != "json" {
		t.Errorf("format = %q", p.Flag("format"))
	}
	if p.Flag("out", "o") != "report.md" {
		t.Errorf("out = %q", p.Flag("out", "o"))
	}
	if p.Flag("model", "m") != "llama3" {
		t.Errorf("model = %q", p.Flag("model", "m"))
	}
	if !p.BoolFlag("confirm") {
		t.Error("confirm not set")
	}
	if p.BoolFlag("json") {
		t.Error("json was never passed")
	}
}

func TestArgParserExplicitBool(t *testing.T) {
	p := NewArgParser([]string{"--json=true", "--color=false"})

	if !p.BoolFlag("json") {
		t.Error("--json=true must set the flag")
	}
	if p.BoolFlag("color") {
		t.Error("--color=false must clear the flag")
	}
}

func TestArgParserIntFlag(t *testing.T) {
	p := NewArgParser([]string{"--shards", "3", "--replicas", "many"})

	if got := p.IntFlag(1, "shards"); got != 3 {
		t.Errorf("shards = %d", got)
	}
	if got := p.IntFlag(1, "replicas"); got != 1 {
		t.Errorf("malformed int must fall back to default, got %d", got)
	}
	if got := p.IntFlag(5, "missing"); got != 5 {
		t.Errorf("missing flag must fall back to default, got %d", got)
	}
}

func TestArgParserNoArgs(t *testing.T) {
	p := NewArgParser(nil)
	if p.Subcommand() != "" {
		t.Errorf("Subcommand = %q", p.Subcommand())
	}
	if len(p.Positionals()) != 0 {
		t.Errorf("Positionals = %v", p.Positionals())
	}
}
