// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection for elastui CLI.
//
// Command: config
//   elastui config show    Print the effective configuration
//   elastui config path    Print the config file location
//   elastui config init    Write a default config file
package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/elastui/internal/config"
)

// HandleConfig routes config subcommands.
func HandleConfig(rawArgs []string) {
	args := NewArgParser(rawArgs)

	switch args.Subcommand() {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
			os.Exit(1)
		}
		// Redact before printing; credentials may be present.
		cfg.Elasticsearch.Password = redactIfSet(cfg.Elasticsearch.Password)
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}

	case "path":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		fmt.Println(path)

	case "init":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("config already exists at "+path))
			os.Exit(1)
		}
		if err := config.Save(config.Default()); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		fmt.Println(okStyle.Render("wrote ") + path)

	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("usage: elastui config [show|path|init]"))
		os.Exit(1)
	}
}

func redactIfSet(s string) string {
	if s == "" {
		return s
	}
	return "[REDACTED]"
}
