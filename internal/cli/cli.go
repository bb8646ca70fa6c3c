// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for elastui.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdStatus
	CmdIndices
	CmdSearch
	CmdIndex
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

const usageText = `elastui - terminal console for Elasticsearch administration

A terminal UI for inspecting and administering Elasticsearch clusters,
with a chat assistant backed by a locally-running Ollama model.

Usage:
  elastui                        Start TUI (default)
  elastui chat                   Interactive chat REPL (plain terminal)
  elastui status, s              Cluster status and connectivity
  elastui indices, ls            List indices
  elastui search INDEX QUERY     Run a query body against an index
  elastui index SUBCOMMAND       Index admin (create, delete, settings, mapping)
  elastui export [--format md]   Export the current session
  elastui config [show|path]     Configuration
  elastui version                Print version
  elastui help                   Show this help

Flags:
  -m, --model NAME    Use a specific chat model
  --json              Machine-readable output where supported

Environment:
  ELASTUI_ES_HOST, ELASTUI_ES_PORT, ELASTUI_ES_USERNAME, ELASTUI_ES_PASSWORD
  ELASTUI_OLLAMA_URL, ELASTUI_MODEL, ELASTUI_DB_PATH, ELASTUI_THEME
`

// Parse parses os.Args into a command and its remaining arguments.
func Parse() (Command, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return CmdTUI, nil
	}

	switch args[0] {
	case "chat":
		return CmdChat, args[1:]
	case "status", "s":
		return CmdStatus, args[1:]
	case "indices", "ls":
		return CmdIndices, args[1:]
	case "search":
		return CmdSearch, args[1:]
	case "index":
		return CmdIndex, args[1:]
	case "export":
		return CmdExport, args[1:]
	case "config":
		return CmdConfig, args[1:]
	case "version", "-v", "--version":
		return CmdVersion, args[1:]
	case "help", "-h", "--help":
		return CmdHelp, args[1:]
	default:
		// Unknown tokens fall through to the TUI with a warning, the way
		// a bare `elastui` does.
		fmt.Fprintf(os.Stderr, "unknown command %q (see 'elastui help')\n", args[0])
		return CmdHelp, nil
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes the version line to stdout.
func PrintVersion() {
	fmt.Printf("elastui %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
