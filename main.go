// elastui - a terminal console for Elasticsearch administration with a
// local-LLM chat assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/elastui/internal/cli"
	"github.com/jeranaias/elastui/internal/config"
	"github.com/jeranaias/elastui/internal/elastic"
	"github.com/jeranaias/elastui/internal/model"
	"github.com/jeranaias/elastui/internal/ollama"
	"github.com/jeranaias/elastui/internal/session"
	"github.com/jeranaias/elastui/internal/storage"
	"github.com/jeranaias/elastui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdIndices:
		cli.HandleIndices(args)
	case cli.CmdSearch:
		cli.HandleSearch(args)
	case cli.CmdIndex:
		cli.HandleIndex(args)
	case cli.CmdExport:
		cli.HandleExport(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI wires the engine together and starts the Bubble Tea program.
func runTUI(rawArgs []string) {
	args := cli.NewArgParser(rawArgs)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	modelName := cfg.Chat.Model
	if m := args.Flag("model", "m"); m != "" {
		modelName = m
	}

	// Session store with SQLite write-through; memory-only on failure.
	store := openStore(cfg)

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Chat.OllamaURL,
		DefaultModel: modelName,
	})

	ctrl := session.NewController(store, client)
	ctrl.SetModel(modelName)
	ctrl.SetOptions(&ollama.Options{
		Temperature: cfg.Chat.Temperature,
		NumPredict:  cfg.Chat.NumPredict,
	})

	if cfg.Chat.SystemPrompt != "" {
		if sess := store.CurrentSession(); sess != nil && sess.MessageCount() == 0 {
			store.AppendMessage(sess.ID, model.NewSystemMessage(cfg.Chat.SystemPrompt))
		}
	}

	// The Elasticsearch side is optional in the chat view; the status bar
	// shows offline when the cluster is absent or misconfigured.
	var es *elastic.Client
	if c, err := elastic.NewClient(cfg.Elasticsearch); err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = c.Ping(ctx)
		cancel()
		es = c
	}

	// Hot-reload model and sampling settings on config edits.
	if path, err := config.Path(); err == nil {
		if w, err := config.NewWatcher(path, func(next *config.Config) {
			ctrl.SetModel(next.Chat.Model)
			ctrl.SetOptions(&ollama.Options{
				Temperature: next.Chat.Temperature,
				NumPredict:  next.Chat.NumPredict,
			})
		}); err == nil {
			if err := w.Watch(); err == nil {
				defer w.Close()
			}
		}
	}

	program := tea.NewProgram(
		chat.New(store, ctrl, es, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "elastui: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the persistent session store, falling back to memory-only
// when the database cannot be opened.
func openStore(cfg *config.Config) *session.Store {
	path := cfg.Storage.DBPath
	if path == "" {
		if p, err := storage.DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if db, err := storage.Open(path); err == nil {
			return session.NewStoreWithPersister(db)
		}
	}
	return session.NewStore()
}
