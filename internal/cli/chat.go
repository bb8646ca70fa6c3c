// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for elastui.
//
// Handles the "elastui chat" command: a plain-terminal conversation loop
// with the configured Ollama model, for environments where the full TUI is
// unwanted (ssh sessions, scripts, narrow terminals).
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /model [name]       Show or switch model
//   /sessions           List stored sessions
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/elastui/internal/config"
	"github.com/jeranaias/elastui/internal/model"
	"github.com/jeranaias/elastui/internal/ollama"
	"github.com/jeranaias/elastui/internal/session"
	"github.com/jeranaias/elastui/internal/storage"
	"github.com/jeranaias/elastui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatREPL provides input history and line editing for interactive chat.
type ChatREPL struct {
	line        *liner.State
	historyFile string
}

// NewChatREPL creates a REPL with input history support.
func NewChatREPL() *ChatREPL {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	r := &ChatREPL{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	r.loadHistory()
	return r
}

func (r *ChatREPL) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation.
func (r *ChatREPL) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (r *ChatREPL) Close() {
	if err := config.EnsureDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive chat loop.
func HandleChat(rawArgs []string) {
	args := NewArgParser(rawArgs)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}

	modelName := cfg.Chat.Model
	if m := args.Flag("model", "m"); m != "" {
		modelName = m
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Chat.OllamaURL,
		DefaultModel: modelName,
	})
	if err := client.CheckRunning(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Ollama is not reachable at "+cfg.Chat.OllamaURL))
		fmt.Fprintln(os.Stderr, infoStyle.Render("Start it with: ollama serve"))
		os.Exit(1)
	}

	store := openStore(cfg)
	ctrl := session.NewController(store, client)
	ctrl.SetModel(modelName)
	ctrl.SetOptions(&ollama.Options{
		Temperature: cfg.Chat.Temperature,
		NumPredict:  cfg.Chat.NumPredict,
	})

	sess := store.CreateSession("")
	if cfg.Chat.SystemPrompt != "" {
		store.AppendMessage(sess.ID, model.NewSystemMessage(cfg.Chat.SystemPrompt))
	}

	// Print only the unseen suffix of the visible text per update.
	var printed int
	ctrl.SetProgressCallback(func(visible string) {
		if len(visible) > printed {
			fmt.Print(visible[printed:])
			printed = len(visible)
		}
	})

	repl := NewChatREPL()
	defer repl.Close()

	fmt.Println(welcomeStyle.Render("elastui chat"))
	fmt.Println(infoStyle.Render("model: " + modelName + "  ·  /help for commands, /quit to exit"))
	fmt.Println()

	for {
		input, err := repl.ReadInput(promptStyle.Render("you> "))
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := handleSlashCommand(input, store, ctrl, sess.ID); quit {
				break
			}
			continue
		}

		printed = 0
		fmt.Println()
		if err := ctrl.Start(context.Background(), sess.ID, input); err != nil {
			fmt.Println(errorStyle.Render("error: " + err.Error()))
		}
		fmt.Println()
		fmt.Println()
	}
}

// handleSlashCommand processes an interactive /command. Returns true to exit.
func handleSlashCommand(input string, store *session.Store, ctrl *session.Controller, sessionID string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(infoStyle.Render(`  /clear, /c      clear conversation history
  /model [name]   show or switch model
  /sessions       list stored sessions
  /quit, /q       exit`))

	case "/clear", "/c":
		store.ClearMessages(sessionID)
		fmt.Println(infoStyle.Render("history cleared"))

	case "/model":
		if len(fields) > 1 {
			ctrl.SetModel(fields[1])
			fmt.Println(infoStyle.Render("model: " + fields[1]))
		} else {
			fmt.Println(infoStyle.Render("model: " + ctrl.Model()))
		}

	case "/sessions":
		for _, meta := range store.ListSessions() {
			marker := "  "
			if meta.ID == store.CurrentID() {
				marker = "* "
			}
			fmt.Printf("%s%s (%d messages)\n", marker, meta.Title, meta.MessageCount)
		}

	default:
		fmt.Println(infoStyle.Render("unknown command " + fields[0] + " (/help)"))
	}
	return false
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
