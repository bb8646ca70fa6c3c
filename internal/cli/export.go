// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - Session export for elastui CLI.
//
// Command: export
//   elastui export                      Export current session as Markdown
//   elastui export --format json       Export as JSON
//   elastui export --out FILE          Write to a specific path
//   elastui export --session ID        Export a specific session
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/elastui/internal/config"
	"github.com/jeranaias/elastui/internal/model"
	"github.com/jeranaias/elastui/internal/storage"
)

// HandleExport writes a stored session to disk.
func HandleExport(rawArgs []string) {
	args := NewArgParser(rawArgs)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}

	store := openStore(cfg)

	var sess *model.Session
	if id := args.Flag("session"); id != "" {
		sess = store.GetSession(id)
	} else {
		sess = store.CurrentSession()
	}
	if sess == nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("no session to export"))
		os.Exit(1)
	}

	format := args.Flag("format", "f")
	if format == "" {
		format = "md"
	}

	out := args.Flag("out", "o")
	if out == "" {
		out = fmt.Sprintf("elastui-session-%s.%s", time.Now().Format("20060102-150405"), format)
	}

	switch format {
	case "md", "markdown":
		err = storage.WriteMarkdown(sess, out)
	case "json":
		err = storage.WriteJSON(sess, out)
	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("unknown format "+format+" (md or json)"))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("export: "+err.Error()))
		os.Exit(1)
	}

	fmt.Println(okStyle.Render("exported ") + out)
}
