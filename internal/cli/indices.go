// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// indices.go - Index listing and administration for elastui CLI.
//
// Commands:
//   elastui indices [--json]
//   elastui search INDEX QUERY_JSON
//   elastui index create NAME [--body JSON]
//   elastui index delete NAME [--confirm]
//   elastui index settings NAME
//   elastui index mapping NAME
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/elastui/internal/config"
	"github.com/jeranaias/elastui/internal/elastic"
	"github.com/jeranaias/elastui/internal/ui/styles"
)

// connect loads config and builds the Elasticsearch client, exiting on
// misconfiguration.
func connect() *elastic.Client {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}
	es, err := elastic.NewClient(cfg.Elasticsearch)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
	return es
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// =============================================================================
// INDICES
// =============================================================================

// HandleIndices lists indices as a table or JSON.
func HandleIndices(rawArgs []string) {
	args := NewArgParser(rawArgs)
	es := connect()

	ctx, cancel := opCtx()
	defer cancel()

	indices, err := es.ListIndices(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	if args.BoolFlag("json") {
		data, _ := json.MarshalIndent(indices, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(indices) == 0 {
		fmt.Println(dimStyle.Render("no indices"))
		return
	}

	fmt.Printf("%-8s %-8s %-32s %5s %5s %12s %10s\n",
		"HEALTH", "STATUS", "INDEX", "PRI", "REP", "DOCS", "SIZE")
	for _, idx := range indices {
		health := lipgloss.NewStyle().
			Foreground(styles.HealthColor(idx.Health)).
			Render(fmt.Sprintf("%-8s", idx.Health))
		fmt.Printf("%s %-8s %-32s %5s %5s %12s %10s\n",
			health, idx.Status, idx.Index, idx.Primary, idx.Replicas,
			idx.DocsCount, idx.StoreSize)
	}
}

// =============================================================================
// SEARCH
// =============================================================================

// HandleSearch runs a query body against an index and prints the raw result.
func HandleSearch(rawArgs []string) {
	args := NewArgParser(rawArgs)
	index := args.Positional(0)
	query := args.Positional(1)
	if index == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("usage: elastui search INDEX [QUERY_JSON]"))
		os.Exit(1)
	}
	if query == "" {
		query = `{"query":{"match_all":{}}}`
	}

	es := connect()
	ctx, cancel := opCtx()
	defer cancel()

	raw, err := es.Search(ctx, index, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
	printJSON(raw)
}

// =============================================================================
// INDEX ADMIN
// =============================================================================

// HandleIndex routes index administration subcommands.
func HandleIndex(rawArgs []string) {
	args := NewArgParser(rawArgs)
	name := args.Positional(1)

	switch args.Subcommand() {
	case "create":
		requireName(name)
		es := connect()
		ctx, cancel := opCtx()
		defer cancel()
		if err := es.CreateIndex(ctx, name, args.Flag("body")); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		fmt.Println(okStyle.Render("created ") + name)

	case "delete":
		requireName(name)
		if !args.BoolFlag("confirm", "y") {
			fmt.Fprintln(os.Stderr, errorStyle.Render("refusing to delete without --confirm"))
			os.Exit(1)
		}
		es := connect()
		ctx, cancel := opCtx()
		defer cancel()
		if err := es.DeleteIndex(ctx, name); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		fmt.Println(okStyle.Render("deleted ") + name)

	case "settings":
		requireName(name)
		es := connect()
		ctx, cancel := opCtx()
		defer cancel()
		raw, err := es.GetSettings(ctx, name)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		printJSON(raw)

	case "mapping":
		requireName(name)
		es := connect()
		ctx, cancel := opCtx()
		defer cancel()
		raw, err := es.GetMapping(ctx, name)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		printJSON(raw)

	default:
		fmt.Fprintln(os.Stderr, errorStyle.Render("usage: elastui index [create|delete|settings|mapping] NAME"))
		os.Exit(1)
	}
}

func requireName(name string) {
	if name == "" {
		fmt.Fprintln(os.Stderr, errorStyle.Render("index name required"))
		os.Exit(1)
	}
}

// printJSON re-indents raw JSON for the terminal, falling back to verbatim
// output when it does not parse.
func printJSON(raw json.RawMessage) {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		fmt.Println(string(raw))
		return
	}
	data, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(string(data))
}
