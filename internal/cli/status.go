// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Cluster and model server status for elastui CLI.
//
// Command: status
// Short:   Show connectivity and versions for the cluster and Ollama
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
	"github.com/jeranaias/elastui/internal/ollama"
	"github.com/jeranaias/elastui/internal/ui/styles"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	downStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// statusReport is the JSON shape for `elastui status --json`.
type statusReport struct {
	Elasticsearch struct {
		Reachable bool   `json:"reachable"`
		Address   string `json:"address"`
		Cluster   string `json:"cluster,omitempty"`
		Version   string `json:"version,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"elasticsearch"`
	Ollama struct {
		Reachable bool     `json:"reachable"`
		URL       string   `json:"url"`
		Models    []string `json:"models,omitempty"`
		Error     string   `json:"error,omitempty"`
	} `json:"ollama"`
}

// HandleStatus reports reachability of both external collaborators.
func HandleStatus(rawArgs []string) {
	args := NewArgParser(rawArgs)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("config: "+err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var report statusReport
	report.Elasticsearch.Address = cfg.Elasticsearch.Address()
	report.Ollama.URL = cfg.Chat.OllamaURL

	if es, err := elastic.NewClient(cfg.Elasticsearch); err != nil {
		report.Elasticsearch.Error = err.Error()
	} else if info, err := es.ClusterInfo(ctx); err != nil {
		report.Elasticsearch.Error = err.Error()
	} else {
		report.Elasticsearch.Reachable = true
		report.Elasticsearch.Cluster = info.ClusterName
		report.Elasticsearch.Version = info.Version.Number
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Chat.OllamaURL})
	if models, err := client.ListModels(ctx); err != nil {
		report.Ollama.Error = err.Error()
	} else {
		report.Ollama.Reachable = true
		for _, m := range models {
			report.Ollama.Models = append(report.Ollama.Models, m.Name)
		}
	}

	if args.BoolFlag("json") {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	printStatusLine("Elasticsearch", report.Elasticsearch.Reachable, report.Elasticsearch.Address)
	if report.Elasticsearch.Reachable {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  cluster %s, version %s",
			report.Elasticsearch.Cluster, report.Elasticsearch.Version)))
	} else if report.Elasticsearch.Error != "" {
		fmt.Println(dimStyle.Render("  " + report.Elasticsearch.Error))
	}

	printStatusLine("Ollama", report.Ollama.Reachable, report.Ollama.URL)
	if report.Ollama.Reachable {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  %d model(s) available", len(report.Ollama.Models))))
	} else if report.Ollama.Error != "" {
		fmt.Println(dimStyle.Render("  " + report.Ollama.Error))
	}

	if !report.Elasticsearch.Reachable || !report.Ollama.Reachable {
		os.Exit(1)
	}
}

func printStatusLine(name string, up bool, target string) {
	marker := okStyle.Render("●")
	state := "up"
	if !up {
		marker = downStyle.Render("●")
		state = "down"
	}
	fmt.Printf("%s %-14s %-5s %s\n", marker, name, state, dimStyle.Render(target))
}
