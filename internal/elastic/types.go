// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package elastic is a thin pass-through surface over the official
// Elasticsearch client. It adds connection handling, request throttling and
// typed errors; query semantics live entirely on the cluster side.
package elastic

import (
	"fmt"
)

// =============================================================================
// CONNECTION
// =============================================================================

// ConnectionConfig describes how to reach a cluster.
type ConnectionConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Protocol string `toml:"protocol"` // "http" or "https"
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// DefaultConnection returns the conventional local single-node setup.
func DefaultConnection() ConnectionConfig {
	return ConnectionConfig{
		Host:     "localhost",
		Port:     9200,
		Protocol: "http",
	}
}

// Address renders the connection as a base URL.
func (c ConnectionConfig) Address() string {
	protocol := c.Protocol
	if protocol == "" {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s:%d", protocol, c.Host, c.Port)
}

// Validate checks the descriptor for obvious misconfiguration.
func (c ConnectionConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is empty", ErrBadConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrBadConfig, c.Port)
	}
	if c.Protocol != "" && c.Protocol != "http" && c.Protocol != "https" {
		return fmt.Errorf("%w: protocol %q (want http or https)", ErrBadConfig, c.Protocol)
	}
	return nil
}

// =============================================================================
// RESPONSE SHAPES
// =============================================================================

// ClusterInfo is the root endpoint response.
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number        string `json:"number"`
		BuildFlavor   string `json:"build_flavor"`
		LuceneVersion string `json:"lucene_version"`
	} `json:"version"`
	Tagline string `json:"tagline"`
}

// IndexInfo is one row of the cat indices API in JSON format. The cat API
// reports every column as a string, including counts.
type IndexInfo struct {
	Health    string `json:"health"`
	Status    string `json:"status"`
	Index     string `json:"index"`
	UUID      string `json:"uuid"`
	Primary   string `json:"pri"`
	Replicas  string `json:"rep"`
	DocsCount string `json:"docs.count"`
	StoreSize string `json:"store.size"`
}
