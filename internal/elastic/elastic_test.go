// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

// fakeCluster answers enough of the Elasticsearch REST surface for the
// pass-through operations. The official client verifies the product header
// on every response.
func fakeCluster(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())

	client, err := NewClient(ConnectionConfig{
		Host:     u.Hostname(),
		Port:     port,
		Protocol: "http",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// =============================================================================
// CONNECTION TESTS
// =============================================================================

func TestConnectionValidate(t *testing.T) {
	tests := []struct {
		name    string
		conn    ConnectionConfig
		wantErr bool
	}{
		{"defaults", DefaultConnection(), false},
		{"https with auth", ConnectionConfig{Host: "es.internal", Port: 9243, Protocol: "https", Username: "admin", Password: "s3cret"}, false},
		{"empty host", ConnectionConfig{Port: 9200}, true},
		{"bad port", ConnectionConfig{Host: "localhost", Port: 0}, true},
		{"bad protocol", ConnectionConfig{Host: "localhost", Port: 9200, Protocol: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectionAddress(t *testing.T) {
	conn := ConnectionConfig{Host: "localhost", Port: 9200}
	if got := conn.Address(); got != "http://localhost:9200" {
		t.Errorf("Address = %q", got)
	}
	conn.Protocol = "https"
	if got := conn.Address(); got != "https://localhost:9200" {
		t.Errorf("Address = %q", got)
	}
}

// =============================================================================
// OPERATION TESTS
// =============================================================================

func TestPing(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestPingUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()

	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	client, err := NewClient(ConnectionConfig{Host: u.Hostname(), Port: port, Protocol: "http"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Ping(context.Background()); err == nil {
		t.Error("expected error pinging closed server")
	}
}

func TestClusterInfo(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"name": "node-1",
			"cluster_name": "docs-cluster",
			"cluster_uuid": "abc123",
			"version": {"number": "8.14.0"},
			"tagline": "You Know, for Search"
		}`)
	})

	info, err := client.ClusterInfo(context.Background())
	if err != nil {
		t.Fatalf("ClusterInfo: %v", err)
	}
	if info.ClusterName != "docs-cluster" {
		t.Errorf("ClusterName = %q", info.ClusterName)
	}
	if info.Version.Number != "8.14.0" {
		t.Errorf("Version = %q", info.Version.Number)
	}
}

func TestListIndices(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/_cat/indices") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		io.WriteString(w, `[
			{"health":"green","status":"open","index":"logs-2026.08","uuid":"u1","pri":"1","rep":"1","docs.count":"120000","store.size":"340mb"},
			{"health":"yellow","status":"open","index":"metrics","uuid":"u2","pri":"3","rep":"1","docs.count":"52","store.size":"12kb"}
		]`)
	})

	indices, err := client.ListIndices(context.Background())
	if err != nil {
		t.Fatalf("ListIndices: %v", err)
	}
	if len(indices) != 2 {
		t.Fatalf("len = %d", len(indices))
	}
	if indices[0].Index != "logs-2026.08" || indices[0].DocsCount != "120000" {
		t.Errorf("first row = %+v", indices[0])
	}
	if indices[1].Health != "yellow" {
		t.Errorf("second row health = %q", indices[1].Health)
	}
}

func TestSearchPassesBodyThrough(t *testing.T) {
	query := `{"query":{"match":{"message":"error"}}}`

	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/logs/_search") {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != query {
			t.Errorf("body = %s, want verbatim query", body)
		}
		io.WriteString(w, `{"took":3,"hits":{"total":{"value":7}}}`)
	})

	raw, err := client.Search(context.Background(), "logs", query)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var result struct {
		Took int `json:"took"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if result.Took != 3 {
		t.Errorf("took = %d", result.Took)
	}
}

func TestCreateAndDeleteIndex(t *testing.T) {
	var created, deleted bool

	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/audit":
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "number_of_shards") {
				t.Errorf("create body = %s", body)
			}
			created = true
			io.WriteString(w, `{"acknowledged":true}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/audit":
			deleted = true
			io.WriteString(w, `{"acknowledged":true}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	if err := client.CreateIndex(ctx, "audit", `{"settings":{"number_of_shards":1}}`); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if err := client.DeleteIndex(ctx, "audit"); err != nil {
		t.Fatalf("DeleteIndex: %v", err)
	}
	if !created || !deleted {
		t.Errorf("created=%v deleted=%v", created, deleted)
	}
}

func TestDeleteMissingIndexReturnsRequestError(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [ghost]"}}`)
	})

	err := client.DeleteIndex(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "index_not_found_exception") {
		t.Errorf("error should carry the cluster's reason, got %v", err)
	}
}

func TestGetSettingsAndMapping(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logs/_settings":
			io.WriteString(w, `{"logs":{"settings":{"index":{"number_of_shards":"1"}}}}`)
		case "/logs/_mapping":
			io.WriteString(w, `{"logs":{"mappings":{"properties":{"message":{"type":"text"}}}}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()

	settings, err := client.GetSettings(ctx, "logs")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if !strings.Contains(string(settings), "number_of_shards") {
		t.Errorf("settings = %s", settings)
	}

	mapping, err := client.GetMapping(ctx, "logs")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if !strings.Contains(string(mapping), `"type":"text"`) {
		t.Errorf("mapping = %s", mapping)
	}
}
