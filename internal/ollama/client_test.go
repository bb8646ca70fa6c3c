// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// CLIENT TESTS
// =============================================================================

func newTestClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: url, DefaultModel: "test-model"})
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning failed against healthy server: %v", err)
	}
}

func TestCheckRunningRefused(t *testing.T) {
	// Port from a closed test server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	err := c.CheckRunning(context.Background())
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsNotRunning(err) {
		t.Errorf("expected not-running error, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3:8b","size":4661224676},{"name":"qwen2.5:7b","size":4431388404}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Name != "llama3:8b" {
		t.Errorf("first model = %q", models[0].Name)
	}
}

func TestGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		w.Write([]byte("{\"response\":\"Hi\",\"done\":false}\n"))
		flusher.Flush()
		w.Write([]byte("{\"response\":\" there\",\"done\":true,\"total_duration\":1200000000}\n"))
		flusher.Flush()
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	var got string
	var final *GenerateResponse
	err := c.GenerateStream(context.Background(), &GenerateRequest{
		Model:  "test-model",
		Prompt: "hello",
	}, func(rec GenerateResponse) {
		got += rec.Response
		if rec.Done {
			final = &rec
		}
	})
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}
	if got != "Hi there" {
		t.Errorf("accumulated = %q, want %q", got, "Hi there")
	}
	if final == nil {
		t.Fatal("never saw the final record")
	}
	if final.TotalDuration != 1200000000 {
		t.Errorf("TotalDuration = %d", final.TotalDuration)
	}
}

func TestGenerateStreamNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.GenerateStream(context.Background(), &GenerateRequest{Model: "x", Prompt: "y"}, func(GenerateResponse) {
		t.Error("callback must not run for a failed request")
	})
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestGenerateNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"complete answer","done":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	rec, err := c.Generate(context.Background(), &GenerateRequest{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rec.Response != "complete answer" {
		t.Errorf("Response = %q", rec.Response)
	}
	if !rec.Done {
		t.Error("Done should be true")
	}
}
