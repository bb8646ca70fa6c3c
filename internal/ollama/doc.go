// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with a local
// Ollama-compatible model server.
//
// The package implements both streaming and non-streaming generation over
// the /api/generate endpoint, plus model listing and health checks.
//
// # Key Types
//
//   - Client: HTTP client for the model server
//   - GenerateRequest: request body for /api/generate
//   - GenerateResponse: one NDJSON record of a generation stream
//   - LineDecoder: reassembles NDJSON records from arbitrary read chunks
//
// # Usage
//
// Create a client and stream a generation:
//
//	client := ollama.NewClient()
//	err := client.GenerateStream(ctx, &ollama.GenerateRequest{
//	    Model:  "qwen2.5:7b",
//	    Prompt: "why is my shard unassigned?",
//	}, func(rec ollama.GenerateResponse) {
//	    fmt.Print(rec.Response)
//	})
//
// # Streaming
//
// The server writes newline-delimited JSON, but the network hands the
// client arbitrary chunks: a record may arrive split across reads, or
// several records may arrive in one read. LineDecoder owns that
// reassembly; the client feeds it raw chunks and receives only complete,
// parsed records. Malformed lines are counted and dropped, never
// surfaced as transport errors.
package ollama
