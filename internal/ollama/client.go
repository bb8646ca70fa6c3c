// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the model server client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "model server is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsNotRunning reports whether err indicates an unreachable model server.
func IsNotRunning(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeNotRunning
}

// IsTimeout reports whether err indicates a timeout.
func IsTimeout(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeTimeout
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the model server base URL (default: http://127.0.0.1:11434)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// DefaultModel to use if none specified
	DefaultModel string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:11434",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the model server API.
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// streamClient has no overall timeout; a generation legitimately runs
	// for minutes. Cancellation happens through the request context.
	streamClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// DefaultModel returns the configured default model name.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the model server is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from model server: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// MODEL MANAGEMENT
// =============================================================================

// ListModels returns the models installed on the server.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status listing models: " + resp.Status,
		}
	}

	var list ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode model list", Cause: err}
	}

	return list.Models, nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate performs a non-streaming completion and returns the full record.
func (c *Client) Generate(ctx context.Context, genReq *GenerateRequest) (*GenerateResponse, error) {
	genReq.Stream = false

	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from generate: " + resp.Status,
		}
	}

	var rec GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &rec, nil
}

// StreamCallback is invoked once per decoded record during streaming.
type StreamCallback func(rec GenerateResponse)

// GenerateStream performs a streaming completion, invoking callback for every
// decoded record in arrival order. Blocks until the stream ends, the server
// reports done, or ctx is cancelled.
//
// Chunks are reassembled line-by-line by LineDecoder, so a record split
// across network reads is parsed exactly once.
func (c *Client) GenerateStream(ctx context.Context, genReq *GenerateRequest, callback StreamCallback) error {
	genReq.Stream = true

	body, err := json.Marshal(genReq)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from generate: " + resp.Status,
		}
	}

	decoder := NewLineDecoder()
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, rec := range decoder.Feed(buf[:n]) {
				callback(rec)
				if rec.Done {
					return nil
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				for _, rec := range decoder.Flush() {
					callback(rec)
				}
				return nil
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: readErr}
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// drainAndClose fully reads and closes a response body so the underlying
// connection can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
