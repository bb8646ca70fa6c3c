// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBadConfig indicates an invalid connection descriptor.
	ErrBadConfig = errors.New("invalid elasticsearch configuration")

	// ErrUnavailable indicates the cluster could not be reached at all.
	ErrUnavailable = errors.New("elasticsearch is not reachable")

	// ErrRequestFailed indicates the cluster answered with an error status.
	ErrRequestFailed = errors.New("elasticsearch request failed")
)

// statusError wraps a non-2xx response into ErrRequestFailed with a body
// excerpt, which for Elasticsearch usually carries the actual reason.
func statusError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	excerpt := strings.TrimSpace(string(body))
	if excerpt == "" {
		excerpt = res.Status()
	}
	return fmt.Errorf("%w: %s: %s", ErrRequestFailed, op, excerpt)
}

// =============================================================================
// CLIENT
// =============================================================================

const (
	// defaultRate throttles pass-through calls so background polling from
	// the UI cannot hammer a cluster.
	defaultRate  = rate.Limit(5)
	defaultBurst = 5
)

// Client wraps the official Elasticsearch client with throttling and typed
// errors. All operations are verbatim pass-throughs; bodies are forwarded
// and returned as raw JSON.
type Client struct {
	es      *elasticsearch.Client
	limiter *rate.Limiter
	addr    string
}

// NewClient builds a throttled client for the given connection.
func NewClient(conn ConnectionConfig) (*Client, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{conn.Address()},
		Username:  conn.Username,
		Password:  conn.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}

	return &Client{
		es:      es,
		limiter: rate.NewLimiter(defaultRate, defaultBurst),
		addr:    conn.Address(),
	}, nil
}

// Address returns the base URL this client talks to.
func (c *Client) Address() string {
	return c.addr
}

// wait applies the rate limit, honoring context cancellation.
func (c *Client) wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// =============================================================================
// CLUSTER OPERATIONS
// =============================================================================

// Ping reports whether the cluster answers at all.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return statusError("ping", res)
	}
	return nil
}

// ClusterInfo fetches the root endpoint (name, version, cluster uuid).
func (c *Client) ClusterInfo(ctx context.Context) (*ClusterInfo, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, statusError("cluster info", res)
	}

	var info ClusterInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: cluster info: %v", ErrRequestFailed, err)
	}
	return &info, nil
}

// ListIndices returns one row per index via the cat API.
func (c *Client) ListIndices(ctx context.Context) ([]IndexInfo, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.es.Cat.Indices(
		c.es.Cat.Indices.WithContext(ctx),
		c.es.Cat.Indices.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, statusError("list indices", res)
	}

	var indices []IndexInfo
	if err := json.NewDecoder(res.Body).Decode(&indices); err != nil {
		return nil, fmt.Errorf("%w: list indices: %v", ErrRequestFailed, err)
	}
	return indices, nil
}

// =============================================================================
// INDEX OPERATIONS
// =============================================================================

// Search executes a query body against an index and returns the raw result.
func (c *Client) Search(ctx context.Context, index, queryJSON string) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(strings.NewReader(queryJSON)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, statusError("search "+index, res)
	}
	return readRaw(res, "search "+index)
}

// CreateIndex creates an index; bodyJSON (settings/mappings) may be empty.
func (c *Client) CreateIndex(ctx context.Context, name, bodyJSON string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	opts := []func(*esapi.IndicesCreateRequest){
		c.es.Indices.Create.WithContext(ctx),
	}
	if bodyJSON != "" {
		opts = append(opts, c.es.Indices.Create.WithBody(strings.NewReader(bodyJSON)))
	}
	res, err := c.es.Indices.Create(name, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return statusError("create index "+name, res)
	}
	return nil
}

// DeleteIndex removes an index.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	res, err := c.es.Indices.Delete(
		[]string{name},
		c.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return statusError("delete index "+name, res)
	}
	return nil
}

// GetSettings returns the raw settings document for an index.
func (c *Client) GetSettings(ctx context.Context, index string) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.es.Indices.GetSettings(
		c.es.Indices.GetSettings.WithContext(ctx),
		c.es.Indices.GetSettings.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, statusError("get settings "+index, res)
	}
	return readRaw(res, "get settings "+index)
}

// GetMapping returns the raw mapping document for an index.
func (c *Client) GetMapping(ctx context.Context, index string) (json.RawMessage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.es.Indices.GetMapping(
		c.es.Indices.GetMapping.WithContext(ctx),
		c.es.Indices.GetMapping.WithIndex(index),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, statusError("get mapping "+index, res)
	}
	return readRaw(res, "get mapping "+index)
}

// readRaw drains a successful response body as raw JSON.
func readRaw(res *esapi.Response, op string) (json.RawMessage, error) {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRequestFailed, op, err)
	}
	return json.RawMessage(body), nil
}

// =============================================================================
// HEALTH POLLING
// =============================================================================

// WaitReady pings until the cluster answers or the deadline passes. Useful
// at startup when the cluster and the console come up together.
func (c *Client) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = c.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return lastErr
}
