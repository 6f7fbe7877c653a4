// Package client talks to a running tool proxy over its HTTP surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/openapi-toolproxy/internal/dispatch"
	"github.com/bobmcallan/openapi-toolproxy/internal/handlers"
	"github.com/bobmcallan/openapi-toolproxy/internal/openapi"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// maxResponseBytes caps what the client reads from the proxy.
const maxResponseBytes = 64 << 20

// APIError is a non-2xx answer from the proxy.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("proxy returned %d (%s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("proxy returned %d: %s", e.StatusCode, e.Message)
}

// IsToolNotFound reports whether err is the proxy's unknown-tool answer.
func IsToolNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == handlers.KindToolNotFound
}

// Client communicates with the tool proxy REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client targeting the given proxy URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Invoke calls a tool through POST /invoke.
func (c *Client) Invoke(ctx context.Context, tool string, input dispatch.Request) (*dispatch.Result, error) {
	payload, err := json.Marshal(handlers.InvokeRequest{ToolName: tool, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp handlers.InvokeResponse
	if err := c.do(ctx, http.MethodPost, "/invoke", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Output == nil {
		return nil, fmt.Errorf("proxy response has no output")
	}
	return resp.Output, nil
}

// ListTools returns the registered tool names.
func (c *Client) ListTools(ctx context.Context) ([]string, error) {
	var resp handlers.ToolsResponse
	if err := c.do(ctx, http.MethodGet, "/tools", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// ListRecords returns the full record of every registered tool.
func (c *Client) ListRecords(ctx context.Context) ([]registry.ToolRecord, error) {
	var resp handlers.ToolsResponse
	if err := c.do(ctx, http.MethodGet, "/tools?detail=true", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// Sources returns the per-source report of the last load.
func (c *Client) Sources(ctx context.Context) ([]openapi.SourceReport, error) {
	var resp handlers.SourcesResponse
	if err := c.do(ctx, http.MethodGet, "/sources", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sources, nil
}

// Reload asks the proxy to recompile every source.
func (c *Client) Reload(ctx context.Context) (*handlers.SourcesResponse, error) {
	var resp handlers.SourcesResponse
	if err := c.do(ctx, http.MethodPost, "/reload", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach proxy: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var errBody handlers.ErrorResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			apiErr.Kind = errBody.Kind
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
