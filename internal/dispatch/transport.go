package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
)

// defaultMaxResponseBytes caps the upstream response body read into memory.
const defaultMaxResponseBytes = 50 << 20 // 50MB

// Call is a fully resolved outbound request.
type Call struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Transport performs a single outbound call. Implementations return an error
// only when no response was obtained.
type Transport interface {
	Send(ctx context.Context, call Call) (*Result, error)
}

// HTTPTransport sends calls with an *http.Client.
type HTTPTransport struct {
	httpClient       *http.Client
	maxResponseBytes int64
	logger           *common.Logger
}

// NewHTTPTransport creates a transport. The client should not set its own
// Timeout; the dispatcher bounds each call with a context deadline.
func NewHTTPTransport(httpClient *http.Client, maxResponseBytes int64, logger *common.Logger) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if maxResponseBytes <= 0 {
		maxResponseBytes = defaultMaxResponseBytes
	}
	return &HTTPTransport{
		httpClient:       httpClient,
		maxResponseBytes: maxResponseBytes,
		logger:           logger,
	}
}

// Send performs the call and reads the response body.
func (t *HTTPTransport) Send(ctx context.Context, call Call) (*Result, error) {
	t.logger.Debug().Str("method", call.Method).Str("url", call.URL).Msg("upstream request")

	var bodyReader io.Reader
	if call.Body != nil {
		bodyReader = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	for key, vals := range call.Header {
		if strings.EqualFold(key, "Host") && len(vals) > 0 {
			req.Host = vals[0]
			continue
		}
		req.Header[key] = vals
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.Error().Str("method", call.Method).Str("url", call.URL).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("upstream request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	truncated := int64(len(body)) > t.maxResponseBytes
	if truncated {
		t.logger.Warn().Str("url", call.URL).Int64("max_bytes", t.maxResponseBytes).Msg("upstream response truncated")
		body = body[:t.maxResponseBytes]
	}

	t.logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("upstream response")

	return &Result{StatusCode: resp.StatusCode, Body: string(body), Truncated: truncated}, nil
}
