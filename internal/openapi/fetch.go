package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bobmcallan/openapi-toolproxy/internal/cache"
	"github.com/bobmcallan/openapi-toolproxy/internal/common"
)

// defaultMaxDocumentBytes caps a fetched document when no limit is configured.
const defaultMaxDocumentBytes = 32 << 20

// Fetcher retrieves the raw bytes of a source document.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// HTTPFetcher fetches documents over HTTP(S).
type HTTPFetcher struct {
	httpClient *http.Client
	maxBytes   int64
	cache      *cache.DocumentCache
	logger     *common.Logger
}

// NewHTTPFetcher creates a fetcher. docCache may be nil.
func NewHTTPFetcher(httpClient *http.Client, maxBytes int64, docCache *cache.DocumentCache, logger *common.Logger) *HTTPFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}
	return &HTTPFetcher{
		httpClient: httpClient,
		maxBytes:   maxBytes,
		cache:      docCache,
		logger:     logger,
	}
}

// Fetch performs a GET and returns the body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if cached, ok := f.cache.Get(location); ok {
		f.logger.Debug().Str("url", location).Msg("document served from cache")
		return cached.Body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &FetchError{URL: location, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		f.logger.Error().Str("url", location).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("document fetch failed")
		return nil, &FetchError{URL: location, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: location, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	f.logger.Debug().Str("url", location).Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Msg("document fetched")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: location, StatusCode: resp.StatusCode}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &FetchError{URL: location, Err: fmt.Errorf("document too large (max %d bytes)", f.maxBytes)}
	}

	f.cache.Set(location, body)
	return body, nil
}

// FileFetcher reads documents from the local filesystem.
type FileFetcher struct {
	maxBytes int64
}

// NewFileFetcher creates a file fetcher with the given size cap.
func NewFileFetcher(maxBytes int64) *FileFetcher {
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}
	return &FileFetcher{maxBytes: maxBytes}
}

// Fetch reads the file at location.
func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("document %s too large (%d bytes, max %d)", location, info.Size(), f.maxBytes)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}
