package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTPClient performs a single GET. Any status code is a successful call;
// only transport failures are errors.
type HTTPClient interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Client implements HTTPClient over net/http.
// The request is bound to ctx, so cancelling ctx aborts the call.
type Client struct {
	client *http.Client
	log    *slog.Logger
}

// NewClient creates a Client. A zero timeout means no per-request limit
// besides the caller's context.
func NewClient(timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
		log:    log.With(slog.String("component", "http-client")),
	}
}

// Get fetches url and reads the whole body.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	log := c.log.With(slog.String("url", url))
	log.Debug("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}
	log.Debug("Fetched URL",
		slog.Int("status_code", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
