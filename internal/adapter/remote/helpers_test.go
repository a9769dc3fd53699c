package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"feeds/internal/adapter/fetcher"
)

var errTransport = errors.New("transport failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// httpClientStub answers every Get with the configured response and records
// the requested URLs.
type httpClientStub struct {
	mu   sync.Mutex
	urls []string

	resp *fetcher.Response
	err  error
	// block, when set, makes Get wait until ctx is done.
	block bool
}

func (c *httpClientStub) Get(ctx context.Context, url string) (*fetcher.Response, error) {
	c.mu.Lock()
	c.urls = append(c.urls, url)
	c.mu.Unlock()
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.resp, c.err
}

func (c *httpClientStub) requested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.urls...)
}

func response(status int, body string) *fetcher.Response {
	return &fetcher.Response{StatusCode: status, Body: []byte(body)}
}
