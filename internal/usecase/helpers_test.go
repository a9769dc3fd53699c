package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"feeds/internal/domain"

	"github.com/google/uuid"
)

var (
	errPrimary  = errors.New("primary failure")
	errFallback = errors.New("fallback failure")
	errCache    = errors.New("cache failure")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uniqueFeed() []domain.FeedItem {
	return []domain.FeedItem{
		{ID: uuid.New(), ImageURL: "https://example.com/1.png"},
		{ID: uuid.New(), ImageURL: "https://example.com/2.png"},
	}
}

type feedLoaderStub struct {
	mu    sync.Mutex
	calls int

	items []domain.FeedItem
	err   error
	// onLoad runs before the stubbed result is returned.
	onLoad func(ctx context.Context)
}

func (s *feedLoaderStub) Load(ctx context.Context) ([]domain.FeedItem, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.onLoad != nil {
		s.onLoad(ctx)
	}
	return s.items, s.err
}

func (s *feedLoaderStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type imageLoaderStub struct {
	mu   sync.Mutex
	urls []string

	data   []byte
	err    error
	onLoad func(ctx context.Context)
}

func (s *imageLoaderStub) LoadImage(ctx context.Context, url string) ([]byte, error) {
	s.mu.Lock()
	s.urls = append(s.urls, url)
	s.mu.Unlock()
	if s.onLoad != nil {
		s.onLoad(ctx)
	}
	return s.data, s.err
}

func (s *imageLoaderStub) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.urls...)
}

type feedCacheSpy struct {
	mu    sync.Mutex
	saved [][]domain.FeedItem
	err   error
}

func (c *feedCacheSpy) Save(ctx context.Context, items []domain.FeedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, items)
	return c.err
}

func (c *feedCacheSpy) messages() [][]domain.FeedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]domain.FeedItem(nil), c.saved...)
}

type savedImage struct {
	data []byte
	url  string
}

type imageCacheSpy struct {
	mu    sync.Mutex
	saved []savedImage
	err   error
}

func (c *imageCacheSpy) SaveImage(ctx context.Context, data []byte, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, savedImage{data: data, url: url})
	return c.err
}

func (c *imageCacheSpy) messages() []savedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]savedImage(nil), c.saved...)
}
