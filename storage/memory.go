package storage

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"feeds/internal/cache"
)

// MemoryStore keeps the feed and image caches in process memory.
// Stored and returned values are copies, so callers cannot mutate the cache.
type MemoryStore struct {
	mu     sync.RWMutex
	feed   *cache.CachedFeed
	images map[string][]byte
	log    *slog.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(log *slog.Logger) *MemoryStore {
	log.Info("Initializing in-memory cache storage")
	return &MemoryStore{
		images: make(map[string][]byte),
		log:    log.With(slog.String("component", "storage.memory")),
	}
}

// Retrieve returns a copy of the stored feed.
func (s *MemoryStore) Retrieve(ctx context.Context) (cache.CachedFeed, bool, error) {
	if err := ctx.Err(); err != nil {
		return cache.CachedFeed{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.feed == nil {
		return cache.CachedFeed{}, false, nil
	}
	return cache.CachedFeed{
		Items:     slices.Clone(s.feed.Items),
		Timestamp: s.feed.Timestamp,
	}, true, nil
}

// Insert replaces the stored feed.
func (s *MemoryStore) Insert(ctx context.Context, items []cache.LocalFeedItem, timestamp time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	feed := &cache.CachedFeed{Items: slices.Clone(items), Timestamp: timestamp}
	s.mu.Lock()
	s.feed = feed
	s.mu.Unlock()
	s.log.Debug("Feed stored", slog.Int("count", len(items)))
	return nil
}

// Delete drops the stored feed.
func (s *MemoryStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.feed = nil
	s.mu.Unlock()
	return nil
}

// RetrieveImage returns a copy of the bytes stored for url.
func (s *MemoryStore) RetrieveImage(ctx context.Context, url string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	data, ok := s.images[url]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// InsertImage stores a copy of data under url, replacing any previous bytes.
func (s *MemoryStore) InsertImage(ctx context.Context, data []byte, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copyBuf := make([]byte, len(data))
	copy(copyBuf, data)
	s.mu.Lock()
	s.images[url] = copyBuf
	s.mu.Unlock()
	s.log.Debug("Image stored", slog.String("url", url), slog.Int("bytes", len(copyBuf)))
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
