package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"feeds/internal/domain"

	"github.com/google/uuid"
)

var errStore = errors.New("store failure")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

func uniqueItems() []domain.FeedItem {
	return []domain.FeedItem{
		{ID: uuid.New(), Description: ptr("a description"), Location: ptr("a location"), ImageURL: "https://example.com/1.png"},
		{ID: uuid.New(), ImageURL: "https://example.com/2.png"},
	}
}

type storeCall struct {
	kind      string
	items     []LocalFeedItem
	timestamp time.Time
}

// feedStoreSpy records every received message and answers with stubbed results.
type feedStoreSpy struct {
	mu sync.Mutex

	calls []storeCall

	retrieved   CachedFeed
	found       bool
	retrieveErr error
	insertErr   error
	deleteErr   error
}

func (s *feedStoreSpy) Retrieve(ctx context.Context) (CachedFeed, bool, error) {
	s.record(storeCall{kind: "retrieve"})
	if s.retrieveErr != nil {
		return CachedFeed{}, false, s.retrieveErr
	}
	return s.retrieved, s.found, nil
}

func (s *feedStoreSpy) Insert(ctx context.Context, items []LocalFeedItem, timestamp time.Time) error {
	s.record(storeCall{kind: "insert", items: items, timestamp: timestamp})
	return s.insertErr
}

func (s *feedStoreSpy) Delete(ctx context.Context) error {
	s.record(storeCall{kind: "delete"})
	return s.deleteErr
}

func (s *feedStoreSpy) record(c storeCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *feedStoreSpy) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.kind)
	}
	return out
}

type imageStoreSpy struct {
	data        map[string][]byte
	retrieveErr error
	insertErr   error
	inserted    []string
}

func (s *imageStoreSpy) RetrieveImage(ctx context.Context, url string) ([]byte, bool, error) {
	if s.retrieveErr != nil {
		return nil, false, s.retrieveErr
	}
	data, ok := s.data[url]
	return data, ok, nil
}

func (s *imageStoreSpy) InsertImage(ctx context.Context, data []byte, url string) error {
	s.inserted = append(s.inserted, url)
	return s.insertErr
}
