package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"feeds/internal/domain"
)

// KnownImages is the set of image URLs that belong to the served feed. Only
// these URLs may be loaded through a FeedImageLoader.
type KnownImages struct {
	local FeedLoader

	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewKnownImages creates an empty set. URLs missing from the set are looked
// up in the feed returned by local.
func NewKnownImages(local FeedLoader) *KnownImages {
	return &KnownImages{local: local, urls: make(map[string]struct{})}
}

// Remember replaces the set with the image URLs of items.
func (k *KnownImages) Remember(items []domain.FeedItem) {
	urls := make(map[string]struct{}, len(items))
	for _, item := range items {
		urls[item.ImageURL] = struct{}{}
	}
	k.mu.Lock()
	k.urls = urls
	k.mu.Unlock()
}

// Contains reports whether rawURL is an image of the served feed. On a miss
// the local feed is consulted and, if it has items, remembered.
func (k *KnownImages) Contains(ctx context.Context, rawURL string) (bool, error) {
	if k.has(rawURL) {
		return true, nil
	}
	items, err := k.local.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		return false, nil
	}
	k.Remember(items)
	return k.has(rawURL), nil
}

func (k *KnownImages) has(rawURL string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.urls[rawURL]
	return ok
}

// RememberingFeedLoader records the image URLs of every feed its decoratee
// returns successfully.
type RememberingFeedLoader struct {
	decoratee FeedLoader
	known     *KnownImages
}

// NewRememberingFeedLoader wraps decoratee and records its image URLs in known.
func NewRememberingFeedLoader(decoratee FeedLoader, known *KnownImages) *RememberingFeedLoader {
	return &RememberingFeedLoader{decoratee: decoratee, known: known}
}

// Load returns exactly what the decoratee returned.
func (l *RememberingFeedLoader) Load(ctx context.Context) ([]domain.FeedItem, error) {
	items, err := l.decoratee.Load(ctx)
	if err != nil {
		return items, err
	}
	l.known.Remember(items)
	return items, nil
}

// FeedImageLoader loads only http(s) URLs found in KnownImages and answers
// domain.ErrNotFound for anything else without calling its decoratee.
type FeedImageLoader struct {
	decoratee ImageLoader
	known     *KnownImages
	log       *slog.Logger
}

// NewFeedImageLoader guards decoratee with known.
func NewFeedImageLoader(decoratee ImageLoader, known *KnownImages, log *slog.Logger) *FeedImageLoader {
	return &FeedImageLoader{
		decoratee: decoratee,
		known:     known,
		log:       log.With(slog.String("component", "feed-images")),
	}
}

// LoadImage loads rawURL through the decoratee if it is an image of the feed.
func (l *FeedImageLoader) LoadImage(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		l.log.Warn("Rejected image url", slog.String("url", rawURL))
		return nil, domain.ErrNotFound
	}
	ok, err := l.known.Contains(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		l.log.Warn("Image url is not part of the feed", slog.String("url", rawURL))
		return nil, domain.ErrNotFound
	}
	return l.decoratee.LoadImage(ctx, rawURL)
}
