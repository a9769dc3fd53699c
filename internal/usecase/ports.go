package usecase

import (
	"context"

	"feeds/internal/domain"
)

// FeedLoader loads the feed from some source.
type FeedLoader interface {
	Load(ctx context.Context) ([]domain.FeedItem, error)
}

// ImageLoader loads the image bytes behind url.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) ([]byte, error)
}

// FeedCache persists a loaded feed.
type FeedCache interface {
	Save(ctx context.Context, items []domain.FeedItem) error
}

// ImageCache persists loaded image bytes.
type ImageCache interface {
	SaveImage(ctx context.Context, data []byte, url string) error
}
