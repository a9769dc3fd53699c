package usecase

import (
	"context"

	"feeds/internal/domain"
)

// FeedLoaderWithFallback tries primary and, only if it fails, fallback.
// The fallback result is returned as is, success or failure.
type FeedLoaderWithFallback struct {
	primary  FeedLoader
	fallback FeedLoader
}

// NewFeedLoaderWithFallback composes primary and fallback.
func NewFeedLoaderWithFallback(primary, fallback FeedLoader) *FeedLoaderWithFallback {
	return &FeedLoaderWithFallback{primary: primary, fallback: fallback}
}

// Load does not start the fallback once ctx is done.
func (l *FeedLoaderWithFallback) Load(ctx context.Context) ([]domain.FeedItem, error) {
	items, err := l.primary.Load(ctx)
	if err == nil {
		return items, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return l.fallback.Load(ctx)
}

// ImageLoaderWithFallback is the image counterpart of FeedLoaderWithFallback.
type ImageLoaderWithFallback struct {
	primary  ImageLoader
	fallback ImageLoader
}

// NewImageLoaderWithFallback composes primary and fallback.
func NewImageLoaderWithFallback(primary, fallback ImageLoader) *ImageLoaderWithFallback {
	return &ImageLoaderWithFallback{primary: primary, fallback: fallback}
}

// LoadImage does not start the fallback once ctx is done.
func (l *ImageLoaderWithFallback) LoadImage(ctx context.Context, url string) ([]byte, error) {
	data, err := l.primary.LoadImage(ctx, url)
	if err == nil {
		return data, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return l.fallback.LoadImage(ctx, url)
}
