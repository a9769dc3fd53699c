package cache

import (
	"context"
	"log/slog"

	"feeds/internal/domain"
)

// LocalImageLoader reads and writes image bytes through an ImageStore.
// Store failures are reported as domain.ErrLoadFailed / domain.ErrSaveFailed
// and only the log carries the underlying cause.
type LocalImageLoader struct {
	store ImageStore
	log   *slog.Logger
}

// NewLocalImageLoader creates a loader over store.
func NewLocalImageLoader(store ImageStore, log *slog.Logger) *LocalImageLoader {
	return &LocalImageLoader{
		store: store,
		log:   log.With(slog.String("component", "local-image")),
	}
}

// LoadImage returns the cached bytes for url, domain.ErrNotFound on a miss.
func (l *LocalImageLoader) LoadImage(ctx context.Context, url string) ([]byte, error) {
	data, found, err := l.store.RetrieveImage(ctx, url)
	if err != nil {
		l.log.Error("Image retrieval failed", slog.String("url", url), slog.Any("error", err))
		return nil, domain.ErrLoadFailed
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// SaveImage stores data under url.
func (l *LocalImageLoader) SaveImage(ctx context.Context, data []byte, url string) error {
	if err := l.store.InsertImage(ctx, data, url); err != nil {
		l.log.Error("Image insertion failed", slog.String("url", url), slog.Any("error", err))
		return domain.ErrSaveFailed
	}
	return nil
}
