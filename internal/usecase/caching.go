package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"sync"

	"feeds/internal/domain"
)

// writes runs background cache writes. The caller never waits for them and
// never sees their errors; they are only logged.
type writes struct {
	wg  sync.WaitGroup
	log *slog.Logger
}

func (w *writes) issue(ctx context.Context, save func(context.Context) error, attrs ...any) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := save(context.WithoutCancel(ctx)); err != nil {
			w.log.Warn("Cache write failed", append(attrs, slog.Any("error", err))...)
		}
	}()
}

// FeedLoaderCacheDecorator saves every feed its decoratee loads successfully.
type FeedLoaderCacheDecorator struct {
	decoratee FeedLoader
	cache     FeedCache
	writes    *writes
}

// NewFeedLoaderCacheDecorator wraps decoratee and saves its successful results to cache.
func NewFeedLoaderCacheDecorator(decoratee FeedLoader, cache FeedCache, log *slog.Logger) *FeedLoaderCacheDecorator {
	return &FeedLoaderCacheDecorator{
		decoratee: decoratee,
		cache:     cache,
		writes:    &writes{log: log.With(slog.String("component", "feed-cache-decorator"))},
	}
}

// Load returns exactly what the decoratee returned.
func (d *FeedLoaderCacheDecorator) Load(ctx context.Context) ([]domain.FeedItem, error) {
	items, err := d.decoratee.Load(ctx)
	if err != nil {
		return items, err
	}
	saved := slices.Clone(items)
	d.writes.issue(ctx, func(ctx context.Context) error {
		return d.cache.Save(ctx, saved)
	}, slog.Int("count", len(items)))
	return items, nil
}

// Wait blocks until all issued cache writes have finished.
func (d *FeedLoaderCacheDecorator) Wait() { d.writes.wg.Wait() }

// ImageLoaderCacheDecorator saves every image its decoratee loads successfully.
type ImageLoaderCacheDecorator struct {
	decoratee ImageLoader
	cache     ImageCache
	writes    *writes
}

// NewImageLoaderCacheDecorator wraps decoratee and saves its successful results to cache.
func NewImageLoaderCacheDecorator(decoratee ImageLoader, cache ImageCache, log *slog.Logger) *ImageLoaderCacheDecorator {
	return &ImageLoaderCacheDecorator{
		decoratee: decoratee,
		cache:     cache,
		writes:    &writes{log: log.With(slog.String("component", "image-cache-decorator"))},
	}
}

// LoadImage returns exactly what the decoratee returned.
func (d *ImageLoaderCacheDecorator) LoadImage(ctx context.Context, url string) ([]byte, error) {
	data, err := d.decoratee.LoadImage(ctx, url)
	if err != nil {
		return data, err
	}
	saved := bytes.Clone(data)
	d.writes.issue(ctx, func(ctx context.Context) error {
		return d.cache.SaveImage(ctx, saved, url)
	}, slog.String("url", url))
	return data, nil
}

// Wait blocks until all issued cache writes have finished.
func (d *ImageLoaderCacheDecorator) Wait() { d.writes.wg.Wait() }
