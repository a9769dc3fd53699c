package cache

import (
	"context"
	"log/slog"
	"time"

	"feeds/internal/domain"
)

// LocalFeedLoader serves, saves and invalidates the cached feed on top of a
// FeedStore, applying the freshness Policy.
type LocalFeedLoader struct {
	store  FeedStore
	now    func() time.Time
	policy Policy
	log    *slog.Logger
}

// NewLocalFeedLoader creates a loader over store. now is consulted for every
// freshness check and as the timestamp of every save.
func NewLocalFeedLoader(store FeedStore, now func() time.Time, policy Policy, log *slog.Logger) *LocalFeedLoader {
	if now == nil {
		now = time.Now
	}
	return &LocalFeedLoader{
		store:  store,
		now:    now,
		policy: policy,
		log:    log.With(slog.String("component", "local-feed")),
	}
}

// Load returns the cached items when the cache is fresh. A missing or expired
// cache yields an empty list, never an error. Store errors are returned as is.
func (l *LocalFeedLoader) Load(ctx context.Context) ([]domain.FeedItem, error) {
	cached, found, err := l.store.Retrieve(ctx)
	if err != nil {
		l.log.Error("Cache retrieval failed", slog.Any("error", err))
		return nil, err
	}
	if !found || !l.policy.IsFresh(cached.Timestamp, l.now()) {
		l.log.Debug("No fresh cache", slog.Bool("found", found))
		return []domain.FeedItem{}, nil
	}
	l.log.Debug("Serving cached feed", slog.Int("count", len(cached.Items)))
	return ToDomain(cached.Items), nil
}

// Save replaces the cached feed: the old generation is deleted first and the
// new one inserted with the current time. A failed delete skips the insert.
// A failed insert leaves the cache empty.
func (l *LocalFeedLoader) Save(ctx context.Context, items []domain.FeedItem) error {
	if err := l.store.Delete(ctx); err != nil {
		l.log.Error("Cache deletion failed", slog.String("stage", "delete"), slog.Any("error", err))
		return err
	}
	if err := l.store.Insert(ctx, ToLocal(items), l.now()); err != nil {
		l.log.Error("Cache insertion failed", slog.String("stage", "insert"), slog.Any("error", err))
		return err
	}
	l.log.Debug("Feed cached", slog.Int("count", len(items)))
	return nil
}

// ValidateCache deletes the cache if it cannot be read or has expired and
// returns the deletion result. A fresh or empty cache is left untouched.
func (l *LocalFeedLoader) ValidateCache(ctx context.Context) error {
	cached, found, err := l.store.Retrieve(ctx)
	switch {
	case err != nil:
		l.log.Warn("Unreadable cache, deleting", slog.Any("error", err))
	case found && !l.policy.IsFresh(cached.Timestamp, l.now()):
		l.log.Info("Expired cache, deleting", slog.Time("timestamp", cached.Timestamp))
	default:
		return nil
	}
	return l.store.Delete(ctx)
}
