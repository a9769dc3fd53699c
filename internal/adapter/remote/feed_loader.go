package remote

import (
	"context"
	"log/slog"
	"net/http"

	"feeds/internal/adapter/fetcher"
	"feeds/internal/domain"
)

// FeedMapper turns a 200 response body into feed items.
type FeedMapper interface {
	Parse(ctx context.Context, body []byte) ([]domain.FeedItem, error)
}

// FeedLoader loads the feed from a fixed URL.
type FeedLoader struct {
	url    string
	client fetcher.HTTPClient
	mapper FeedMapper
	log    *slog.Logger
}

// NewFeedLoader creates a loader for the feed at url, decoded by mapper.
func NewFeedLoader(url string, client fetcher.HTTPClient, mapper FeedMapper, log *slog.Logger) *FeedLoader {
	return &FeedLoader{
		url:    url,
		client: client,
		mapper: mapper,
		log:    log.With(slog.String("component", "remote-feed"), slog.String("url", url)),
	}
}

// Load returns domain.ErrConnectivity when the request fails and
// domain.ErrInvalidData for any non-200 status or undecodable body.
func (l *FeedLoader) Load(ctx context.Context) ([]domain.FeedItem, error) {
	resp, err := l.client.Get(ctx, l.url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.log.Warn("Feed request failed", slog.Any("error", err))
		return nil, domain.ErrConnectivity
	}
	if resp.StatusCode != http.StatusOK {
		l.log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, domain.ErrInvalidData
	}
	items, err := l.mapper.Parse(ctx, resp.Body)
	if err != nil {
		l.log.Warn("Feed payload rejected", slog.Any("error", err))
		return nil, domain.ErrInvalidData
	}
	l.log.Debug("Feed loaded", slog.Int("count", len(items)))
	return items, nil
}
