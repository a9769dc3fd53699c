package remote

import (
	"context"
	"log/slog"
	"net/http"

	"feeds/internal/adapter/fetcher"
	"feeds/internal/domain"
)

// ImageLoader downloads image bytes.
type ImageLoader struct {
	client fetcher.HTTPClient
	log    *slog.Logger
}

// NewImageLoader creates a loader that downloads images with client.
func NewImageLoader(client fetcher.HTTPClient, log *slog.Logger) *ImageLoader {
	return &ImageLoader{
		client: client,
		log:    log.With(slog.String("component", "remote-image")),
	}
}

// LoadImage returns domain.ErrConnectivity when the request fails and
// domain.ErrInvalidData for a non-200 status or an empty body.
func (l *ImageLoader) LoadImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := l.client.Get(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.log.Warn("Image request failed", slog.String("url", url), slog.Any("error", err))
		return nil, domain.ErrConnectivity
	}
	if resp.StatusCode != http.StatusOK || len(resp.Body) == 0 {
		l.log.Warn("Unusable image response",
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode),
			slog.Int("bytes", len(resp.Body)),
		)
		return nil, domain.ErrInvalidData
	}
	return resp.Body, nil
}
