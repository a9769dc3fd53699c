package worker

import (
	"context"
	"log/slog"
	"time"

	"feeds/internal/domain"
	"feeds/internal/task"
)

const (
	defaultInterval = time.Hour
	defaultTimeout  = 30 * time.Second
)

// CacheValidator evicts the local feed cache once it expires.
type CacheValidator interface {
	ValidateCache(ctx context.Context) error
}

// FeedLoader refreshes the feed.
type FeedLoader interface {
	Load(ctx context.Context) ([]domain.FeedItem, error)
}

// ImageLoader fetches one image of the feed.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) ([]byte, error)
}

// Config controls what a maintenance cycle does besides cache validation.
type Config struct {
	Interval time.Duration
	// Timeout bounds each validation, feed load and image load.
	Timeout time.Duration
	// Feed, when set, is reloaded every cycle.
	Feed FeedLoader
	// Images, when set together with Feed, loads every item image of the
	// refreshed feed in the background.
	Images ImageLoader
}

// Worker periodically validates the feed cache and optionally refreshes the
// feed and prefetches its images. Prefetches of a cycle are cancelled when the
// next cycle starts or the worker stops.
type Worker struct {
	validator CacheValidator
	cfg       Config
	log       *slog.Logger
	tracker   *task.Tracker

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped Worker. Zero Interval and Timeout fall back to one hour and 30 seconds.
func New(validator CacheValidator, cfg Config, log *slog.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Worker{
		validator: validator,
		cfg:       cfg,
		log:       log.With(slog.String("component", "worker")),
		tracker:   task.NewTracker(),
	}
}

// Start runs the first cycle immediately and then one per interval.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go w.run()
}

// Stop ends the loop, waits for the running cycle and cancels every
// outstanding prefetch. No prefetch completion runs after Stop returns.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.tracker.Close()
}

func (w *Worker) run() {
	defer close(w.done)
	w.log.Info("Cache worker started",
		slog.String("interval", w.cfg.Interval.String()),
		slog.Bool("refresh", w.cfg.Feed != nil),
		slog.Bool("prefetch", w.cfg.Feed != nil && w.cfg.Images != nil),
	)
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	w.runCycle(w.ctx)
	for {
		select {
		case <-ticker.C:
			w.runCycle(w.ctx)
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	start := time.Now()

	vctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	err := w.validator.ValidateCache(vctx)
	cancel()
	if err != nil {
		w.log.Error("Cache validation failed", slog.Any("error", err))
	}
	if w.cfg.Feed == nil {
		w.log.Info("Cache maintenance cycle completed", slog.Duration("duration", time.Since(start)))
		return
	}

	fctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	items, err := w.cfg.Feed.Load(fctx)
	cancel()
	if err != nil {
		w.log.Warn("Feed refresh failed", slog.Any("error", err))
		return
	}
	if w.cfg.Images != nil {
		w.prefetch(ctx, items)
	}
	w.log.Info("Cache maintenance cycle completed",
		slog.Int("items", len(items)),
		slog.Duration("duration", time.Since(start)),
	)
}

func (w *Worker) prefetch(ctx context.Context, items []domain.FeedItem) {
	w.tracker.CancelAll()
	for _, item := range items {
		key, url := item.ID.String(), item.ImageURL
		h := task.Go(ctx, func(ctx context.Context) ([]byte, error) {
			ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
			defer cancel()
			return w.cfg.Images.LoadImage(ctx, url)
		}, func(data []byte, err error) {
			if err != nil {
				w.log.Debug("Image prefetch failed", slog.String("url", url), slog.Any("error", err))
				return
			}
			w.log.Debug("Image prefetched", slog.String("url", url), slog.Int("size", len(data)))
		})
		w.tracker.Track(key, h)
		go func() {
			<-h.Done()
			w.tracker.Release(key, h)
		}()
	}
}
