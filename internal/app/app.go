package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"feeds/internal/adapter/fetcher"
	"feeds/internal/adapter/parser"
	"feeds/internal/adapter/remote"
	"feeds/internal/cache"
	"feeds/internal/config"
	"feeds/internal/logger"
	"feeds/internal/migrations"
	server "feeds/internal/transport/http"
	"feeds/internal/usecase"
	"feeds/internal/worker"
	"feeds/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App wires the feed and image pipelines to the configured store and serves
// them over HTTP. Both pipelines try the remote first, cache what it returns
// and fall back to the local cache:
//
//	remote -> cache decorator (local) -> fallback (local)
//
// Images are only loaded for URLs of the feed being served.
type App struct {
	config    *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	store     storage.Store

	feedCache  *usecase.FeedLoaderCacheDecorator
	imageCache *usecase.ImageLoaderCacheDecorator

	server   *http.Server
	worker   *worker.Worker
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New sets up logging, opens the store selected by cfg.Storage.Driver and
// wires every component. cfg must be validated.
func New(cfg *config.Config) (*App, error) {
	appLogger, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	store, err := openStore(context.Background(), cfg.Storage, appLogger)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	client := fetcher.NewClient(cfg.App.RequestTimeoutDuration(), appLogger)
	a := newApp(cfg, appLogger, store, client)
	a.logCloser = logCloser
	return a, nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemoryStore(log), nil
	case config.DriverSQLite:
		store, err := storage.OpenSQLite(cfg.Path, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := migrations.Apply(ctx, log, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return storage.NewPostgresStore(pool, log), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newApp(cfg *config.Config, log *slog.Logger, store storage.Store, client fetcher.HTTPClient) *App {
	policy := cache.Policy{MaxAge: cfg.App.MaxCacheAgeDuration()}
	localFeed := cache.NewLocalFeedLoader(store, time.Now, policy, log)
	localImages := cache.NewLocalImageLoader(store, log)

	remoteFeed := remote.NewFeedLoader(cfg.App.FeedURL, client, parser.NewJSONParser(log), log)
	remoteImages := remote.NewImageLoader(client, log)

	feedCache := usecase.NewFeedLoaderCacheDecorator(remoteFeed, localFeed, log)
	imageCache := usecase.NewImageLoaderCacheDecorator(remoteImages, localImages, log)
	known := usecase.NewKnownImages(localFeed)
	feed := usecase.NewRememberingFeedLoader(usecase.NewFeedLoaderWithFallback(feedCache, localFeed), known)
	images := usecase.NewFeedImageLoader(usecase.NewImageLoaderWithFallback(imageCache, localImages), known, log)

	handler := server.NewHandler(log, feed, images)
	router := server.NewServer(log, handler)

	workerCfg := worker.Config{
		Interval: cfg.App.ValidationIntervalDuration(),
		Timeout:  cfg.App.RequestTimeoutDuration(),
	}
	if cfg.App.PrefetchImages {
		workerCfg.Feed = feed
		workerCfg.Images = images
	}

	return &App{
		config:     cfg,
		logger:     log,
		store:      store,
		feedCache:  feedCache,
		imageCache: imageCache,
		server: &http.Server{
			Addr:    cfg.Server.Address,
			Handler: router,
		},
		worker:   worker.New(localFeed, workerCfg, log),
		stopChan: make(chan os.Signal, 1),
	}
}

// Run starts the worker and the HTTP server and blocks until SIGINT or
// SIGTERM, then shuts down.
func (a *App) Run() error {
	a.logger.Info("Starting feeds service",
		slog.String("component", "app"),
		slog.String("feed_url", a.config.App.FeedURL),
		slog.String("storage", a.config.Storage.Driver),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create listener: %w", err), a.release())
	}
	a.worker.Start()
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
			serveErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serveErr:
		a.Shutdown()
		return fmt.Errorf("http server: %w", err)
	}
	return a.Shutdown()
}

// Shutdown stops the worker and the server, waits for pending cache writes
// and closes the store.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	a.worker.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	a.wg.Wait()
	a.feedCache.Wait()
	a.imageCache.Wait()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return a.release()
}

// release closes the store and the log files.
func (a *App) release() error {
	var errs []error
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log files: %w", err))
		}
	}
	return errors.Join(errs...)
}
