package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feeds/internal/cache"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the feed and image caches in PostgreSQL.
// Timestamps are stored as TIMESTAMPTZ and keep microsecond precision.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresStore creates a store over pool. The schema comes from internal/migrations.
func NewPostgresStore(pool *pgxpool.Pool, log *slog.Logger) *PostgresStore {
	log.Info("Initializing Postgres cache storage")
	return &PostgresStore{
		pool: pool,
		log:  log.With(slog.String("component", "storage.postgres")),
	}
}

// Close closes the connection pool.
func (db *PostgresStore) Close() error {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
	return nil
}

// Retrieve reads the timestamp and items in one read-only snapshot.
func (db *PostgresStore) Retrieve(ctx context.Context) (cache.CachedFeed, bool, error) {
	const op = "storage.postgres.Retrieve"
	log := db.log.With(slog.String("op", op))
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(context.Background())
	var timestamp time.Time
	err = tx.QueryRow(ctx, "SELECT stored_at FROM feed_cache_meta WHERE id = 1").Scan(&timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return cache.CachedFeed{}, false, nil
	}
	if err != nil {
		log.Error("Failed to read cache timestamp", slog.Any("error", err))
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to read cache timestamp: %w", op, err)
	}
	query := `
	SELECT id, description, location, image_url
	FROM feed_cache_items
	ORDER BY position;
	`
	rows, err := tx.Query(ctx, query)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cache.LocalFeedItem, error) {
		var item cache.LocalFeedItem
		err := row.Scan(
			&item.ID,
			&item.Description,
			&item.Location,
			&item.ImageURL,
		)
		return item, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Cached feed retrieved", slog.Int("count", len(items)))
	return cache.CachedFeed{Items: items, Timestamp: timestamp}, true, nil
}

// Insert replaces the stored generation in one transaction.
func (db *PostgresStore) Insert(ctx context.Context, items []cache.LocalFeedItem, timestamp time.Time) (err error) {
	const op = "storage.postgres.Insert"
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		db.log.Error("Failed to begin transaction", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				db.log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	batch := &pgx.Batch{}
	batch.Queue("DELETE FROM feed_cache_items")
	batch.Queue("DELETE FROM feed_cache_meta")
	batch.Queue("INSERT INTO feed_cache_meta (id, stored_at) VALUES (1, $1)", timestamp)
	query := `
	INSERT INTO feed_cache_items (position, id, description, location, image_url)
	VALUES ($1, $2, $3, $4, $5);
	`
	for i, item := range items {
		batch.Queue(
			query,
			i,
			item.ID,
			item.Description,
			item.Location,
			item.ImageURL,
		)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		db.log.Error("Failed to execute batch", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to execute batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		db.log.Error("Failed to commit transaction", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

// Delete drops the stored feed in one transaction.
func (db *PostgresStore) Delete(ctx context.Context) error {
	const op = "storage.postgres.Delete"
	batch := &pgx.Batch{}
	batch.Queue("DELETE FROM feed_cache_items")
	batch.Queue("DELETE FROM feed_cache_meta")
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		db.log.Error("Failed to delete cached feed", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete cached feed: %w", op, err)
	}
	return nil
}

// RetrieveImage returns the bytes stored for url.
func (db *PostgresStore) RetrieveImage(ctx context.Context, url string) ([]byte, bool, error) {
	const op = "storage.postgres.RetrieveImage"
	var data []byte
	err := db.pool.QueryRow(ctx, "SELECT data FROM image_cache WHERE url = $1", url).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: failed to read image: %w", op, err)
	}
	return data, true, nil
}

// InsertImage upserts data under url.
func (db *PostgresStore) InsertImage(ctx context.Context, data []byte, url string) error {
	const op = "storage.postgres.InsertImage"
	query := `
	INSERT INTO image_cache (url, data, stored_at)
	VALUES ($1, $2, now())
	ON CONFLICT (url) DO UPDATE SET data = EXCLUDED.data, stored_at = EXCLUDED.stored_at;
	`
	if _, err := db.pool.Exec(ctx, query, url, data); err != nil {
		return fmt.Errorf("%s: failed to insert image: %w", op, err)
	}
	return nil
}
