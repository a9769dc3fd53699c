package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feeds/internal/cache"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var sqliteSchema string

// SQLiteStore is the embedded database backend. It uses a single connection,
// so operations run one at a time in the order they reach the pool.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := sql.Open("sqlite", cleanPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	log.Info("Initializing SQLite cache storage", slog.String("path", cleanPath))
	return &SQLiteStore{
		db:  db,
		log: log.With(slog.String("component", "storage.sqlite")),
	}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.log.Info("Closing sqlite database")
	return s.db.Close()
}

// Retrieve reads the timestamp and items in one transaction.
func (s *SQLiteStore) Retrieve(ctx context.Context) (cache.CachedFeed, bool, error) {
	const op = "storage.sqlite.Retrieve"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()
	var nanos int64
	err = tx.QueryRowContext(ctx, "SELECT timestamp FROM feed_cache_meta WHERE id = 1").Scan(&nanos)
	if err == sql.ErrNoRows {
		return cache.CachedFeed{}, false, nil
	}
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to read cache timestamp: %w", op, err)
	}
	rows, err := tx.QueryContext(ctx, `
	SELECT id, description, location, image_url
	FROM feed_cache_items
	ORDER BY position;
	`)
	if err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	items := []cache.LocalFeedItem{}
	for rows.Next() {
		var item cache.LocalFeedItem
		if err := rows.Scan(&item.ID, &item.Description, &item.Location, &item.ImageURL); err != nil {
			return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to scan row: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return cache.CachedFeed{}, false, fmt.Errorf("%s: failed to iterate rows: %w", op, err)
	}
	return cache.CachedFeed{Items: items, Timestamp: time.Unix(0, nanos).UTC()}, true, nil
}

// Insert replaces the stored generation in one transaction.
func (s *SQLiteStore) Insert(ctx context.Context, items []cache.LocalFeedItem, timestamp time.Time) (err error) {
	const op = "storage.sqlite.Insert"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				s.log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	if err = deleteFeedTx(ctx, tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO feed_cache_meta (id, timestamp) VALUES (1, ?)", timestamp.UnixNano()); err != nil {
		return fmt.Errorf("%s: failed to write cache timestamp: %w", op, err)
	}
	for i, item := range items {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO feed_cache_items (position, id, description, location, image_url) VALUES (?, ?, ?, ?, ?)",
			i, item.ID, item.Description, item.Location, item.ImageURL,
		); err != nil {
			return fmt.Errorf("%s: failed to insert item %s: %w", op, item.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	s.log.Debug("Feed stored", slog.Int("count", len(items)))
	return nil
}

// Delete drops the stored feed in one transaction.
func (s *SQLiteStore) Delete(ctx context.Context) (err error) {
	const op = "storage.sqlite.Delete"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	if err = deleteFeedTx(ctx, tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

func deleteFeedTx(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM feed_cache_items"); err != nil {
		return fmt.Errorf("failed to clear feed items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM feed_cache_meta"); err != nil {
		return fmt.Errorf("failed to clear feed timestamp: %w", err)
	}
	return nil
}

// RetrieveImage returns the bytes stored for url.
func (s *SQLiteStore) RetrieveImage(ctx context.Context, url string) ([]byte, bool, error) {
	const op = "storage.sqlite.RetrieveImage"
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM image_cache WHERE url = ?", url).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: failed to read image: %w", op, err)
	}
	return data, true, nil
}

// InsertImage stores data under url, replacing any previous bytes.
func (s *SQLiteStore) InsertImage(ctx context.Context, data []byte, url string) error {
	const op = "storage.sqlite.InsertImage"
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO image_cache (url, data, stored_at)
		VALUES (?, ?, ?)
	`, url, data, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("%s: failed to insert image: %w", op, err)
	}
	return nil
}
