package storage

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"feeds/internal/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

func localItems() []cache.LocalFeedItem {
	return []cache.LocalFeedItem{
		{ID: uuid.New(), Description: ptr("a description"), Location: ptr("a location"), ImageURL: "https://example.com/1.png"},
		{ID: uuid.New(), ImageURL: "https://example.com/2.png"},
		{ID: uuid.New(), Description: ptr(""), ImageURL: "https://example.com/3.png"},
	}
}

// runStoreContract checks the behaviour every Store backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	timestamp := time.Date(2024, 5, 1, 8, 30, 0, 123000, time.UTC)

	t.Run("retrieve on empty store", func(t *testing.T) {
		store := newStore(t)
		_, found, err := store.Retrieve(ctx)
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = store.Retrieve(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("retrieve after insert", func(t *testing.T) {
		store := newStore(t)
		items := localItems()
		require.NoError(t, store.Insert(ctx, items, timestamp))

		cached, found, err := store.Retrieve(ctx)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, items, cached.Items)
		assert.True(t, timestamp.Equal(cached.Timestamp), "got %s", cached.Timestamp)
	})

	t.Run("insert empty feed", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Insert(ctx, []cache.LocalFeedItem{}, timestamp))

		cached, found, err := store.Retrieve(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, cached.Items)
	})

	t.Run("insert overrides previous generation", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Insert(ctx, localItems(), timestamp))
		latest := localItems()[:1]
		latestTimestamp := timestamp.Add(time.Hour)
		require.NoError(t, store.Insert(ctx, latest, latestTimestamp))

		cached, found, err := store.Retrieve(ctx)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, latest, cached.Items)
		assert.True(t, latestTimestamp.Equal(cached.Timestamp))
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Delete(ctx), "delete on empty store")
		require.NoError(t, store.Insert(ctx, localItems(), timestamp))
		require.NoError(t, store.Delete(ctx))

		_, found, err := store.Retrieve(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("images", func(t *testing.T) {
		store := newStore(t)
		_, found, err := store.RetrieveImage(ctx, "https://example.com/a.png")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, store.InsertImage(ctx, []byte("first"), "https://example.com/a.png"))
		require.NoError(t, store.InsertImage(ctx, []byte("other"), "https://example.com/b.png"))
		require.NoError(t, store.InsertImage(ctx, []byte("second"), "https://example.com/a.png"))

		data, found, err := store.RetrieveImage(ctx, "https://example.com/a.png")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("second"), data)

		data, found, err = store.RetrieveImage(ctx, "https://example.com/b.png")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("other"), data)
	})

	t.Run("concurrent operations", func(t *testing.T) {
		store := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(3)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Insert(ctx, localItems(), timestamp))
			}()
			go func() {
				defer wg.Done()
				_, _, err := store.Retrieve(ctx)
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				assert.NoError(t, store.InsertImage(ctx, []byte("png"), "https://example.com/a.png"))
			}()
		}
		wg.Wait()

		cached, found, err := store.Retrieve(ctx)
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, cached.Items, 3)
	})
}
