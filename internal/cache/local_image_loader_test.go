package cache

import (
	"context"
	"testing"

	"feeds/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imageURL = "https://example.com/image.png"

func TestLocalImageLoader_LoadImage(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		loader := NewLocalImageLoader(&imageStoreSpy{retrieveErr: errStore}, discardLogger())
		data, err := loader.LoadImage(context.Background(), imageURL)

		assert.ErrorIs(t, err, domain.ErrLoadFailed)
		assert.NotErrorIs(t, err, errStore)
		assert.Nil(t, data)
	})
	t.Run("miss", func(t *testing.T) {
		loader := NewLocalImageLoader(&imageStoreSpy{}, discardLogger())
		_, err := loader.LoadImage(context.Background(), imageURL)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
	t.Run("hit", func(t *testing.T) {
		store := &imageStoreSpy{data: map[string][]byte{imageURL: []byte("png")}}
		data, err := NewLocalImageLoader(store, discardLogger()).LoadImage(context.Background(), imageURL)

		require.NoError(t, err)
		assert.Equal(t, []byte("png"), data)
	})
}

func TestLocalImageLoader_SaveImage(t *testing.T) {
	store := &imageStoreSpy{}
	err := NewLocalImageLoader(store, discardLogger()).SaveImage(context.Background(), []byte("png"), imageURL)
	require.NoError(t, err)
	assert.Equal(t, []string{imageURL}, store.inserted)

	store = &imageStoreSpy{insertErr: errStore}
	err = NewLocalImageLoader(store, discardLogger()).SaveImage(context.Background(), []byte("png"), imageURL)
	assert.ErrorIs(t, err, domain.ErrSaveFailed)
	assert.NotErrorIs(t, err, errStore)
}
