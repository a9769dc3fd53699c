package cache

import (
	"context"
	"time"

	"feeds/internal/domain"

	"github.com/google/uuid"
)

// LocalFeedItem is the storage representation of domain.FeedItem.
type LocalFeedItem struct {
	ID          uuid.UUID
	Description *string
	Location    *string
	ImageURL    string
}

// CachedFeed is one cache generation: the items and the moment they were saved.
type CachedFeed struct {
	Items     []LocalFeedItem
	Timestamp time.Time
}

// FeedStore persists a single feed generation. Insert replaces whatever was
// stored before. Retrieve reports found=false for an empty store.
type FeedStore interface {
	Retrieve(ctx context.Context) (CachedFeed, bool, error)
	Insert(ctx context.Context, items []LocalFeedItem, timestamp time.Time) error
	Delete(ctx context.Context) error
}

// ImageStore persists raw image bytes keyed by URL. RetrieveImage reports
// found=false on a miss; a miss is not an error.
type ImageStore interface {
	RetrieveImage(ctx context.Context, url string) ([]byte, bool, error)
	InsertImage(ctx context.Context, data []byte, url string) error
}

// ToLocal maps domain items to their storage form, keeping order.
func ToLocal(items []domain.FeedItem) []LocalFeedItem {
	local := make([]LocalFeedItem, 0, len(items))
	for _, item := range items {
		local = append(local, LocalFeedItem{
			ID:          item.ID,
			Description: item.Description,
			Location:    item.Location,
			ImageURL:    item.ImageURL,
		})
	}
	return local
}

// ToDomain maps stored items back to domain items, keeping order.
func ToDomain(local []LocalFeedItem) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, len(local))
	for _, item := range local {
		items = append(items, domain.FeedItem{
			ID:          item.ID,
			Description: item.Description,
			Location:    item.Location,
			ImageURL:    item.ImageURL,
		})
	}
	return items
}
