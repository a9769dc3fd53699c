package storage

import "feeds/internal/cache"

// Store is a persistence backend for both the feed cache and the image cache.
type Store interface {
	cache.FeedStore
	cache.ImageStore
	Close() error
}
