package domain

import "github.com/google/uuid"

// FeedItem is a single entry of the image feed.
// Description and Location are optional and nil when the source omits them.
type FeedItem struct {
	ID          uuid.UUID
	Description *string
	Location    *string
	ImageURL    string
}
