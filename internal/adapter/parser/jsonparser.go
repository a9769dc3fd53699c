package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"feeds/internal/domain"

	"github.com/google/uuid"
)

type feedJSON struct {
	Items *[]itemJSON `json:"items"`
}

type itemJSON struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Image       string    `json:"image"`
}

// JSONParser decodes the remote feed payload:
// {"items": [{"id", "description", "location", "image"}]}.
type JSONParser struct {
	log *slog.Logger
}

// NewJSONParser creates a parser that logs rejected payloads to log.
func NewJSONParser(log *slog.Logger) *JSONParser {
	return &JSONParser{
		log: log.With(slog.String("component", "feed-parser")),
	}
}

// Parse maps body into feed items in payload order. Body must hold exactly one
// JSON object; trailing data, a missing "items" key, a wrong shape, an invalid
// id or an invalid image URL fail the whole payload.
func (p *JSONParser) Parse(ctx context.Context, body []byte) ([]domain.FeedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload feedJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		p.log.Warn("Error decoding JSON", slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("failed to decode JSON: missing items")
	}
	items := make([]domain.FeedItem, 0, len(*payload.Items))
	for i, dto := range *payload.Items {
		if dto.ID == uuid.Nil {
			return nil, fmt.Errorf("item %d: missing id", i)
		}
		if _, err := url.ParseRequestURI(dto.Image); err != nil {
			return nil, fmt.Errorf("item %d: invalid image url %q: %w", i, dto.Image, err)
		}
		items = append(items, domain.FeedItem{
			ID:          dto.ID,
			Description: dto.Description,
			Location:    dto.Location,
			ImageURL:    dto.Image,
		})
	}
	return items, nil
}
