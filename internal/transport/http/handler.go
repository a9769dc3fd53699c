package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"feeds/internal/domain"

	"github.com/google/uuid"
)

type feedLoader interface {
	Load(ctx context.Context) ([]domain.FeedItem, error)
}

type imageLoader interface {
	LoadImage(ctx context.Context, url string) ([]byte, error)
}

// Handler serves the feed and image endpoints.
type Handler struct {
	log    *slog.Logger
	feed   feedLoader
	images imageLoader
}

// NewHandler creates a Handler over the feed and image pipelines.
func NewHandler(log *slog.Logger, feed feedLoader, images imageLoader) *Handler {
	return &Handler{
		log:    log.With(slog.String("component", "http")),
		feed:   feed,
		images: images,
	}
}

type feedItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	ImageURL    string    `json:"image_url"`
}

type feedResponse struct {
	Items []feedItemResponse `json:"items"`
}

// getFeed serves GET /api/feed.
func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getFeed"
	log := h.log.With(slog.String("op", op))
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := h.feed.Load(r.Context())
	if err != nil {
		log.Error("Failed to load feed", slog.Any("error", err))
		respondWithError(w, http.StatusBadGateway, "could not load feed")
		return
	}
	resp := feedResponse{Items: make([]feedItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, feedItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Location:    item.Location,
			ImageURL:    item.ImageURL,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// getImage serves GET /api/images?url=...
func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getImage"
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		respondWithError(w, http.StatusBadRequest, "missing 'url' parameter")
		return
	}
	log := h.log.With(slog.String("op", op), slog.String("url", url))
	data, err := h.images.LoadImage(r.Context(), url)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Warn("Image not available")
		respondWithError(w, http.StatusNotFound, "image not found")
		return
	case err != nil:
		log.Error("Failed to load image", slog.Any("error", err))
		respondWithError(w, http.StatusBadGateway, "could not load image")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
