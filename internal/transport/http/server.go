package http

import (
	"log/slog"
	"net/http"
)

// NewServer returns the API router wrapped in logging and CORS middleware.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/feed", h.getFeed)
	mux.HandleFunc("/api/images", h.getImage)
	mux.HandleFunc("/api/health", h.healthCheck)

	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = corsMiddleware()(handler)
	return handler
}
