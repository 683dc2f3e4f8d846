package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lexicon/internal/termservice"
)

// NewRouter creates a chi router with all API routes mounted.
// Read routes are public; authEnabled and token guard the feed rebuild
// trigger. sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *termservice.Service, feeds FeedWriter, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, feeds)

	r := chi.NewRouter()

	r.Get("/terms", h.ListTerms)
	r.Get("/terms/{slug}", h.GetTerm)
	r.Get("/terms/{slug}/neighbors", h.GetNeighbors)
	r.Get("/terms/{slug}/languages", h.GetLanguages)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Post("/feed", h.RebuildFeed)
	})

	return r
}
