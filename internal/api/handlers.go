package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lexicon/internal/checksum"
	"github.com/starford/lexicon/internal/termservice"
)

// FeedWriter rebuilds the published feed file. Handlers compare it against
// nil, so disable rebuilds with a nil interface, never a typed nil pointer.
type FeedWriter interface {
	Write(ctx context.Context) error
	Path() string
}

// Handler holds API route handlers.
type Handler struct {
	svc   *termservice.Service
	feeds FeedWriter
}

// NewHandler creates a new Handler. A nil feeds makes POST /feed answer 501.
func NewHandler(svc *termservice.Service, feeds FeedWriter) *Handler {
	return &Handler{svc: svc, feeds: feeds}
}

// queryInt parses a non-negative integer query parameter. Absent means 0.
func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ListTerms handles GET /api/terms.
//
//	@Summary		List published terms, newest first
//	@Tags			terms
//	@Produce		json
//	@Param			lang	query		string	false	"Language partition (empty for primary)"
//	@Param			limit	query		int		false	"Page size (0 for all)"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	TermListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/terms [get]
func (h *Handler) ListTerms(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
		return
	}
	offset, ok := queryInt(r, "offset")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("offset must be a non-negative integer"))
		return
	}

	list, err := h.svc.ListTerms(r.Context(), r.URL.Query().Get("lang"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetTerm handles GET /api/terms/{slug}.
//
//	@Summary		Get a rendered term
//	@Tags			terms
//	@Produce		json
//	@Param			slug	path		string	true	"Term slug"
//	@Param			lang	query		string	false	"Language partition"
//	@Success		200		{object}	RenderedTerm
//	@Success		304
//	@Failure		404		{object}	errResponse
//	@Router			/terms/{slug} [get]
func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	term, err := h.svc.GetTerm(r.Context(), slug, r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := json.Marshal(term)
	if err != nil {
		writeError(w, r, err)
		return
	}
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if checksum.Match(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// GetNeighbors handles GET /api/terms/{slug}/neighbors.
//
//	@Summary		Previous and next terms in slug order
//	@Tags			terms
//	@Produce		json
//	@Param			slug	path		string	true	"Term slug"
//	@Param			lang	query		string	false	"Language partition"
//	@Success		200		{object}	NeighborsResponse
//	@Failure		404		{object}	errResponse
//	@Router			/terms/{slug}/neighbors [get]
func (h *Handler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	prev, next, err := h.svc.Neighbors(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NeighborsResponse{Previous: prev, Next: next})
}

// GetLanguages handles GET /api/terms/{slug}/languages.
//
//	@Summary		Translations available for a term
//	@Tags			terms
//	@Produce		json
//	@Param			slug	path		string	true	"Term slug"
//	@Success		200		{object}	LanguagesResponse
//	@Router			/terms/{slug}/languages [get]
func (h *Handler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.svc.Languages(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LanguagesResponse{Languages: langs})
}

// RebuildFeed handles POST /api/feed.
//
//	@Summary		Regenerate the RSS feed file
//	@Tags			feed
//	@Produce		json
//	@Success		200	{object}	FeedRebuildResponse
//	@Failure		401	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/feed [post]
func (h *Handler) RebuildFeed(w http.ResponseWriter, r *http.Request) {
	if h.feeds == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody("feed output not configured"))
		return
	}
	if err := h.feeds.Write(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("feed rebuilt on request", slog.String("path", h.feeds.Path()))
	writeJSON(w, http.StatusOK, FeedRebuildResponse{Path: h.feeds.Path()})
}
