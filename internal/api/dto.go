package api

import (
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/termservice"
)

// TermListResponse wraps a page of the listing (aliased from the domain layer).
type TermListResponse = termservice.TermList

// RenderedTerm is the full term response type (aliased from the domain layer).
type RenderedTerm = models.RenderedTerm

// NeighborsResponse holds the navigation links around a term.
type NeighborsResponse struct {
	Previous *models.NavLink `json:"previous"`
	Next     *models.NavLink `json:"next"`
}

// LanguagesResponse lists the translations of a term.
type LanguagesResponse struct {
	Languages []models.LanguageAvailability `json:"languages" validate:"required"`
}

// FeedRebuildResponse is returned after the feed file has been rewritten.
type FeedRebuildResponse struct {
	Path string `json:"path" example:"feed.xml" validate:"required"`
}
