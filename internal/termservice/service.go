// Package termservice composes the repository and renderer into the values
// served by the HTTP API and the MCP tools.
package termservice

import (
	"context"
	"fmt"

	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/repository"
)

// Renderer converts a term body to HTML.
type Renderer interface {
	Render(body []byte) (string, error)
}

// TermList is one page of the listing.
type TermList struct {
	Terms []models.ListingEntry `json:"terms"`
	Total int                   `json:"total"`
}

// Service answers page-level queries.
type Service struct {
	repo   *repository.Repository
	render Renderer
}

// NewService creates a new term service.
func NewService(repo *repository.Repository, render Renderer) *Service {
	return &Service{repo: repo, render: render}
}

// GetTerm looks up a term, renders its body and resolves its neighbours and
// translations.
func (s *Service) GetTerm(ctx context.Context, slug, lang string) (*models.RenderedTerm, error) {
	term, err := s.repo.Lookup(ctx, slug, lang)
	if err != nil {
		return nil, err
	}
	html, err := s.render.Render([]byte(term.Body))
	if err != nil {
		return nil, fmt.Errorf("termservice: render %s: %w", slug, err)
	}
	prev, next, err := s.repo.Neighbors(ctx, slug, lang)
	if err != nil {
		return nil, err
	}
	langs, err := s.Languages(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &models.RenderedTerm{
		Term:      term,
		HTML:      html,
		Previous:  prev,
		Next:      next,
		Languages: langs,
	}, nil
}

// ListTerms returns one page of the listing for a partition.
func (s *Service) ListTerms(ctx context.Context, lang string, limit, offset int) (*TermList, error) {
	entries, total, err := s.repo.Listing(ctx, lang, limit, offset)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ListingEntry{}
	}
	return &TermList{Terms: entries, Total: total}, nil
}

// Neighbors returns the navigation links around slug.
func (s *Service) Neighbors(ctx context.Context, slug, lang string) (prev, next *models.NavLink, err error) {
	return s.repo.Neighbors(ctx, slug, lang)
}

// Languages reports which configured languages carry a translation of slug.
func (s *Service) Languages(ctx context.Context, slug string) ([]models.LanguageAvailability, error) {
	langs, err := s.repo.LanguageIndex(ctx, slug)
	if err != nil {
		return nil, err
	}
	if langs == nil {
		langs = []models.LanguageAvailability{}
	}
	return langs, nil
}
