// Package repository loads the term corpus from storage and answers the
// listing, navigation and lookup queries built on it. Nothing is cached:
// every call re-reads its partition.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/metrics"
	"github.com/starford/lexicon/internal/models"
	"github.com/starford/lexicon/internal/parser"
	"github.com/starford/lexicon/internal/storage"
)

// DefaultExtension is the document file extension.
const DefaultExtension = ".md"

// Repository serves terms from a storage provider rooted at the corpus
// directory. The primary partition is the files directly in the root; each
// configured language has a partition in the sub-directory of that name.
type Repository struct {
	store     storage.Provider
	languages []models.Language
	ext       string
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// Option configures a Repository.
type Option func(*Repository)

// WithLanguages sets the secondary partitions, in display order.
func WithLanguages(langs ...models.Language) Option {
	return func(r *Repository) { r.languages = langs }
}

// WithExtension sets the document file extension.
func WithExtension(ext string) Option {
	return func(r *Repository) {
		if ext != "" {
			r.ext = ext
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Repository) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New creates a repository over store.
func New(store storage.Provider, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		ext:      DefaultExtension,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Languages returns the configured secondary partitions.
func (r *Repository) Languages() []models.Language {
	return slices.Clone(r.languages)
}

// List returns the published terms of a partition in listing order: newest
// first, terms without a date last, ties kept in file name order.
func (r *Repository) List(ctx context.Context, lang string) ([]models.Term, error) {
	terms, err := r.load(ctx, lang)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return newer(terms[i], terms[j])
	})
	return terms, nil
}

func newer(a, b models.Term) bool {
	switch {
	case a.Date.IsZero():
		return false
	case b.Date.IsZero():
		return true
	default:
		return a.Date.After(b.Date)
	}
}

// Navigation returns the published terms of a partition sorted by slug.
func (r *Repository) Navigation(ctx context.Context, lang string) ([]models.Term, error) {
	terms, err := r.load(ctx, lang)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(terms, func(a, b models.Term) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return terms, nil
}

// Lookup returns the published term with slug in a partition.
func (r *Repository) Lookup(ctx context.Context, slug, lang string) (models.Term, error) {
	terms, err := r.load(ctx, lang)
	if err != nil {
		return models.Term{}, err
	}
	for _, t := range terms {
		if t.Slug == slug {
			return t, nil
		}
	}
	return models.Term{}, fmt.Errorf("term %q: %w", slug, apperr.ErrNotFound)
}

// Neighbors returns the terms before and after slug in navigation order.
// Either link is nil at the ends of the sequence.
func (r *Repository) Neighbors(ctx context.Context, slug, lang string) (prev, next *models.NavLink, err error) {
	terms, err := r.Navigation(ctx, lang)
	if err != nil {
		return nil, nil, err
	}
	i := slices.IndexFunc(terms, func(t models.Term) bool { return t.Slug == slug })
	if i < 0 {
		return nil, nil, fmt.Errorf("term %q: %w", slug, apperr.ErrNotFound)
	}
	if i > 0 {
		prev = terms[i-1].Link()
	}
	if i < len(terms)-1 {
		next = terms[i+1].Link()
	}
	return prev, next, nil
}

// LanguageIndex reports, for every configured language in order, whether a
// published translation of slug exists. Partitions are read in parallel.
func (r *Repository) LanguageIndex(ctx context.Context, slug string) ([]models.LanguageAvailability, error) {
	out := make([]models.LanguageAvailability, len(r.languages))
	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range r.languages {
		out[i] = models.LanguageAvailability{Code: lang.Code, Name: lang.Name}
		g.Go(func() error {
			terms, err := r.load(gctx, lang.Code)
			if err != nil {
				return err
			}
			out[i].Available = slices.ContainsFunc(terms, func(t models.Term) bool {
				return t.Slug == slug
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Listing returns one page of the listing projection and the total number of
// published terms. A non-positive limit returns everything after offset.
func (r *Repository) Listing(ctx context.Context, lang string, limit, offset int) ([]models.ListingEntry, int, error) {
	terms, err := r.List(ctx, lang)
	if err != nil {
		return nil, 0, err
	}
	total := len(terms)
	offset = max(0, min(offset, total))
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}

	out := make([]models.ListingEntry, 0, end-offset)
	for _, t := range terms[offset:end] {
		out = append(out, t.Listing())
	}
	return out, total, nil
}

// partitionDir maps a language code to its directory, or reports that the
// code is not configured.
func (r *Repository) partitionDir(lang string) (string, bool) {
	if lang == models.PrimaryLanguage {
		return "", true
	}
	for _, l := range r.languages {
		if l.Code == lang {
			return lang, true
		}
	}
	return "", false
}

// load returns the published terms of a partition.
func (r *Repository) load(ctx context.Context, lang string) ([]models.Term, error) {
	terms, _, err := r.scan(ctx, lang)
	return terms, err
}

// Problem describes a document that was skipped while loading.
type Problem struct {
	Language string
	Path     string
	Err      error
}

func (p Problem) Error() string {
	return p.Path + ": " + p.Err.Error()
}

// scan reads every document of a partition in file name order. Documents
// that fail to parse are skipped, as is any document repeating a slug
// already seen; both are returned as problems.
func (r *Repository) scan(ctx context.Context, lang string) ([]models.Term, []Problem, error) {
	dir, ok := r.partitionDir(lang)
	if !ok {
		return nil, nil, fmt.Errorf("language %q: %w", lang, apperr.ErrNotFound)
	}
	label := metrics.PartitionLabel(lang)

	files, err := r.store.List(dir, r.ext)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && lang != models.PrimaryLanguage:
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("repository: list %q: %w: %w", label, apperr.ErrStorageUnavailable, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var (
		terms    []models.Term
		problems []Problem
		seen     = make(map[string]string, len(files))
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		log := r.logger.With(slog.String("path", f.Path), slog.String("partition", label))

		data, err := r.store.Read(f.Path)
		if err != nil {
			// Deleted between List and Read.
			log.Warn("skipping unreadable document", slog.String("error", err.Error()))
			r.recorder.IncDocument(label, metrics.OutcomeUnreadable)
			continue
		}
		res, err := parser.Parse(data)
		if err != nil {
			log.Warn("skipping malformed document", slog.String("error", err.Error()))
			r.recorder.IncDocument(label, metrics.OutcomeMalformed)
			problems = append(problems, Problem{Language: lang, Path: f.Path, Err: err})
			continue
		}
		if !res.Published() {
			r.recorder.IncDocument(label, metrics.OutcomeUnpublished)
			continue
		}
		slug := res.Meta.Slug
		if first, dup := seen[slug]; dup {
			err := fmt.Errorf("duplicate slug %q, first defined in %s", slug, first)
			log.Warn("skipping duplicate document", slog.String("slug", slug), slog.String("first", first))
			r.recorder.IncDocument(label, metrics.OutcomeDuplicate)
			problems = append(problems, Problem{Language: lang, Path: f.Path, Err: err})
			continue
		}
		seen[slug] = f.Path
		r.recorder.IncDocument(label, metrics.OutcomeLoaded)
		terms = append(terms, res.Term(lang))
	}
	return terms, problems, nil
}

// Check loads every partition and returns the documents that were skipped
// as malformed or duplicated.
func (r *Repository) Check(ctx context.Context) ([]Problem, error) {
	codes := []string{models.PrimaryLanguage}
	for _, l := range r.languages {
		codes = append(codes, l.Code)
	}
	var all []Problem
	for _, code := range codes {
		_, problems, err := r.scan(ctx, code)
		if err != nil {
			return nil, err
		}
		all = append(all, problems...)
	}
	return all, nil
}
