// Package feed builds the RSS 2.0 document for the primary partition.
package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/starford/lexicon/internal/metrics"
	"github.com/starford/lexicon/internal/models"
)

// Generator is written to the channel generator element.
const Generator = "lexicon"

// Source yields published terms in listing order.
type Source interface {
	List(ctx context.Context, lang string) ([]models.Term, error)
}

// Renderer converts a term body to HTML.
type Renderer interface {
	Render(body []byte) (string, error)
}

// Writer persists the finished document.
type Writer interface {
	Write(path string, content []byte) error
}

// Config describes the channel.
type Config struct {
	Title       string
	SiteURL     string
	FeedURL     string
	Description string
	Language    string
	Author      string
	// Path is where Write stores the document, relative to the Writer root.
	Path string
}

// Builder synthesizes the feed from a Source.
type Builder struct {
	src      Source
	render   Renderer
	cfg      Config
	out      Writer
	now      func() time.Time
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Builder.
type Option func(*Builder)

// WithWriter sets the destination used by Write.
func WithWriter(w Writer) Option {
	return func(b *Builder) { b.out = w }
}

// WithClock overrides the time source for lastBuildDate.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(b *Builder) {
		if rec != nil {
			b.recorder = rec
		}
	}
}

// New creates a Builder. render should be the feed variant of the renderer.
func New(src Source, render Renderer, cfg Config, opts ...Option) *Builder {
	b := &Builder{
		src:      src,
		render:   render,
		cfg:      cfg,
		now:      time.Now,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TermURL returns the public address of a primary term.
func TermURL(siteURL, slug string) string {
	return strings.TrimRight(siteURL, "/") + "/" + url.PathEscape(slug)
}

// Entries returns one entry per published primary term, in listing order.
func (b *Builder) Entries(ctx context.Context) ([]models.FeedEntry, error) {
	terms, err := b.src.List(ctx, models.PrimaryLanguage)
	if err != nil {
		return nil, fmt.Errorf("feed: list terms: %w", err)
	}
	entries := make([]models.FeedEntry, 0, len(terms))
	for _, t := range terms {
		html, err := b.render.Render([]byte(t.Body))
		if err != nil {
			return nil, fmt.Errorf("feed: render %s: %w", t.Slug, err)
		}
		entries = append(entries, models.FeedEntry{
			Title:       t.Title,
			URL:         TermURL(b.cfg.SiteURL, t.Slug),
			Description: html,
			Date:        t.Date,
		})
	}
	return entries, nil
}

// Build returns the serialized RSS document.
func (b *Builder) Build(ctx context.Context) ([]byte, error) {
	out, err := b.build(ctx)
	if err != nil {
		b.recorder.IncFeedBuild(metrics.FeedFailed)
		return nil, err
	}
	b.recorder.IncFeedBuild(metrics.FeedSuccess)
	return out, nil
}

func (b *Builder) build(ctx context.Context) ([]byte, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return nil, err
	}

	ch := channel{
		Title:         b.cfg.Title,
		Link:          b.cfg.SiteURL,
		Description:   b.cfg.Description,
		Language:      b.cfg.Language,
		Generator:     Generator,
		LastBuildDate: b.now().UTC().Format(time.RFC1123Z),
	}
	if ch.Description == "" {
		ch.Description = b.cfg.Title
	}
	if b.cfg.FeedURL != "" {
		ch.AtomLink = &atomLink{Href: b.cfg.FeedURL, Rel: "self", Type: "application/rss+xml"}
	}
	for _, e := range entries {
		it := item{
			Title:       e.Title,
			Link:        e.URL,
			GUID:        guid{Value: e.URL, IsPermaLink: true},
			Description: cdata{Value: e.Description},
			Creator:     b.cfg.Author,
		}
		if !e.Date.IsZero() {
			it.PubDate = e.Date.UTC().Format(time.RFC1123Z)
		}
		ch.Items = append(ch.Items, it)
	}

	doc := rss{
		Version:   "2.0",
		XMLNSAtom: "http://www.w3.org/2005/Atom",
		XMLNSDC:   "http://purl.org/dc/elements/1.1/",
		Channel:   ch,
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: encode: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// Path returns where Write stores the document.
func (b *Builder) Path() string { return b.cfg.Path }

// Write builds the document and replaces the file at Config.Path.
func (b *Builder) Write(ctx context.Context) error {
	if b.out == nil {
		return errors.New("feed: no writer configured")
	}
	data, err := b.Build(ctx)
	if err != nil {
		return err
	}
	if err := b.out.Write(b.cfg.Path, data); err != nil {
		return fmt.Errorf("feed: write %s: %w", b.cfg.Path, err)
	}
	b.logger.Info("feed written", slog.String("path", b.cfg.Path), slog.Int("bytes", len(data)))
	return nil
}
