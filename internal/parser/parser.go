// Package parser splits glossary documents into YAML front-matter and Markdown body.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/models"
)

var slugRe = regexp.MustCompile(`^[^/\s?#]+$`)

// Metadata is the front-matter block of a term.
type Metadata struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	Date        Date      `yaml:"date"`
	Category    string    `yaml:"category"`
	Published   *bool     `yaml:"published"`
	Description string    `yaml:"description"`
	Hidden      bool      `yaml:"hidden"`
	OG          yaml.Node `yaml:"og"`
}

// Validate checks the fields every term must carry.
func (m *Metadata) Validate() error {
	categories := make([]any, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}
	return validation.ValidateStruct(m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Slug, validation.Required, validation.Match(slugRe)),
		validation.Field(&m.Category, validation.In(categories...)),
	)
}

// Result holds the output of parsing one document.
type Result struct {
	Meta Metadata
	Body string
}

// Published reports whether the document should appear in any output.
// Documents without an explicit flag are published.
func (r *Result) Published() bool {
	return r.Meta.Published == nil || *r.Meta.Published
}

// Term builds the domain value for the given language partition.
func (r *Result) Term(lang string) models.Term {
	return models.Term{
		Slug:        r.Meta.Slug,
		Title:       r.Meta.Title,
		Date:        r.Meta.Date.Time,
		Category:    models.Category(r.Meta.Category),
		Published:   r.Published(),
		Description: r.Meta.Description,
		Hidden:      r.Meta.Hidden,
		OG:          r.Meta.OG.Value,
		Body:        r.Body,
		Language:    lang,
	}
}

// Parse extracts the front-matter and body from raw Markdown bytes.
// Any failure wraps apperr.ErrMalformedDocument.
func Parse(data []byte) (*Result, error) {
	block, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, fmt.Errorf("%w: front-matter: %v", apperr.ErrMalformedDocument, err)
	}
	if meta.OG.Kind != 0 && meta.OG.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: og: expected a scalar", apperr.ErrMalformedDocument)
	}
	meta.Title = normalizeTitle(meta.Title)
	meta.Slug = strings.TrimSpace(meta.Slug)

	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedDocument, err)
	}

	return &Result{Meta: meta, Body: body}, nil
}

// splitFrontmatter separates the YAML block (between leading --- delimiters)
// from the Markdown body.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	const delim = "---"
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(data, "\n")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", fmt.Errorf("%w: missing front-matter", apperr.ErrMalformedDocument)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", fmt.Errorf("%w: unterminated front-matter", apperr.ErrMalformedDocument)
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	// Drop the remainder of the closing delimiter line.
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = nil
	}
	return block, string(after), nil
}

// normalizeTitle replaces the first non-breaking space with a plain one.
func normalizeTitle(title string) string {
	return strings.Replace(title, "\u00a0", " ", 1)
}
