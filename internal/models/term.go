// Package models defines the domain types for Lexicon.
package models

import "time"

// Category is the enumerated topic tag of a term. The empty value marks a
// requested definition that has no category yet.
type Category string

const (
	CategoryComputerScience Category = "computer science"
	CategoryLanguage        Category = "language"
	CategoryTools           Category = "tools"
)

// Categories lists every accepted category value.
var Categories = []Category{CategoryComputerScience, CategoryLanguage, CategoryTools}

// PrimaryLanguage is the partition code of the untranslated corpus.
const PrimaryLanguage = ""

// Term represents one parsed glossary entry. Identity for routing is the pair
// (Slug, Language).
type Term struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Category    Category  `json:"category,omitempty"`
	Published   bool      `json:"-"`
	Description string    `json:"description,omitempty"`
	Hidden      bool      `json:"hidden,omitempty"`
	OG          string    `json:"og,omitempty"`
	Body        string    `json:"-"`
	Language    string    `json:"lang,omitempty"`
}

// NavLink is a weak reference to an adjacent term in navigation order.
type NavLink struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Link returns the navigation reference for t.
func (t Term) Link() *NavLink {
	return &NavLink{Slug: t.Slug, Title: t.Title}
}

// RenderedTerm is a term with its body rendered to HTML and its neighbours resolved.
type RenderedTerm struct {
	Term
	HTML      string                 `json:"html"`
	Previous  *NavLink               `json:"previous"`
	Next      *NavLink               `json:"next"`
	Languages []LanguageAvailability `json:"languages"`
}

// ListingEntry is the projection of a term shown on the index page.
type ListingEntry struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Category Category `json:"category,omitempty"`
}

// Listing returns the index projection of t.
func (t Term) Listing() ListingEntry {
	return ListingEntry{Slug: t.Slug, Title: t.Title, Category: t.Category}
}

// Language is a configured secondary partition.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LanguageAvailability reports whether a translation of a slug exists.
type LanguageAvailability struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// FileMeta is a lightweight representation of a corpus file returned by list operations.
type FileMeta struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeedEntry is the projection of a term published in the syndication feed.
type FeedEntry struct {
	Title       string
	URL         string
	Description string
	Date        time.Time
}
