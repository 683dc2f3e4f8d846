// Package testutil provides shared helpers for building throwaway corpora.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/lexicon/internal/storage"
)

// Doc describes one fixture document.
type Doc struct {
	Slug      string
	Title     string
	Date      string
	Category  string
	Published *bool
	Body      string
}

// Markdown renders d as a document with front-matter.
func (d Doc) Markdown() string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", d.Title)
	fmt.Fprintf(&b, "slug: %s\n", d.Slug)
	if d.Date != "" {
		fmt.Fprintf(&b, "date: %s\n", d.Date)
	}
	if d.Category != "" {
		fmt.Fprintf(&b, "category: %s\n", d.Category)
	}
	if d.Published != nil {
		fmt.Fprintf(&b, "published: %t\n", *d.Published)
	}
	b.WriteString("---\n")
	b.WriteString(d.Body)
	return b.String()
}

// Bool returns a pointer to v, for Doc.Published.
func Bool(v bool) *bool { return &v }

// TestCorpus creates a temporary corpus directory with a storage.Provider.
func TestCorpus(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes raw content to rel under root, creating directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteDoc writes d to <root>/<dir>/<name>.
func WriteDoc(t *testing.T, root, dir, name string, d Doc) {
	t.Helper()
	WriteFile(t, root, filepath.ToSlash(filepath.Join(dir, name)), d.Markdown())
}
