package api

import (
	"context"
	"net/http"

	"github.com/starford/lexicon/internal/checksum"
)

// FeedBuilder produces the serialized feed.
type FeedBuilder interface {
	Build(ctx context.Context) ([]byte, error)
}

// FeedHandler serves a freshly built RSS document (GET /feed.xml).
func FeedHandler(b FeedBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := b.Build(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		etag := checksum.ETag(data)
		w.Header().Set("ETag", etag)
		if checksum.Match(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
