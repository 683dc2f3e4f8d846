// Package checksum derives content validators for HTTP caching.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong entity tag for data. The digest is shortened to
// 16 bytes, which is plenty for one resource's representations.
func ETag(data []byte) string {
	return `"` + Sum(data)[:32] + `"`
}

// Match reports whether an If-None-Match header value matches etag.
// The header may list several tags, weak ones included, or be "*".
func Match(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
