// Package storage defines the file-system abstraction over the term corpus
// and the publish directory.
package storage

import "github.com/starford/lexicon/internal/models"

// Provider is the interface for corpus file operations. All paths are
// relative to the provider root.
type Provider interface {
	// List returns metadata for the files directly inside dir whose name
	// ends in ext. Subdirectories are not descended. A missing dir yields an
	// error wrapping fs.ErrNotExist.
	List(dir, ext string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
