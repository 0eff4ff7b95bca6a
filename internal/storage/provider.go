// Package storage defines the corpus file-system abstraction.
package storage

import "github.com/starford/coursebook/internal/models"

// Provider is the interface for corpus file operations. All paths are
// relative to the corpus root and use forward slashes.
type Provider interface {
	// Dirs returns the names of the immediate sub-directories of dir, sorted.
	Dirs(dir string) ([]string, error)
	// Files returns metadata for the regular files directly inside dir, sorted by name.
	Files(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Remove deletes the regular file at path. A missing file is not an error.
	Remove(path string) error
}
