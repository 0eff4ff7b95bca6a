package models

// FileMetadata is a lightweight representation returned by directory listings.
type FileMetadata struct {
	Path     string `json:"path"` // relative to the corpus root, forward slashes
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}
