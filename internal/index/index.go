package index

// ModuleIndex is the set of index operations the course service, Sync and
// Watch depend on.
type ModuleIndex interface {
	UpsertModule(m ModuleRow, docs []Document) error
	DeleteModule(id string) error
	GetChecksum(id string) (string, error)
	ListModules() ([]ModuleRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ModuleIndex at compile time.
var _ ModuleIndex = (*DB)(nil)
