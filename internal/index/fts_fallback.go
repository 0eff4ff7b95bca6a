//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE fallback on documents.body.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ Document, _ []string) error {
	// Body is already stored in the documents table; nothing extra to do.
	return nil
}

func ftsDeleteModule(_ *sql.Tx, _ string) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	like := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT d.module_id, d.path, d.kind, d.title, substr(d.body, 1, 200)
		FROM documents d
		JOIN modules m ON m.id = d.module_id
		WHERE d.title LIKE ? ESCAPE '\' OR d.body LIKE ? ESCAPE '\' OR m.tags LIKE ? ESCAPE '\'
		ORDER BY m.ordinal, d.path
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ModuleID, &r.Path, &r.Kind, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
