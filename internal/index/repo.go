package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Document kinds.
const (
	KindTheory   = "theory"
	KindExample  = "example"
	KindExercise = "exercise"
	KindSolution = "solution"
)

// ModuleRow represents a row in the modules table.
type ModuleRow struct {
	ID        string
	Ordinal   int
	Title     string
	Level     string
	Dir       string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// Document is one searchable text belonging to a module.
type Document struct {
	Path  string
	Kind  string
	Title string
	Body  string
}

// SearchResult represents one search hit.
type SearchResult struct {
	ModuleID string `json:"module_id"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
}

// UpsertModule replaces a module row and all of its documents within a transaction.
func (db *DB) UpsertModule(m ModuleRow, docs []Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(m.Tags)
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO modules (id, ordinal, title, level, dir, checksum, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ordinal    = excluded.ordinal,
			title      = excluded.title,
			level      = excluded.level,
			dir        = excluded.dir,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			updated_at = excluded.updated_at
	`, m.ID, m.Ordinal, m.Title, m.Level, m.Dir, m.Checksum, string(tagsJSON), m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert module: %w", err)
	}

	if err := ftsDeleteModule(tx, m.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE module_id = ?`, m.ID); err != nil {
		return fmt.Errorf("index: clear documents: %w", err)
	}
	if len(docs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO documents (path, module_id, kind, title, body) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare document insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range docs {
			if _, err := stmt.Exec(d.Path, m.ID, d.Kind, d.Title, d.Body); err != nil {
				return fmt.Errorf("index: insert document %s: %w", d.Path, err)
			}
			if err := ftsUpsert(tx, m.ID, d, m.Tags); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteModule removes a module, its documents and their FTS entries.
func (db *DB) DeleteModule(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := ftsDeleteModule(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE module_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete documents: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM modules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete module: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a module, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM modules WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id → checksum for every indexed module.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM modules`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// ListModules returns every indexed module in ordinal order.
func (db *DB) ListModules() ([]ModuleRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, ordinal, title, level, dir, checksum, tags, updated_at
		FROM modules
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list modules: %w", err)
	}
	defer rows.Close()

	var out []ModuleRow
	for rows.Next() {
		var (
			m        ModuleRow
			tagsJSON string
		)
		if err := rows.Scan(&m.ID, &m.Ordinal, &m.Title, &m.Level, &m.Dir, &m.Checksum, &tagsJSON, &m.UpdatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &m.Tags)
		out = append(out, m)
	}
	return out, rows.Err()
}
