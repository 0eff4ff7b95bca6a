// Package index provides SQLite-backed module indexing with optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS modules (
	id         TEXT PRIMARY KEY,
	ordinal    INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	level      TEXT NOT NULL DEFAULT '',
	dir        TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
	path      TEXT PRIMARY KEY,
	module_id TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
	kind      TEXT NOT NULL,
	title     TEXT NOT NULL DEFAULT '',
	body      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_documents_module ON documents(module_id);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open(driverName, dsn+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
