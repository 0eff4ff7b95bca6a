//go:build !purego

package index

import _ "github.com/mattn/go-sqlite3"

const (
	driverName = "sqlite3"
	dsnParams  = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
)
