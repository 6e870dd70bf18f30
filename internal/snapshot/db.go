// Package snapshot persists the entity store's state to the profile's
// SQLite database and restores it on load. Saving is best effort and
// deliberately not transactional with any network call: the remote
// backend stays the source of truth and a refetch repairs any drift.
package snapshot

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection for a profile's blast.db.
type DB struct {
	*sql.DB
}

// Open creates the SQLite connection with WAL mode and a busy timeout.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}
