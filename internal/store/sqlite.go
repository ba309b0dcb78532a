package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/haricheung/bizflow/internal/tools"
	"github.com/haricheung/bizflow/internal/types"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLite is the SQLite-backed preference store.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
// Safe to call on every startup.
func OpenSQLite(path string) (*SQLite, error) {
	if err := tools.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	slog.Info("[MEMORY] sqlite preference store ready", "path", path)
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			key        TEXT NOT NULL UNIQUE,
			value      TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	return err
}

// Get returns the value stored under key.
//
// Expectations:
//   - Returns ("", false, nil) for an unknown key
//   - Returns the latest value written by Set
func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM memories WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key. The row keeps its id (and so its List position) on overwrite.
//
// Expectations:
//   - Inserts a new row for an unseen key
//   - Overwrites value and updated_at for an existing key without creating a duplicate
//   - Preserves created_at on overwrite
func (s *SQLite) Set(key, value string) error {
	now := nowUTC()
	_, err := s.db.Exec(`
		INSERT INTO memories (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now, now)
	if err != nil {
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	slog.Info("[MEMORY] preference saved", "key", key)
	return nil
}

// List returns all preferences in insertion order.
func (s *SQLite) List() ([]types.Preference, error) {
	rows, err := s.db.Query(`SELECT key, value FROM memories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []types.Preference
	for rows.Next() {
		var p types.Preference
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
