// Package db opens and migrates the service's SQLite database.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return database, nil
}

func migrate(database *sql.DB) error {
	_, err := database.Exec(schema)
	return err
}

const schema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS users (
  id               TEXT PRIMARY KEY,
  preferences      TEXT NOT NULL DEFAULT '[]',  -- JSON array of category labels
  wishlist         TEXT NOT NULL DEFAULT '[]',  -- JSON array of book ids
  owned_books      TEXT NOT NULL DEFAULT '[]',  -- JSON array of titles or ids
  preferred_format TEXT NOT NULL DEFAULT '',
  default_payment  TEXT NOT NULL DEFAULT '',
  default_address  TEXT NOT NULL DEFAULT '',
  recommendations  TEXT NOT NULL DEFAULT '[]'   -- JSON array of book records
);

CREATE TABLE IF NOT EXISTS books (
  id             TEXT PRIMARY KEY,
  title          TEXT NOT NULL,
  author         TEXT NOT NULL DEFAULT '',
  publisher      TEXT NOT NULL DEFAULT '',
  published_date TEXT NOT NULL DEFAULT '',
  description    TEXT NOT NULL DEFAULT '',
  thumbnail      TEXT NOT NULL DEFAULT '',
  categories     TEXT NOT NULL DEFAULT '[]',    -- JSON array
  price          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chat_messages (
  id         TEXT PRIMARY KEY,                  -- ULID, time-ordered
  user_id    TEXT NOT NULL,
  role       TEXT NOT NULL DEFAULT 'user',
  message    TEXT NOT NULL,
  embedding  TEXT,                              -- JSON float vector, nullable
  created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, id);
`
