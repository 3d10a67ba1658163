// Package store persists the document workflow's entities in SQLite:
// templates and their placeholder catalog, users, generated documents,
// submissions with their review verdicts, and notifications.
package store

import "database/sql"

// Store wraps the workflow database.
type Store struct {
	DB *sql.DB
}

// New creates a Store over an opened database.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// ApplySchema creates all tables and indexes if they don't exist.
func (s *Store) ApplySchema() error {
	_, err := s.DB.Exec(Schema)
	return err
}
