// Package store is the persistence layer for decision records: an SQLite
// decisions table with an idempotent upsert keyed by process number.
package store

import "database/sql"

// Store wraps the decisions database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
