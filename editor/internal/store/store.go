// Package store provides the SQLite persistence layer for the editor:
// page records, slot records, and the layout cache that backs the style
// tracker's flush path.
package store

import (
	"database/sql"

	"slotforge/dbopen"
)

// Store is the editor database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the editor SQLite database at path, applies the
// production pragmas and the editor schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
