// Package duckdb persists liftover results and graph index snapshots.
// Resolved offsets are stored in DuckDB (queryable, keyed by input fingerprints).
// Graph indexes are cached as gob files (fast, pure Go).
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for caching offset results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
// Modification times are stored as RFC 3339 text so nanoseconds survive.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS offset_results (
		gene_id VARCHAR,
		path_name VARCHAR,
		genome_path VARCHAR,
		genome_size BIGINT,
		genome_modtime VARCHAR,
		graph_path VARCHAR,
		graph_size BIGINT,
		graph_modtime VARCHAR,
		chrom VARCHAR,
		gene_start BIGINT,
		gene_end BIGINT,
		match_pos BIGINT,
		path_offset BIGINT,
		PRIMARY KEY (gene_id, path_name)
	)`)
	return err
}
