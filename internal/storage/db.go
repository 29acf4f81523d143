package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"fdg/internal/logging"
)

// DB represents a database connection for the persistent result cache
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the cache database at <workspace>/.fdg/fdg.db,
// creating the schema when needed.
func Open(workspace string, logger *logging.Logger) (*DB, error) {
	fdgDir := filepath.Join(workspace, ".fdg")
	if err := os.MkdirAll(fdgDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .fdg directory: %w", err)
	}

	dbPath := filepath.Join(fdgDir, "fdg.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on lock
		"PRAGMA temp_store=MEMORY",  // Use memory for temp tables
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if err := db.createSchema(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if logger != nil {
		logger.Debug("cache database opened", map[string]interface{}{
			"path": dbPath,
		})
	}

	return db, nil
}

func (db *DB) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS header_sets (
		library     TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		lib_headers TEXT NOT NULL,
		sys_headers TEXT NOT NULL,
		forest_blob BLOB NOT NULL,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (library, fingerprint)
	);
	CREATE INDEX IF NOT EXISTS idx_header_sets_library ON header_sets(library);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.dbPath
}
