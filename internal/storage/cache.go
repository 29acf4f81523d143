// Package storage persists resolved header sets between runs. Tracing every
// header of a large library spawns one compiler process per header, so the
// forest is cached keyed by library name and a fingerprint of the header
// directory; any change to the installed headers invalidates the entry.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Cache provides lookup and storage of resolved header sets
type Cache struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// CachedResult is one persisted resolution outcome
type CachedResult struct {
	LibHeaders []string
	SysHeaders []string
	// Forest is the decompressed JSON encoding of the inclusion forest
	Forest []byte
}

// NewCache creates a cache over an open database
func NewCache(db *DB) (*Cache, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Cache{db: db, enc: enc, dec: dec}, nil
}

// Load retrieves the cached result for a library at the given fingerprint.
// Returns ok=false when no entry matches.
func (c *Cache) Load(library, fingerprint string) (*CachedResult, bool, error) {
	var libJSON, sysJSON string
	var blob []byte

	err := c.db.conn.QueryRow(`
		SELECT lib_headers, sys_headers, forest_blob
		FROM header_sets
		WHERE library = ? AND fingerprint = ?
	`, library, fingerprint).Scan(&libJSON, &sysJSON, &blob)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("header set lookup failed: %w", err)
	}

	var result CachedResult
	if err := json.Unmarshal([]byte(libJSON), &result.LibHeaders); err != nil {
		return nil, false, fmt.Errorf("invalid lib_headers entry: %w", err)
	}
	if err := json.Unmarshal([]byte(sysJSON), &result.SysHeaders); err != nil {
		return nil, false, fmt.Errorf("invalid sys_headers entry: %w", err)
	}
	result.Forest, err = c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid forest blob: %w", err)
	}

	return &result, true, nil
}

// Store persists a resolution outcome, replacing any entry for the same
// library and fingerprint. Older fingerprints of the library are dropped:
// they describe header trees that no longer exist on disk.
func (c *Cache) Store(library, fingerprint string, result *CachedResult) error {
	libJSON, err := json.Marshal(result.LibHeaders)
	if err != nil {
		return fmt.Errorf("failed to encode lib_headers: %w", err)
	}
	sysJSON, err := json.Marshal(result.SysHeaders)
	if err != nil {
		return fmt.Errorf("failed to encode sys_headers: %w", err)
	}
	blob := c.enc.EncodeAll(result.Forest, nil)

	tx, err := c.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM header_sets WHERE library = ?`, library); err != nil {
		return fmt.Errorf("failed to drop stale entries: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO header_sets (library, fingerprint, lib_headers, sys_headers, forest_blob, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, library, fingerprint, string(libJSON), string(sysJSON), blob,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store header set: %w", err)
	}

	return tx.Commit()
}

// Invalidate removes all cached entries for a library
func (c *Cache) Invalidate(library string) error {
	if _, err := c.db.conn.Exec(`DELETE FROM header_sets WHERE library = ?`, library); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", library, err)
	}
	return nil
}
