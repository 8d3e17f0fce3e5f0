package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"

	_ "modernc.org/sqlite"

	"docuchat/pkg/logger"
	"docuchat/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	fingerprint TEXT PRIMARY KEY,
	payload     BLOB NOT NULL,
	method      TEXT NOT NULL,
	page_count  INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);`

// SQLiteStore persists cache entries in an embedded SQLite database.
// INSERT OR IGNORE gives the idempotent-store semantics; a transaction
// commit gives atomic write-then-visible.
type SQLiteStore struct {
	db     *sql.DB
	logger *logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and migrates) the cache database under dir.
func NewSQLiteStore(dir string, log *logger.Logger) (*SQLiteStore, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, utils.NewCacheError("failed to create cache directory", err)
	}

	dsn := filepath.Join(dir, "extraction_cache.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, utils.NewCacheError("failed to open cache database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, utils.NewCacheError("failed to migrate cache database", err)
	}

	return &SQLiteStore{db: db, logger: log}, nil
}

// Lookup fetches and decodes the entry for a fingerprint.
func (s *SQLiteStore) Lookup(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cache_entries WHERE fingerprint = ?`, fingerprint,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, utils.NewCacheError("failed to query cache entry", err)
	}

	entry, err := UnmarshalEntry(payload)
	if err != nil {
		// Corrupt row: drop it and report a miss so the caller re-extracts.
		s.logger.Warn("Corrupt cache row for %s, deleting and treating as miss: %v", fingerprint, err)
		if _, delErr := s.db.ExecContext(ctx,
			`DELETE FROM cache_entries WHERE fingerprint = ?`, fingerprint); delErr != nil {
			s.logger.Warn("Failed to delete corrupt cache row %s: %v", fingerprint, delErr)
		}
		return nil, ErrNotFound
	}
	return entry, nil
}

// Store inserts the entry; an existing row for the fingerprint is kept.
func (s *SQLiteStore) Store(ctx context.Context, fingerprint string, entry *CacheEntry) error {
	payload, err := entry.Marshal()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cache_entries (fingerprint, payload, method, page_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fingerprint, payload, string(entry.Method), entry.PageCount, entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	)
	if err != nil {
		return utils.NewCacheError("failed to persist cache entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug("Cache entry for %s already present, keeping existing", fingerprint)
	} else {
		s.logger.Debug("Stored cache entry %s (%d pages, method=%s)", fingerprint, entry.PageCount, entry.Method)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
