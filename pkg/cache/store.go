package cache

import (
	"context"
	"errors"

	"docuchat/pkg/config"
	"docuchat/pkg/logger"
	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// ErrNotFound is returned by Lookup when no entry exists for a fingerprint.
// A corrupt stored entry also surfaces as ErrNotFound so callers re-extract
// instead of crashing.
var ErrNotFound = errors.New("cache entry not found")

// Store persists fingerprint -> CacheEntry mappings across process restarts.
// Staleness is entirely determined by fingerprint mismatch; there is no
// invalidation operation.
type Store interface {
	// Lookup returns the entry for a fingerprint or ErrNotFound. It never
	// triggers extraction.
	Lookup(ctx context.Context, fingerprint string) (*CacheEntry, error)

	// Store persists an entry. It is idempotent: if a valid entry already
	// exists for the fingerprint, the write is a no-op (two extraction jobs
	// racing on the same fingerprint produce identical content).
	Store(ctx context.Context, fingerprint string, entry *CacheEntry) error

	// Close releases the store's resources.
	Close() error
}

// NewStore opens the configured cache backend.
func NewStore(cfg *config.CacheConfig, log *logger.Logger) (Store, error) {
	switch cfg.Backend {
	case types.CacheBackendSQLite:
		return NewSQLiteStore(cfg.Dir, log)
	case types.CacheBackendFiles:
		return NewFileStore(cfg.Dir, log)
	default:
		return nil, utils.NewValidationError("unknown cache backend: "+string(cfg.Backend), nil)
	}
}
