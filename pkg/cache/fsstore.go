package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"docuchat/pkg/logger"
	"docuchat/pkg/utils"
)

// fingerprintPattern guards against path traversal through a crafted key.
var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{16,128}$`)

// FileStore keeps one JSON file per fingerprint under a cache directory.
// Writes land in a temp file first and are renamed into place, so readers
// never observe a partially written entry.
type FileStore struct {
	dir    string
	logger *logger.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (and creates if needed) a directory-backed store.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, utils.NewCacheError("failed to create cache directory", err)
	}
	return &FileStore{dir: utils.NormalizePath(dir), logger: log}, nil
}

// Lookup reads and decodes the entry file for a fingerprint.
func (s *FileStore) Lookup(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.entryPath(fingerprint)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, utils.NewCacheError("failed to read cache entry", err)
	}

	entry, err := UnmarshalEntry(data)
	if err != nil {
		// Corrupt on disk: report a miss so the caller re-extracts.
		s.logger.Warn("Corrupt cache entry for %s, treating as miss: %v", fingerprint, err)
		return nil, ErrNotFound
	}
	return entry, nil
}

// Store writes the entry unless a valid one is already present.
func (s *FileStore) Store(ctx context.Context, fingerprint string, entry *CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.entryPath(fingerprint)
	if err != nil {
		return err
	}

	// First valid write wins; only replace an existing file if it no longer
	// decodes (a stale partial write from a crashed process).
	if existing, err := os.ReadFile(path); err == nil {
		if _, decodeErr := UnmarshalEntry(existing); decodeErr == nil {
			s.logger.Debug("Cache entry for %s already present, keeping existing", fingerprint)
			return nil
		}
		s.logger.Warn("Replacing corrupt cache entry for %s", fingerprint)
	}

	data, err := entry.Marshal()
	if err != nil {
		return err
	}
	if err := utils.AtomicWriteFile(path, data); err != nil {
		return utils.NewCacheError("failed to persist cache entry", err)
	}
	s.logger.Debug("Stored cache entry %s (%d pages, method=%s)", fingerprint, entry.PageCount, entry.Method)
	return nil
}

// Close is a no-op for the file-backed store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) entryPath(fingerprint string) (string, error) {
	if !fingerprintPattern.MatchString(fingerprint) {
		return "", utils.NewValidationError("malformed fingerprint: "+fingerprint, nil)
	}
	return filepath.Join(s.dir, fingerprint+".json"), nil
}
