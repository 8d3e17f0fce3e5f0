package utils

import (
	"os"
	"path/filepath"
	"strings"

	"docuchat/pkg/types"
)

// Default permissions for files and directories created by the tool.
const (
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755
)

// supportedExtensions are the document types the loader accepts.
var supportedExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
	"txt":  true,
	"md":   true,
	"html": true,
	"htm":  true,
}

// NormalizePath standardizes file paths
func NormalizePath(path string) string {
	return filepath.Clean(path)
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return NewValidationError("directory path cannot be empty", nil)
	}
	return os.MkdirAll(dirPath, DefaultDirPermission)
}

// FileExtension returns the lowercase extension without the leading dot.
func FileExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// IsSupportedFile reports whether the loader handles this file type.
func IsSupportedFile(path string) bool {
	return supportedExtensions[FileExtension(path)]
}

// GetFileInfo stats a file and computes its content fingerprint.
func GetFileInfo(path string) (*types.FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, NewIOError("failed to stat file", err)
	}

	fingerprint, err := FingerprintFile(path)
	if err != nil {
		return nil, err
	}

	return &types.FileInfo{
		Fingerprint: fingerprint,
		Extension:   FileExtension(path),
		Size:        stat.Size(),
		ModTime:     stat.ModTime(),
	}, nil
}

// AtomicWriteFile writes data to a temp file in the target directory and
// renames it into place, so a reader never observes a partially written file.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return NewIOError("failed to create target directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return NewIOError("failed to create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NewIOError("failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NewIOError("failed to close temp file", err)
	}
	if err := os.Chmod(tmpName, DefaultFilePermission); err != nil {
		os.Remove(tmpName)
		return NewIOError("failed to set file permissions", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return NewIOError("failed to move file into place", err)
	}
	return nil
}
