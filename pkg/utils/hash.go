package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FingerprintFile computes the content fingerprint of a file: the hex SHA-256
// digest of its bytes. The path plays no part in the digest, so a renamed but
// unchanged file produces the same fingerprint.
func FingerprintFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", NewIOError("failed to open file for fingerprinting", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", NewIOError("failed to read file for fingerprinting", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FingerprintBytes computes the content fingerprint of an in-memory byte slice.
func FingerprintBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
