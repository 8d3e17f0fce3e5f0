package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// CacheEntry maps a content fingerprint to its extracted text. Entries are
// immutable once stored: an edited file hashes to a new fingerprint and gets
// a new, independent entry.
type CacheEntry struct {
	Fingerprint string                 `json:"fingerprint"`
	Method      types.ExtractionMethod `json:"method"`
	Pages       []types.PageText       `json:"pages"`
	PageCount   int                    `json:"page_count"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewEntry builds a cache entry from ordered page texts.
func NewEntry(fingerprint string, method types.ExtractionMethod, pages []types.PageText) *CacheEntry {
	return &CacheEntry{
		Fingerprint: fingerprint,
		Method:      method,
		Pages:       pages,
		PageCount:   len(pages),
		CreatedAt:   time.Now().UTC(),
	}
}

// Text joins the page texts in order. OCR entries keep per-page headers so
// downstream citations can point at a page; direct extractions are joined
// with plain newlines, matching what the text layer produced.
func (e *CacheEntry) Text() string {
	var b strings.Builder
	for _, page := range e.Pages {
		if page.Failed {
			continue
		}
		if e.Method == types.MethodOCR {
			fmt.Fprintf(&b, "=== Page %d ===\n", page.Number)
		}
		b.WriteString(page.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// FailedPages returns the 1-based page numbers whose extraction failed.
func (e *CacheEntry) FailedPages() []int {
	var failed []int
	for _, page := range e.Pages {
		if page.Failed {
			failed = append(failed, page.Number)
		}
	}
	return failed
}

// Complete reports whether every page was extracted successfully.
func (e *CacheEntry) Complete() bool {
	return len(e.FailedPages()) == 0
}

// Marshal serializes the entry for durable storage.
func (e *CacheEntry) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, utils.NewConversionError("failed to encode cache entry", err)
	}
	return data, nil
}

// UnmarshalEntry deserializes a stored entry. A failure here means the
// stored form is corrupt; callers treat that as a cache miss.
func UnmarshalEntry(data []byte) (*CacheEntry, error) {
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, utils.NewCacheError("failed to decode cache entry", err)
	}
	if entry.Fingerprint == "" {
		return nil, utils.NewCacheError("cache entry missing fingerprint", nil)
	}
	return &entry, nil
}
