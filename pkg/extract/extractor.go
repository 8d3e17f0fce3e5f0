// Package extract provides direct (non-OCR) text extraction for the
// supported document types, plus the selector that decides whether a PDF
// needs OCR at all.
package extract

import (
	"context"

	"docuchat/pkg/types"
)

// Result is the ordered page text of one document plus how it was obtained.
type Result struct {
	Pages  []types.PageText
	Method types.ExtractionMethod
}

// Empty reports whether extraction produced no usable text.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	for _, page := range r.Pages {
		if !page.Failed && len(page.Text) > 0 {
			return false
		}
	}
	return true
}

// TextLen returns the total number of extracted characters.
func (r *Result) TextLen() int {
	n := 0
	for _, page := range r.Pages {
		n += len(page.Text)
	}
	return n
}

// Extractor pulls text out of one document format without OCR.
type Extractor interface {
	// Extract returns ordered page texts for the file.
	Extract(ctx context.Context, path string) (*Result, error)

	// Supports reports whether the extractor handles this extension.
	Supports(ext string) bool

	// Name returns the extractor name for result metadata.
	Name() string
}

func singlePage(text string) []types.PageText {
	return []types.PageText{{Number: 1, Text: text}}
}
