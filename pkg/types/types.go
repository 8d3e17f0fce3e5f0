package types

import "time"

// ExtractionMethod identifies how text was obtained from a document.
type ExtractionMethod string

const (
	MethodDirect ExtractionMethod = "direct" // embedded text layer
	MethodOCR    ExtractionMethod = "ocr"    // rasterized pages + character recognition
)

// ContentClass is the selector's verdict for a PDF file.
type ContentClass string

const (
	ContentDirectText ContentClass = "direct-text" // has a usable embedded text layer
	ContentScanned    ContentClass = "scanned"     // image-only pages, needs OCR
)

// OCREngineKind selects the OCR implementation.
type OCREngineKind string

const (
	OCREngineTesseract OCREngineKind = "tesseract" // external tesseract binary
	OCREngineGosseract OCREngineKind = "gosseract" // in-process via gosseract bindings
)

// CacheBackend selects the durable cache store implementation.
type CacheBackend string

const (
	CacheBackendFiles  CacheBackend = "files"
	CacheBackendSQLite CacheBackend = "sqlite"
)

// PageText is one page's extracted text. Page numbers are 1-based and the
// slice is ordered. A page whose extraction failed carries empty text and
// Failed=true so a document with one corrupt page still yields the rest.
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Failed bool   `json:"failed,omitempty"`
}

// FileInfo contains basic information about a source file.
// ModTime is advisory only; the content fingerprint is the sole cache key.
type FileInfo struct {
	Fingerprint string    `json:"fingerprint"`
	Extension   string    `json:"extension"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
}
