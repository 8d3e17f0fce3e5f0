package extract

import (
	"context"
	"os"
	"unicode/utf8"

	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// TextFileExtractor handles plain text and markdown files.
type TextFileExtractor struct{}

var _ Extractor = (*TextFileExtractor)(nil)

// NewTextFileExtractor creates a new text file extractor.
func NewTextFileExtractor() *TextFileExtractor {
	return &TextFileExtractor{}
}

// Extract reads the file as UTF-8, falling back to Latin-1 when the bytes
// don't decode.
func (e *TextFileExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewIOError("failed to read file", err)
	}

	text := string(data)
	if !utf8.Valid(data) {
		text = decodeLatin1(data)
	}

	return &Result{Pages: singlePage(text), Method: types.MethodDirect}, nil
}

// Supports reports whether the extractor handles this extension.
func (e *TextFileExtractor) Supports(ext string) bool {
	return ext == "txt" || ext == "md"
}

// Name returns the extractor name.
func (e *TextFileExtractor) Name() string {
	return "text-file"
}

// decodeLatin1 maps each byte to the code point of the same value.
func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
