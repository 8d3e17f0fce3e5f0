package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"

	"docuchat/pkg/logger"
	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// PDFTextExtractor pulls the embedded text layer out of a PDF, one entry per
// page. It never rasterizes; scanned documents come back empty and are the
// OCR pipeline's job.
type PDFTextExtractor struct {
	logger *logger.Logger
}

var _ Extractor = (*PDFTextExtractor)(nil)

// NewPDFTextExtractor creates a direct PDF text extractor.
func NewPDFTextExtractor(log *logger.Logger) *PDFTextExtractor {
	return &PDFTextExtractor{logger: log}
}

// Extract reads every page's text layer. A single unreadable page yields a
// failed placeholder rather than aborting the document.
func (e *PDFTextExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, utils.NewConversionError("failed to open PDF", err)
	}
	defer file.Close()

	total := reader.NumPage()
	pages := make([]types.PageText, 0, total)

	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, types.PageText{Number: i, Failed: true})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Failed to read text layer of page %d: %v", i, err)
			pages = append(pages, types.PageText{Number: i, Failed: true})
			continue
		}
		pages = append(pages, types.PageText{Number: i, Text: strings.TrimSpace(text)})
	}

	return &Result{Pages: pages, Method: types.MethodDirect}, nil
}

// Supports reports whether the extractor handles this extension.
func (e *PDFTextExtractor) Supports(ext string) bool {
	return ext == "pdf"
}

// Name returns the extractor name.
func (e *PDFTextExtractor) Name() string {
	return "pdf-text"
}
