package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	"docuchat/pkg/logger"
	"docuchat/pkg/types"
)

// Classifier decides whether a PDF has a usable embedded text layer or is a
// scan that needs OCR. The probe is bounded: it reads at most ProbePages of
// the text layer and never rasterizes anything. Callers must check the cache
// by fingerprint before classifying, so unchanged files skip this entirely.
type Classifier struct {
	ProbePages       int
	MinTextThreshold int
	logger           *logger.Logger
}

// NewClassifier creates the direct-vs-scanned selector.
func NewClassifier(probePages, minTextThreshold int, log *logger.Logger) *Classifier {
	return &Classifier{
		ProbePages:       probePages,
		MinTextThreshold: minTextThreshold,
		logger:           log,
	}
}

// Classify probes the first ProbePages of the PDF's text layer. If the probe
// cannot even open the document, the call is ambiguous: policy is to report
// direct-text and let the loader fall back to OCR when direct extraction
// comes back empty.
func (c *Classifier) Classify(ctx context.Context, path string) (types.ContentClass, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		c.logger.Warn("Classification ambiguous for %s, defaulting to direct extraction: %v", path, err)
		return types.ContentDirectText, nil
	}
	defer file.Close()

	total := reader.NumPage()
	if total == 0 {
		// The text-layer parser sees no pages at all. Cross-check with a
		// structural page count; any page it finds must be image-only.
		if count, countErr := pdfcpu.PageCountFile(path); countErr == nil && count > 0 {
			c.logger.Debug("No parseable pages but structural count is %d, classifying as scanned", count)
		}
		return types.ContentScanned, nil
	}

	probe := c.ProbePages
	if probe > total {
		probe = total
	}

	chars, readable := 0, 0
	for i := 1; i <= probe; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		trimmed := strings.TrimSpace(text)
		if len(trimmed) > 0 {
			readable++
		}
		chars += len(trimmed)
	}

	class := c.decide(chars, readable)
	c.logger.Debug("Classified %s as %s (%d chars across %d/%d probed pages)",
		path, class, chars, readable, probe)
	return class, nil
}

// decide applies the density threshold to the probe counts. Zero readable
// pages is always scanned: over-OCR is safer than silently empty text.
func (c *Classifier) decide(chars, readablePages int) types.ContentClass {
	if readablePages == 0 {
		return types.ContentScanned
	}
	if chars < c.MinTextThreshold {
		return types.ContentScanned
	}
	return types.ContentDirectText
}
