package core

import (
	"context"
	"fmt"
	"path/filepath"

	"docuchat/pkg/cache"
	"docuchat/pkg/config"
	"docuchat/pkg/extract"
	"docuchat/pkg/logger"
	"docuchat/pkg/ocr"
	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// Loader resolves a document to its extracted text, reading the cache first
// and extracting at most once per content fingerprint. Two files with the
// same bytes share one cache entry regardless of their paths.
type Loader struct {
	cfg     *config.Config
	ensurer *cache.Ensurer
	logger  *logger.Logger

	// Extraction steps are fields so tests can substitute fakes.
	classify   func(ctx context.Context, path string) (types.ContentClass, error)
	directPDF  func(ctx context.Context, path string) (*extract.Result, error)
	runOCR     func(ctx context.Context, path string) ([]types.PageText, error)
	extractors []extract.Extractor
}

// NewLoader wires the classifier, extractors and OCR pipeline over the given
// store. Progress events from OCR jobs are forwarded to fn when non-nil.
func NewLoader(cfg *config.Config, store cache.Store, log *logger.Logger, fn ocr.ProgressFunc) (*Loader, error) {
	classifier := extract.NewClassifier(cfg.ProbePages, cfg.MinTextThreshold, log)
	pdfExtractor := extract.NewPDFTextExtractor(log)

	var opts []ocr.Option
	if fn != nil {
		opts = append(opts, ocr.WithProgress(fn))
	}
	pipeline, err := ocr.NewPipeline(&cfg.OCR, log, opts...)
	if err != nil {
		return nil, err
	}

	return &Loader{
		cfg:       cfg,
		ensurer:   cache.NewEnsurer(store, log),
		logger:    log,
		classify:  classifier.Classify,
		directPDF: pdfExtractor.Extract,
		runOCR:    pipeline.Extract,
		extractors: []extract.Extractor{
			extract.NewTextFileExtractor(),
			extract.NewDocxExtractor(),
			extract.NewHTMLExtractor(),
		},
	}, nil
}

// Load returns the cached extraction for path, extracting and storing it on
// a miss. Concurrent Load calls for identical content coalesce into one
// extraction.
func (l *Loader) Load(ctx context.Context, path string) (*cache.CacheEntry, error) {
	path = utils.NormalizePath(path)
	info, err := utils.GetFileInfo(path)
	if err != nil {
		return nil, err
	}
	if !utils.IsSupportedFile(path) {
		return nil, utils.NewUnsupportedError(
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(path)), nil)
	}

	return l.ensurer.Ensure(ctx, info.Fingerprint, func(ctx context.Context) (*cache.CacheEntry, error) {
		return l.extractFile(ctx, path, info)
	})
}

// Lookup reports the cached entry without triggering extraction.
func (l *Loader) Lookup(ctx context.Context, path string) (*cache.CacheEntry, error) {
	info, err := utils.GetFileInfo(utils.NormalizePath(path))
	if err != nil {
		return nil, err
	}
	return l.ensurer.Lookup(ctx, info.Fingerprint)
}

func (l *Loader) extractFile(ctx context.Context, path string, info *types.FileInfo) (*cache.CacheEntry, error) {
	if info.Extension == "pdf" {
		return l.extractPDF(ctx, path, info)
	}

	for _, ex := range l.extractors {
		if !ex.Supports(info.Extension) {
			continue
		}
		l.logger.Debug("Extracting %s with %s", path, ex.Name())
		result, err := ex.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		return cache.NewEntry(info.Fingerprint, result.Method, result.Pages), nil
	}
	return nil, utils.NewUnsupportedError(
		fmt.Sprintf("no extractor for file type: %s", info.Extension), nil)
}

// extractPDF classifies the PDF and runs the matching backend. A direct
// extraction that comes back empty falls through to OCR, so a misclassified
// scanned document still gets its text.
func (l *Loader) extractPDF(ctx context.Context, path string, info *types.FileInfo) (*cache.CacheEntry, error) {
	class, err := l.classify(ctx, path)
	if err != nil {
		return nil, err
	}

	if class == types.ContentDirectText {
		result, err := l.directPDF(ctx, path)
		if err == nil && !result.Empty() {
			return cache.NewEntry(info.Fingerprint, types.MethodDirect, result.Pages), nil
		}
		if err != nil {
			l.logger.Warn("Direct text extraction failed for %s, falling back to OCR: %v", path, err)
		} else {
			l.logger.Warn("Direct text extraction returned no text for %s, falling back to OCR", path)
		}
	}

	pages, err := l.runOCR(ctx, path)
	if err != nil {
		return nil, err
	}
	return cache.NewEntry(info.Fingerprint, types.MethodOCR, pages), nil
}
