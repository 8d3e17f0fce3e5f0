// Package ocr rasterizes scanned PDF pages and runs character recognition on
// them, streaming per-page results so callers can report progress on jobs
// that run for minutes.
package ocr

import (
	"context"

	"docuchat/pkg/config"
	"docuchat/pkg/logger"
	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// Engine recognizes the text in a single page image.
type Engine interface {
	// Name returns the engine name for logging and entry metadata.
	Name() string

	// Recognize runs character recognition on one image file.
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// NewEngine builds the configured OCR engine.
func NewEngine(cfg *config.OCRConfig, log *logger.Logger) (Engine, error) {
	switch cfg.Engine {
	case types.OCREngineGosseract:
		return NewGosseractEngine(cfg.Language), nil
	case types.OCREngineTesseract:
		return NewTesseractEngine(cfg.TesseractPath, cfg.Language, execRunner{logger: log}), nil
	default:
		return nil, utils.NewUnsupportedError("unknown ocr engine: "+string(cfg.Engine), nil)
	}
}
