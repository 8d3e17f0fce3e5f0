package ocr

import (
	"context"
	"strings"

	"docuchat/pkg/utils"
)

// TesseractEngine shells out to the tesseract binary, one invocation per
// page image. Keeping it exec-based means no cgo requirement for the
// default build.
type TesseractEngine struct {
	path     string
	language string
	runner   Runner
}

var _ Engine = (*TesseractEngine)(nil)

// NewTesseractEngine creates an engine backed by the external tesseract binary.
func NewTesseractEngine(path, language string, runner Runner) *TesseractEngine {
	if path == "" {
		path = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{path: path, language: language, runner: runner}
}

// Name returns the engine name.
func (e *TesseractEngine) Name() string {
	return "tesseract"
}

// Recognize runs `tesseract <image> stdout -l <lang>` and returns the text.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.path, imagePath, "stdout", "-l", e.language)
	if err != nil {
		return "", utils.NewOCRError("tesseract failed: "+strings.TrimSpace(string(errb)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
