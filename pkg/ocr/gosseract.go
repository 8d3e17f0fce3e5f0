package ocr

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	"docuchat/pkg/utils"
)

// GosseractEngine runs tesseract in-process through the gosseract bindings.
// A fresh client per page keeps recognition state isolated; the binding is
// not safe for concurrent reuse of one client.
type GosseractEngine struct {
	language      string
	clientFactory func() *gosseract.Client
}

var _ Engine = (*GosseractEngine)(nil)

// NewGosseractEngine creates an in-process tesseract engine.
func NewGosseractEngine(language string) *GosseractEngine {
	if language == "" {
		language = "eng"
	}
	return &GosseractEngine{
		language:      language,
		clientFactory: gosseract.NewClient,
	}
}

// Name returns the engine name.
func (e *GosseractEngine) Name() string {
	return "gosseract"
}

// Recognize runs character recognition on one image file.
func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", utils.NewOCRError("failed to set recognition language", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", utils.NewOCRError("failed to load page image", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", utils.NewOCRError("recognition failed", err)
	}
	return text, nil
}
