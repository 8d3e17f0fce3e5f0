package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docuchat/pkg/cache"
	"docuchat/pkg/core"
	"docuchat/pkg/logger"
	"docuchat/pkg/ocr"
	"docuchat/pkg/utils"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract text from a document, using the cache when possible",
	Long: "Extracts text from the given document. The result is stored in the\n" +
		"extraction cache keyed by the file's content fingerprint, so a second\n" +
		"run on the same content returns instantly without re-extraction.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd.Context(), args[0])
	},
}

func runExtract(ctx context.Context, path string) error {
	store, err := cache.NewStore(&appConfig.Cache, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	loader, err := core.NewLoader(appConfig, store, appLogger, ocrProgressPrinter(appLogger))
	if err != nil {
		return err
	}

	appLogger.Progress("📄", "Processing: %s", path)
	entry, err := loader.Load(ctx, path)
	if err != nil {
		return err
	}

	text := entry.Text()
	appLogger.ProgressAlways("✅", "Extracted %d pages (%d characters) via %s",
		entry.PageCount, len(text), entry.Method)
	if failed := entry.FailedPages(); len(failed) > 0 {
		appLogger.ProgressAlways("⚠️", "Pages with no recognized text: %v", failed)
	}

	if extractOutput != "" {
		if err := utils.AtomicWriteFile(utils.NormalizePath(extractOutput), []byte(text)); err != nil {
			return err
		}
		appLogger.ProgressAlways("💾", "Saved to: %s", extractOutput)
		return nil
	}

	showTextPreview(text)
	return nil
}

// ocrProgressPrinter renders per-page OCR progress the same way for every
// command that can trigger an OCR job.
func ocrProgressPrinter(log *logger.Logger) ocr.ProgressFunc {
	return func(ev ocr.Event) {
		if ev.Failed {
			log.ProgressAlways("⚠️", "Page %d/%d failed recognition", ev.Page, ev.Total)
			return
		}
		log.ProgressAlways("📃", "Page %d/%d: %d characters", ev.Page, ev.Total, ev.Chars)
	}
}

func showTextPreview(text string) {
	const previewLen = 500
	preview := strings.TrimSpace(text)
	if len(preview) > previewLen {
		preview = preview[:previewLen] + "..."
	}
	fmt.Printf("\n--- Text Preview ---\n%s\n", preview)
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"Write the extracted text to this file instead of showing a preview")
	rootCmd.AddCommand(extractCmd)
}
