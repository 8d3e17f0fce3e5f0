package cmd

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"docuchat/pkg/cache"
	"docuchat/pkg/core"
	"docuchat/pkg/utils"
)

var prewarmDir string

var prewarmCmd = &cobra.Command{
	Use:   "prewarm",
	Short: "Extract and cache every supported document in the data directory",
	Long: "Walks the data directory and extracts every supported document into\n" +
		"the cache ahead of time, so later searches start instantly. Documents\n" +
		"are processed in parallel; a document that fails extraction is\n" +
		"reported and skipped, never aborting the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := prewarmDir
		if dir == "" {
			dir = appConfig.DataDir
		}
		return runPrewarm(cmd.Context(), dir)
	},
}

func runPrewarm(ctx context.Context, dir string) error {
	store, err := cache.NewStore(&appConfig.Cache, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	loader, err := core.NewLoader(appConfig, store, appLogger, ocrProgressPrinter(appLogger))
	if err != nil {
		return err
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && utils.IsSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return utils.NewIOError("failed to scan data directory", err)
	}
	if len(files) == 0 {
		appLogger.ProgressAlways("📭", "No supported documents found in %s", dir)
		return nil
	}

	appLogger.ProgressAlways("🔥", "Prewarming cache for %d documents in %s", len(files), dir)

	var done, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(appConfig.OCR.MaxConcurrency)

	for _, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if _, err := loader.Load(gctx, path); err != nil {
				failed.Add(1)
				appLogger.Warn("Failed to extract %s: %v", path, err)
				return nil
			}
			done.Add(1)
			appLogger.Progress("✅", "Cached: %s", filepath.Base(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	appLogger.ProgressAlways("🏁", "Prewarm complete: %d cached, %d failed", done.Load(), failed.Load())
	return nil
}

func init() {
	prewarmCmd.Flags().StringVarP(&prewarmDir, "dir", "d", "",
		"Directory to scan (defaults to the configured data directory)")
	rootCmd.AddCommand(prewarmCmd)
}
