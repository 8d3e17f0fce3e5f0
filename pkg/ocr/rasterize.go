package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"docuchat/pkg/logger"
	"docuchat/pkg/utils"
)

// Rasterizer converts a PDF into one image file per page, returned in page
// order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// popplerRasterizer shells out to pdftoppm, which writes
// <outDir>/page-<n>.png for every page.
type popplerRasterizer struct {
	path   string
	dpi    int
	runner Runner
	logger *logger.Logger
}

// NewPopplerRasterizer creates a pdftoppm-backed rasterizer.
func NewPopplerRasterizer(path string, dpi int, runner Runner, log *logger.Logger) Rasterizer {
	if path == "" {
		path = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 200
	}
	return &popplerRasterizer{path: path, dpi: dpi, runner: runner, logger: log}
}

var pageNumberPattern = regexp.MustCompile(`-(\d+)\.png$`)

// Rasterize renders every page to PNG under outDir and returns the image
// paths sorted by page number.
func (r *popplerRasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")

	_, errb, err := r.runner.Run(ctx, r.path, "-r", strconv.Itoa(r.dpi), "-png", pdfPath, prefix)
	if err != nil {
		return nil, utils.NewConversionError("pdftoppm failed: "+strings.TrimSpace(string(errb)), err)
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, utils.NewIOError("failed to collect rendered pages", err)
	}
	if len(matches) == 0 {
		return nil, utils.NewConversionError("pdftoppm produced no page images", nil)
	}

	// pdftoppm zero-pads page numbers based on the total, so lexical order
	// is usually right; sort numerically anyway.
	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})

	r.logger.Debug("Rendered %d page images at %d dpi into %s", len(matches), r.dpi, outDir)
	return matches, nil
}

func pageNumber(path string) int {
	m := pageNumberPattern.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// String describes the rasterizer configuration.
func (r *popplerRasterizer) String() string {
	return fmt.Sprintf("pdftoppm(dpi=%d)", r.dpi)
}
