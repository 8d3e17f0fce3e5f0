package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"docuchat/pkg/logger"
)

// fakeRunner plays pdftoppm: it drops page images into the output prefix
// instead of running anything.
type fakeRunner struct {
	pages  int
	err    error
	stderr string
	args   []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.args = args
	if f.err != nil {
		return nil, []byte(f.stderr), f.err
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func TestRasterizeSortsPagesNumerically(t *testing.T) {
	runner := &fakeRunner{pages: 12}
	r := NewPopplerRasterizer("pdftoppm", 200, runner, logger.NewLogger("error", false))

	images, err := r.Rasterize(context.Background(), "doc.pdf", t.TempDir())
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if len(images) != 12 {
		t.Fatalf("len(images) = %d, want 12", len(images))
	}
	// Lexical order would put page-10 before page-2.
	for i, img := range images {
		want := fmt.Sprintf("page-%d.png", i+1)
		if filepath.Base(img) != want {
			t.Fatalf("images[%d] = %s, want %s", i, filepath.Base(img), want)
		}
	}
}

func TestRasterizeCommandFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "Syntax Error: corrupt PDF"}
	r := NewPopplerRasterizer("pdftoppm", 200, runner, logger.NewLogger("error", false))

	if _, err := r.Rasterize(context.Background(), "doc.pdf", t.TempDir()); err == nil {
		t.Fatal("expected error when pdftoppm fails")
	}
}

func TestRasterizeNoPagesProduced(t *testing.T) {
	runner := &fakeRunner{pages: 0}
	r := NewPopplerRasterizer("pdftoppm", 200, runner, logger.NewLogger("error", false))

	if _, err := r.Rasterize(context.Background(), "doc.pdf", t.TempDir()); err == nil {
		t.Fatal("expected error when no page images are produced")
	}
}

func TestRasterizePassesDPI(t *testing.T) {
	runner := &fakeRunner{pages: 1}
	r := NewPopplerRasterizer("", 300, runner, logger.NewLogger("error", false))

	if _, err := r.Rasterize(context.Background(), "doc.pdf", t.TempDir()); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if len(runner.args) < 2 || runner.args[0] != "-r" || runner.args[1] != "300" {
		t.Fatalf("args = %v, want -r 300 first", runner.args)
	}
}
