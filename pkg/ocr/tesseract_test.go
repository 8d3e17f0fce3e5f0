package ocr

import (
	"context"
	"errors"
	"testing"
)

type cannedRunner struct {
	stdout string
	stderr string
	err    error
	name   string
	args   []string
}

func (c *cannedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	c.name = name
	c.args = args
	return []byte(c.stdout), []byte(c.stderr), c.err
}

func TestTesseractRecognize(t *testing.T) {
	runner := &cannedRunner{stdout: "  recognized text\n"}
	engine := NewTesseractEngine("/usr/bin/tesseract", "deu", runner)

	text, err := engine.Recognize(context.Background(), "/tmp/page-1.png")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if text != "recognized text" {
		t.Fatalf("Recognize() = %q, want trimmed stdout", text)
	}
	if runner.name != "/usr/bin/tesseract" {
		t.Fatalf("binary = %s, want configured path", runner.name)
	}
	want := []string{"/tmp/page-1.png", "stdout", "-l", "deu"}
	for i, arg := range want {
		if runner.args[i] != arg {
			t.Fatalf("args = %v, want %v", runner.args, want)
		}
	}
}

func TestTesseractRecognizeFailure(t *testing.T) {
	runner := &cannedRunner{err: errors.New("exit status 1"), stderr: "Error opening data file"}
	engine := NewTesseractEngine("", "", runner)

	if _, err := engine.Recognize(context.Background(), "page.png"); err == nil {
		t.Fatal("expected error when tesseract exits nonzero")
	}
}
