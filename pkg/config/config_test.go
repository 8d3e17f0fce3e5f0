package config

import (
	"os"
	"path/filepath"
	"testing"

	"docuchat/pkg/types"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != types.CacheBackendFiles {
		t.Fatalf("Cache.Backend = %s, want files default", cfg.Cache.Backend)
	}
	if cfg.OCR.Engine != types.OCREngineTesseract {
		t.Fatalf("OCR.Engine = %s, want tesseract default", cfg.OCR.Engine)
	}
	if cfg.MinTextThreshold != DefaultMinTextThreshold || cfg.ProbePages != DefaultProbePages {
		t.Fatalf("thresholds = %d/%d, want defaults", cfg.MinTextThreshold, cfg.ProbePages)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "cache:\n  backend: sqlite\nocr:\n  dpi: 300\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != types.CacheBackendSQLite {
		t.Fatalf("Cache.Backend = %s, want sqlite", cfg.Cache.Backend)
	}
	if cfg.OCR.DPI != 300 {
		t.Fatalf("OCR.DPI = %d, want 300", cfg.OCR.DPI)
	}
	if cfg.OCR.Language != DefaultOCRLanguage {
		t.Fatalf("OCR.Language = %s, want default preserved", cfg.OCR.Language)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCUCHAT_CACHE_BACKEND", "sqlite")
	t.Setenv("DOCUCHAT_OCR_DPI", "150")
	t.Setenv("DOCUCHAT_SIMILARITY_THRESHOLD", "0.25")
	t.Setenv("TESSERACT_PATH", "/opt/tesseract/bin/tesseract")

	cfg, err := LoadWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides() error = %v", err)
	}
	if cfg.Cache.Backend != types.CacheBackendSQLite {
		t.Fatalf("Cache.Backend = %s, want sqlite from env", cfg.Cache.Backend)
	}
	if cfg.OCR.DPI != 150 {
		t.Fatalf("OCR.DPI = %d, want 150 from env", cfg.OCR.DPI)
	}
	if cfg.Chat.SimilarityThreshold != 0.25 {
		t.Fatalf("SimilarityThreshold = %f, want 0.25 from env", cfg.Chat.SimilarityThreshold)
	}
	if cfg.OCR.TesseractPath != "/opt/tesseract/bin/tesseract" {
		t.Fatalf("TesseractPath = %s, want env override", cfg.OCR.TesseractPath)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}

	cfg = Default()
	cfg.OCR.Engine = "surya"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown engine")
	}

	cfg = Default()
	cfg.OCR.MaxConcurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero concurrency")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.OCR.Language = "deu"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OCR.Language != "deu" {
		t.Fatalf("OCR.Language = %s, want deu", got.OCR.Language)
	}
}
