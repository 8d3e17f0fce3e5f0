package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// Default values
const (
	DefaultLogLevel         = "info"
	DefaultDataDir          = "data"
	DefaultCacheDir         = "cache"
	DefaultMinTextThreshold = 10
	DefaultProbePages       = 5
	DefaultDPI              = 200
	DefaultOCRLanguage      = "eng"
	DefaultMaxConcurrency   = 4
	DefaultPageRetries      = 2
	DefaultTesseractPath    = "tesseract"
	DefaultPdftoppmPath     = "pdftoppm"
	DefaultAPIKeyEnv        = "GEMINI_API_KEY"
	DefaultSimilarity       = 0.1
	DefaultMaxContextDocs   = 3
)

// OCRConfig holds settings for the OCR pipeline.
type OCRConfig struct {
	Engine         types.OCREngineKind `yaml:"engine"`
	TesseractPath  string              `yaml:"tesseract_path"`
	PdftoppmPath   string              `yaml:"pdftoppm_path"`
	Language       string              `yaml:"language"`
	DPI            int                 `yaml:"dpi"`
	MaxConcurrency int                 `yaml:"max_concurrency"`
	PageRetries    int                 `yaml:"page_retries"`
}

// CacheConfig selects and locates the durable extraction cache.
type CacheConfig struct {
	Backend types.CacheBackend `yaml:"backend"`
	Dir     string             `yaml:"dir"`
}

// ChatConfig carries settings consumed by the chatbot front end, not by the
// extraction core: which env var holds the LLM API key, the retrieval
// similarity threshold, and how many documents go into the prompt context.
type ChatConfig struct {
	APIKeyEnv           string  `yaml:"api_key_env"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxContextDocs      int     `yaml:"max_context_docs"`
}

// Config holds application configuration
type Config struct {
	DataDir          string      `yaml:"data_dir"`
	Cache            CacheConfig `yaml:"cache"`
	OCR              OCRConfig   `yaml:"ocr"`
	MinTextThreshold int         `yaml:"min_text_threshold"`
	ProbePages       int         `yaml:"probe_pages"`
	LogLevel         string      `yaml:"log_level"`
	Chat             ChatConfig  `yaml:"chat"`

	// Runtime settings (not persisted to file)
	EnableVerbose bool `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Cache: CacheConfig{
			Backend: types.CacheBackendFiles,
			Dir:     DefaultCacheDir,
		},
		OCR: OCRConfig{
			Engine:         types.OCREngineTesseract,
			TesseractPath:  DefaultTesseractPath,
			PdftoppmPath:   DefaultPdftoppmPath,
			Language:       DefaultOCRLanguage,
			DPI:            DefaultDPI,
			MaxConcurrency: DefaultMaxConcurrency,
			PageRetries:    DefaultPageRetries,
		},
		MinTextThreshold: DefaultMinTextThreshold,
		ProbePages:       DefaultProbePages,
		LogLevel:         DefaultLogLevel,
		Chat: ChatConfig{
			APIKeyEnv:           DefaultAPIKeyEnv,
			SimilarityThreshold: DefaultSimilarity,
			MaxContextDocs:      DefaultMaxContextDocs,
		},
	}
}

// Load reads a YAML config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, utils.NewIOError("failed to read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, utils.NewConversionError("failed to parse config file", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), utils.DefaultDirPermission); err != nil {
		return utils.NewIOError("failed to create config directory", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return utils.NewConversionError("failed to encode config", err)
	}
	return os.WriteFile(path, data, utils.DefaultFilePermission)
}

// LoadWithEnvOverrides loads the config file and applies environment variable
// overrides on top of it.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if value := os.Getenv("DOCUCHAT_DATA_DIR"); value != "" {
		cfg.DataDir = value
	}
	if value := os.Getenv("DOCUCHAT_CACHE_DIR"); value != "" {
		cfg.Cache.Dir = value
	}
	if value := os.Getenv("DOCUCHAT_CACHE_BACKEND"); value != "" {
		cfg.Cache.Backend = types.CacheBackend(value)
	}
	if value := os.Getenv("DOCUCHAT_OCR_ENGINE"); value != "" {
		cfg.OCR.Engine = types.OCREngineKind(value)
	}
	if value := os.Getenv("TESSERACT_PATH"); value != "" {
		cfg.OCR.TesseractPath = value
	}
	if value := os.Getenv("PDFTOPPM_PATH"); value != "" {
		cfg.OCR.PdftoppmPath = value
	}
	if value := os.Getenv("DOCUCHAT_OCR_LANGUAGE"); value != "" {
		cfg.OCR.Language = value
	}
	if value := os.Getenv("DOCUCHAT_OCR_DPI"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			cfg.OCR.DPI = intVal
		}
	}
	if value := os.Getenv("DOCUCHAT_MAX_CONCURRENCY"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			cfg.OCR.MaxConcurrency = intVal
		}
	}
	if value := os.Getenv("DOCUCHAT_MIN_TEXT_THRESHOLD"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			cfg.MinTextThreshold = intVal
		}
	}
	if value := os.Getenv("DOCUCHAT_SIMILARITY_THRESHOLD"); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			cfg.Chat.SimilarityThreshold = floatVal
		}
	}
	if value := os.Getenv("DOCUCHAT_MAX_CONTEXT_DOCS"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			cfg.Chat.MaxContextDocs = intVal
		}
	}
	if value := os.Getenv("DOCUCHAT_LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}
	if value := os.Getenv("DOCUCHAT_VERBOSE"); value != "" {
		cfg.EnableVerbose = value == "true" || value == "1" || value == "yes"
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case types.CacheBackendFiles, types.CacheBackendSQLite:
	default:
		return utils.NewValidationError("unknown cache backend: "+string(c.Cache.Backend), nil)
	}
	switch c.OCR.Engine {
	case types.OCREngineTesseract, types.OCREngineGosseract:
	default:
		return utils.NewValidationError("unknown ocr engine: "+string(c.OCR.Engine), nil)
	}
	if c.Cache.Dir == "" {
		return utils.NewValidationError("cache dir cannot be empty", nil)
	}
	if c.OCR.MaxConcurrency < 1 {
		return utils.NewValidationError("ocr max_concurrency must be at least 1", nil)
	}
	if c.MinTextThreshold < 0 {
		return utils.NewValidationError("min_text_threshold cannot be negative", nil)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.OCR.Engine == "" {
		cfg.OCR.Engine = types.OCREngineTesseract
	}
	if cfg.OCR.TesseractPath == "" {
		cfg.OCR.TesseractPath = DefaultTesseractPath
	}
	if cfg.OCR.PdftoppmPath == "" {
		cfg.OCR.PdftoppmPath = DefaultPdftoppmPath
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = DefaultOCRLanguage
	}
	if cfg.OCR.DPI <= 0 {
		cfg.OCR.DPI = DefaultDPI
	}
	if cfg.OCR.MaxConcurrency <= 0 {
		cfg.OCR.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.OCR.PageRetries <= 0 {
		cfg.OCR.PageRetries = DefaultPageRetries
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = types.CacheBackendFiles
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = DefaultCacheDir
	}
	if cfg.MinTextThreshold <= 0 {
		cfg.MinTextThreshold = DefaultMinTextThreshold
	}
	if cfg.ProbePages <= 0 {
		cfg.ProbePages = DefaultProbePages
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Chat.SimilarityThreshold <= 0 {
		cfg.Chat.SimilarityThreshold = DefaultSimilarity
	}
	if cfg.Chat.MaxContextDocs <= 0 {
		cfg.Chat.MaxContextDocs = DefaultMaxContextDocs
	}
}
