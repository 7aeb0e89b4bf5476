package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Extract  ExtractConfig
	LLM      LLMConfig
	Workers  WorkerConfig
}

// DatabaseConfig holds persistence-related configuration
type DatabaseConfig struct {
	// Path is the SQLite database file; ignored when DSN is set.
	Path string
	// DSN, when set to a postgres:// URL, selects the Postgres backend.
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Mutool    string // binary name or absolute path; if empty -> "mutool"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng+chi_sim"
	TessdataDir   string

	MaxPagesText int // page cap for the text-layer tier
	MaxPagesOCR  int // page cap for OCR tiers (cheaper tiers read fewer pages)
	MinText      int // acceptance threshold in characters

	TierTimeout time.Duration // per external command
}

// LLMConfig holds classification-provider configuration
type LLMConfig struct {
	Provider    string // "openai_api" | "ollama" | "offline"
	Model       string
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32

	// DefaultDomain is the class used when classification stays ambiguous
	// after the retry. Empty selects the non-life-science class.
	DefaultDomain string

	MaxCharsForLLM     int // merged payload budget
	ChunkSize          int
	ChunkOverlap       int
	AuthorSectionChars int
}

// WorkerConfig holds batch-concurrency configuration
type WorkerConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            getEnv("DB_PATH", "./data/litdomain.db"),
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Extract: ExtractConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Mutool:        getEnv("MUTOOL_BIN", "mutool"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng+chi_sim"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			MaxPagesText:  getEnvAsInt("EXTRACT_MAX_PAGES_TEXT", 15),
			MaxPagesOCR:   getEnvAsInt("EXTRACT_MAX_PAGES_OCR", 5),
			MinText:       getEnvAsInt("EXTRACT_MIN_TEXT", 200),
			TierTimeout:   getEnvAsDuration("EXTRACT_TIER_TIMEOUT", 2*time.Minute),
		},
		LLM: LLMConfig{
			Provider:           getEnv("LLM_PROVIDER", "ollama"),
			Model:              getEnv("LLM_MODEL", "qwen2.5:7b"),
			BaseURL:            getEnv("LLM_BASE_URL", ""),
			APIKey:             getEnv("LLM_API_KEY", ""),
			Timeout:            getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			MaxTokens:          getEnvAsInt("LLM_MAX_TOKENS", 100),
			Temperature:        getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			DefaultDomain:      getEnv("LLM_DEFAULT_DOMAIN", ""),
			MaxCharsForLLM:     getEnvAsInt("LLM_MAX_CHARS", 3000),
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 800),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 100),
			AuthorSectionChars: getEnvAsInt("AUTHOR_SECTION_CHARS", 1200),
		},
		Workers: WorkerConfig{
			Workers:    getEnvAsInt("WORKERS", 4),
			QueueSize:  getEnvAsInt("QUEUE_SIZE", 256),
			JobTimeout: getEnvAsDuration("JOB_TIMEOUT", 5*time.Minute),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH or DB_URL is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai_api", "ollama", "offline":
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai_api, ollama or offline", ErrInvalidInput)
	}
	if c.LLM.Provider == "openai_api" && c.LLM.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "LLM_BASE_URL is required for openai_api", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
