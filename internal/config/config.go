package config

import (
	"fmt"
	"os"
	"strconv"

	"thaiocr/internal/logger"
)

// Config holds the environment-backed settings for one OCR run. CLI flags
// override these values.
type Config struct {
	// Engine Configuration
	TesseractPath string // explicit tesseract executable; empty means auto-detect
	PopplerPath   string // explicit pdftoppm executable or its directory; empty means auto-detect
	Language      string // tesseract language identifier
	DPI           int    // PDF rasterization resolution
	PSM           int    // tesseract page segmentation mode
	Engine        string // recognition engine: "tesseract" or "vision"
	Retry         int    // per-page recognition re-attempts

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load builds the configuration from environment variables, applying the
// defaults of the original tool: Thai language, PSM 6, 300 DPI, local
// Tesseract engine, no retries.
func Load() (*Config, error) {
	config := &Config{
		TesseractPath: getEnv("THAI_OCR_TESSERACT_PATH", ""),
		PopplerPath:   getEnv("THAI_OCR_POPPLER_PATH", ""),
		Language:      getEnv("THAI_OCR_LANGUAGE", "tha"),
		DPI:           getEnvInt("THAI_OCR_DPI", 300),
		PSM:           getEnvInt("THAI_OCR_PSM", 6),
		Engine:        getEnv("THAI_OCR_ENGINE", "tesseract"),
		Retry:         getEnvInt("THAI_OCR_RETRY", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Language == "" {
		return fmt.Errorf("THAI_OCR_LANGUAGE must not be empty")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("THAI_OCR_DPI must be positive, got %d", c.DPI)
	}
	if c.PSM < 0 || c.PSM > 13 {
		return fmt.Errorf("THAI_OCR_PSM must be in 0..13, got %d", c.PSM)
	}
	if c.Engine != "tesseract" && c.Engine != "vision" {
		return fmt.Errorf("THAI_OCR_ENGINE must be \"tesseract\" or \"vision\", got %q", c.Engine)
	}
	if c.Retry < 0 {
		return fmt.Errorf("THAI_OCR_RETRY must not be negative, got %d", c.Retry)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
