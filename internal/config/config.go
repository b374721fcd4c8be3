package config

import (
	"fmt"
	"os"
	"strconv"

	"formscan/internal/logger"
)

// Config holds the process-wide configuration, loaded once per run from the
// environment. It is read-only after Load returns.
type Config struct {
	// Input/output locations
	InputDir  string
	OutputDir string

	// Active rule profile. Empty selects the embedded default profile.
	ProfilePath string

	// Recognition
	Language          string
	OCRTimeoutSeconds int
	OCRDPI            int

	// Artifact emission toggles
	EmitText      bool
	EmitRawResult bool
	EmitRecord    bool

	// Preprocessing
	Deskew        bool
	Denoise       string // none, light, aggressive
	ContrastBoost float64
	AutoCrop      bool

	// Batch
	Workers int

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		InputDir:          getEnv("FORMSCAN_INPUT_DIR", "./documents"),
		OutputDir:         getEnv("FORMSCAN_OUTPUT_DIR", "./output"),
		ProfilePath:       getEnv("FORMSCAN_PROFILE", ""),
		Language:          getEnv("FORMSCAN_LANGUAGE", "jpn"),
		OCRTimeoutSeconds: getIntEnv("FORMSCAN_OCR_TIMEOUT_SECONDS", 120),
		OCRDPI:            getIntEnv("FORMSCAN_OCR_DPI", 300),
		EmitText:          getBoolEnv("FORMSCAN_EMIT_TEXT", true),
		EmitRawResult:     getBoolEnv("FORMSCAN_EMIT_RAW_RESULT", false),
		EmitRecord:        getBoolEnv("FORMSCAN_EMIT_RECORD", true),
		Deskew:            getBoolEnv("FORMSCAN_DESKEW", true),
		Denoise:           getEnv("FORMSCAN_DENOISE", "light"),
		ContrastBoost:     getFloatEnv("FORMSCAN_CONTRAST_BOOST", 1.0),
		AutoCrop:          getBoolEnv("FORMSCAN_AUTO_CROP", false),
		Workers:           getIntEnv("FORMSCAN_WORKERS", 1),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("FORMSCAN_INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("FORMSCAN_OUTPUT_DIR is required")
	}
	switch c.Denoise {
	case "none", "light", "aggressive":
	default:
		return fmt.Errorf("FORMSCAN_DENOISE must be one of none, light, aggressive (got %q)", c.Denoise)
	}
	if c.ContrastBoost < 0 {
		return fmt.Errorf("FORMSCAN_CONTRAST_BOOST must not be negative")
	}
	if c.OCRTimeoutSeconds <= 0 {
		return fmt.Errorf("FORMSCAN_OCR_TIMEOUT_SECONDS must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("FORMSCAN_WORKERS must be positive")
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

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
