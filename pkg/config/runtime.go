package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/nodewee/page-ocr/pkg/types"
)

// LoadConfigWithEnvOverrides loads config from file and applies environment variable overrides
func LoadConfigWithEnvOverrides() *Config {
	config := DefaultConfig()
	ApplyEnvOverrides(config, os.Getenv)
	return config
}

// ApplyEnvOverrides applies environment overrides read through getenv.
// Unparseable numeric values are ignored and leave the current value in place.
func ApplyEnvOverrides(config *Config, getenv func(string) string) {
	// Tool paths and credentials
	if value := getenv("GHOSTSCRIPT_PATH"); value != "" {
		config.GhostscriptPath = value
	}
	if value := getenv("TESSDATA_PREFIX"); value != "" {
		config.TessdataPath = value
	}
	if value := getenv("GOOGLE_APPLICATION_CREDENTIALS"); value != "" {
		config.CredentialsFile = value
	}

	// Runtime settings
	if value := getenv("PAGE_OCR_BACKEND"); value != "" {
		config.OCRBackend = types.OCRBackend(strings.ToLower(value))
	}
	setInt(getenv("PAGE_OCR_DPI"), &config.DPI)
	setInt(getenv("PAGE_OCR_MAX_CONCURRENCY"), &config.MaxConcurrency)
	setInt(getenv("PAGE_OCR_REQUEST_TIMEOUT_SECONDS"), &config.RequestTimeoutSeconds)
	setInt(getenv("PAGE_OCR_TIMEOUT_MINUTES"), &config.TimeoutMinutes)
	setInt(getenv("PAGE_OCR_MAX_RETRIES"), &config.MaxRetries)
	if value := getenv("PAGE_OCR_RATE_LIMIT"); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			config.RateLimit = f
		}
	}
	if value := getenv("PAGE_OCR_CLEANUP_IMAGES"); value != "" {
		config.CleanupImages = parseBool(value)
	}
	if value := getenv("PAGE_OCR_LANGUAGE_HINTS"); value != "" {
		config.LanguageHints = splitList(value)
	}
	if value := getenv("PAGE_OCR_WORK_DIR"); value != "" {
		config.WorkDir = value
	}
	if value := getenv("PAGE_OCR_OUTPUT_DIR"); value != "" {
		config.OutputDir = value
	}
	if value := getenv("PAGE_OCR_LOG_LEVEL"); value != "" {
		config.LogLevel = value
	}
	if value := getenv("PAGE_OCR_VERBOSE"); value != "" {
		config.EnableVerbose = parseBool(value)
	}
}

func setInt(value string, dst *int) {
	if value == "" {
		return
	}
	if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		*dst = intVal
	}
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
