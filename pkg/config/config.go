package config

import (
	"fmt"
	"time"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/types"
)

// Default values and constants
const (
	DefaultLogLevel              = "info"
	DefaultTimeoutMinutes        = constants.DefaultTimeoutMinutes
	DefaultMaxConcurrency        = constants.DefaultWorkerPoolSize
	DefaultDPI                   = constants.DefaultImageDPI
	DefaultRequestTimeoutSeconds = int(constants.DefaultRequestTimeout / time.Second)
	DefaultMaxRetries            = constants.DefaultMaxRetries
	DefaultRateLimit             = 0.0
	DefaultCleanupImages         = true
	DefaultEnableVerbose         = false
	DefaultOCRBackend            = types.OCRBackendVision

	// Tool paths
	DefaultGhostscriptPath = "gs"
)

// Config holds application configuration
type Config struct {
	// External tools and credentials, persisted to the config file
	GhostscriptPath string           `json:"ghostscript_path"`
	TessdataPath    string           `json:"tessdata_path"`
	CredentialsFile string           `json:"credentials_file"`
	OCRBackend      types.OCRBackend `json:"ocr_backend"`

	// Runtime settings (not persisted to file)
	DPI                   int      `json:"-"`
	MaxConcurrency        int      `json:"-"`
	RequestTimeoutSeconds int      `json:"-"`
	TimeoutMinutes        int      `json:"-"`
	RateLimit             float64  `json:"-"` // OCR requests per second, 0 disables limiting
	MaxRetries            int      `json:"-"`
	CleanupImages         bool     `json:"-"`
	LanguageHints         []string `json:"-"`
	WorkDir               string   `json:"-"`
	OutputDir             string   `json:"-"`
	OutputName            string   `json:"-"`
	LogLevel              string   `json:"-"`
	EnableVerbose         bool     `json:"-"`
}

// NewConfig returns a configuration populated with defaults only
func NewConfig() *Config {
	return &Config{
		GhostscriptPath:       DefaultGhostscriptPath,
		OCRBackend:            DefaultOCRBackend,
		DPI:                   DefaultDPI,
		MaxConcurrency:        DefaultMaxConcurrency,
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		TimeoutMinutes:        DefaultTimeoutMinutes,
		RateLimit:             DefaultRateLimit,
		MaxRetries:            DefaultMaxRetries,
		CleanupImages:         DefaultCleanupImages,
		LanguageHints:         constants.CloneLanguageHints(),
		LogLevel:              DefaultLogLevel,
		EnableVerbose:         DefaultEnableVerbose,
	}
}

// DefaultConfig returns the configuration by loading from file or creating default
func DefaultConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to load config file, using basic defaults: %v\n", err)
		return NewConfig()
	}
	return config
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return NewConfigValidator().Validate(c)
}

// RequestTimeout is the deadline applied to each OCR call
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a whole document run
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	clone.LanguageHints = append([]string(nil), c.LanguageHints...)
	return &clone
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Backend: %s, DPI: %d, Concurrency: %d, Cleanup: %v, LogLevel: %s, Verbose: %v}",
		c.OCRBackend, c.DPI, c.MaxConcurrency, c.CleanupImages, c.LogLevel, c.EnableVerbose)
}
