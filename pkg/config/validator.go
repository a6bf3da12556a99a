package config

import (
	"fmt"
	"strings"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// ConfigValidator 配置验证器
type ConfigValidator struct{}

// NewConfigValidator 创建配置验证器
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate collects every problem instead of stopping at the first one
func (v *ConfigValidator) Validate(c *Config) error {
	var errors []string

	if err := v.validateBackend(c); err != nil {
		errors = append(errors, err.Error())
	}
	errors = append(errors, v.validateNumericValues(c)...)
	if err := v.validateLanguageHints(c.LanguageHints); err != nil {
		errors = append(errors, err.Error())
	}
	if err := v.validateLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return utils.NewValidationError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errors, "; ")))
	}

	return nil
}

// validateBackend 验证OCR后端
func (v *ConfigValidator) validateBackend(c *Config) error {
	switch c.OCRBackend {
	case types.OCRBackendVision, types.OCRBackendTesseract:
		return nil
	default:
		return fmt.Errorf("invalid OCR backend: %q (want %s or %s)",
			c.OCRBackend, types.OCRBackendVision, types.OCRBackendTesseract)
	}
}

// validateNumericValues 验证数值参数
func (v *ConfigValidator) validateNumericValues(c *Config) []string {
	var errs []string
	if c.MaxConcurrency < 1 {
		errs = append(errs, "max concurrency must be at least 1")
	}
	if c.MaxConcurrency > constants.MaxConcurrentPages {
		errs = append(errs, fmt.Sprintf("max concurrency should not exceed %d", constants.MaxConcurrentPages))
	}
	if c.DPI < constants.MinImageDPI || c.DPI > constants.MaxImageDPI {
		errs = append(errs, fmt.Sprintf("dpi must be between %d and %d", constants.MinImageDPI, constants.MaxImageDPI))
	}
	if c.RequestTimeoutSeconds < 1 {
		errs = append(errs, "request timeout must be at least 1 second")
	}
	if c.TimeoutMinutes < 1 {
		errs = append(errs, "timeout must be at least 1 minute")
	}
	if c.RateLimit < 0 {
		errs = append(errs, "rate limit must be non-negative")
	}
	if c.MaxRetries < 0 {
		errs = append(errs, "max retries must be non-negative")
	}
	return errs
}

func (v *ConfigValidator) validateLanguageHints(hints []string) error {
	for _, h := range hints {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("language hints must not contain empty codes")
		}
	}
	return nil
}

// validateLogLevel 验证日志级别
func (v *ConfigValidator) validateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}
}
