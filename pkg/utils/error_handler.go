package utils

import (
	"context"
	"time"
)

// SimpleErrorHandler 简化的重试处理器
type SimpleErrorHandler struct {
	maxRetries int
	baseDelay  time.Duration
}

// NewSimpleErrorHandler creates a handler that retries up to maxRetries times
// after the first attempt. maxRetries <= 0 means a single attempt.
func NewSimpleErrorHandler(maxRetries int, baseDelay time.Duration) *SimpleErrorHandler {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &SimpleErrorHandler{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// MaxRetries returns the configured retry count
func (h *SimpleErrorHandler) MaxRetries() int {
	return h.maxRetries
}

// WithRetryContext runs fn until it succeeds, returns a non-retryable error,
// or runs out of attempts. The delay grows linearly with the attempt number.
func (h *SimpleErrorHandler) WithRetryContext(ctx context.Context, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		// 检查上下文是否已取消
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if !h.IsRetryable(lastErr) || attempt == h.maxRetries {
			return lastErr
		}

		delay := h.baseDelay * time.Duration(attempt+1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// IsRetryable 判断错误是否可重试
func (h *SimpleErrorHandler) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch GetErrorType(err) {
	case ErrorTypeValidation, ErrorTypePermission, ErrorTypeNotFound, ErrorTypeDocumentOpen:
		return false
	default:
		return IsRecoverable(err)
	}
}
