package ocr

import (
	"golang.org/x/time/rate"
)

// NewLimiter converts a requests-per-second setting into a limiter shared by
// all workers. Bursts are capped at one second's worth of calls. qps <= 0
// disables limiting.
func NewLimiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		return nil
	}
	burst := int(qps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(qps), burst)
}
