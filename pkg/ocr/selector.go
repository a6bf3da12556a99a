package ocr

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// Factory constructs a backend client
type Factory func(ctx context.Context) (interfaces.OCRClient, error)

// Selector builds the configured OCR backend and wraps it with tracing
type Selector struct {
	logger    *logger.Logger
	factories map[types.OCRBackend]Factory
	tracer    trace.Tracer
}

// SelectorOption configures a Selector
type SelectorOption func(*Selector)

// WithTracer sets the tracer used for per-call spans
func WithTracer(t trace.Tracer) SelectorOption {
	return func(s *Selector) { s.tracer = t }
}

// NewSelector creates a selector with no registered backends
func NewSelector(log *logger.Logger, opts ...SelectorOption) *Selector {
	s := &Selector{
		logger:    log,
		factories: make(map[types.OCRBackend]Factory),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a backend factory
func (s *Selector) Register(backend types.OCRBackend, f Factory) {
	s.factories[backend] = f
}

// Available returns the registered backends in name order
func (s *Selector) Available() []types.OCRBackend {
	out := make([]types.OCRBackend, 0, len(s.factories))
	for b := range s.factories {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Select constructs the client for backend. The caller owns the returned
// client and must Close it.
func (s *Selector) Select(ctx context.Context, backend types.OCRBackend) (interfaces.OCRClient, error) {
	f, ok := s.factories[backend]
	if !ok {
		return nil, utils.NewValidationError(
			fmt.Sprintf("unknown OCR backend %q (available: %v)", backend, s.Available()), nil)
	}

	client, err := f(ctx)
	if err != nil {
		return nil, utils.WrapError(err, "", fmt.Sprintf("failed to initialize %s backend", backend))
	}

	client = NewTracedClient(s.tracer, client)

	s.logger.Info("Selected OCR backend: %s", client.Name())
	return client, nil
}
