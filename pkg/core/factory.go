package core

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/nodewee/page-ocr/pkg/config"
	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/ocr"
	"github.com/nodewee/page-ocr/pkg/pipeline"
	"github.com/nodewee/page-ocr/pkg/raster"
	"github.com/nodewee/page-ocr/pkg/types"
)

// Factory builds the pipeline components from configuration
type Factory struct {
	config  *config.Config
	logger  *logger.Logger
	limiter *rate.Limiter
}

// NewFactory creates a component factory. The OCR call limiter is shared by
// every pipeline the factory builds.
func NewFactory(cfg *config.Config, log *logger.Logger) *Factory {
	return &Factory{config: cfg, logger: log, limiter: ocr.NewLimiter(cfg.RateLimit)}
}

// NewRasterizer returns the Ghostscript rasterizer
func (f *Factory) NewRasterizer() interfaces.PageRasterizer {
	return raster.NewGhostscriptRasterizer(f.config.GhostscriptPath, f.logger)
}

// NewOCRSelector returns a selector with the Vision backend registered.
// The Tesseract backend links against libtesseract and is registered by
// the CLI.
func (f *Factory) NewOCRSelector() *ocr.Selector {
	s := ocr.NewSelector(f.logger)
	s.Register(types.OCRBackendVision, func(ctx context.Context) (interfaces.OCRClient, error) {
		client, err := ocr.NewVisionClient(ctx, f.config.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	return s
}

// NewPageProcessor wires the per-page settings around client
func (f *Factory) NewPageProcessor(client interfaces.OCRClient) *pipeline.PageProcessor {
	if f.limiter != nil {
		f.logger.Info("OCR calls limited to %.2f per second", f.config.RateLimit)
	}
	return pipeline.NewPageProcessor(client, f.logger,
		pipeline.WithLanguageHints(f.config.LanguageHints),
		pipeline.WithRequestTimeout(f.config.RequestTimeout()),
		pipeline.WithCleanup(f.config.CleanupImages),
		pipeline.WithRetry(f.config.MaxRetries, constants.DefaultRetryBaseDelay),
		pipeline.WithRateLimiter(f.limiter),
	)
}

// NewPipeline returns the bounded worker pool for client
func (f *Factory) NewPipeline(client interfaces.OCRClient) *pipeline.ConcurrentPipeline {
	return pipeline.NewConcurrentPipeline(f.NewPageProcessor(client), f.config.MaxConcurrency, f.logger)
}
