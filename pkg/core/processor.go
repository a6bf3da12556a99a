package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nodewee/page-ocr/pkg/aggregate"
	"github.com/nodewee/page-ocr/pkg/config"
	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

const instrumentationName = "github.com/nodewee/page-ocr/pkg/core"

// ProcessorOption customizes a DefaultDocumentProcessor
type ProcessorOption func(*DefaultDocumentProcessor)

// WithRasterizer replaces the Ghostscript rasterizer
func WithRasterizer(r interfaces.PageRasterizer) ProcessorOption {
	return func(p *DefaultDocumentProcessor) { p.rasterizer = r }
}

// WithHTTPClient sets the client used to download remote documents
func WithHTTPClient(c *http.Client) ProcessorOption {
	return func(p *DefaultDocumentProcessor) { p.httpClient = c }
}

// WithClock sets the time source used for output names and summaries
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *DefaultDocumentProcessor) { p.now = now }
}

// DefaultDocumentProcessor implements DocumentProcessor
type DefaultDocumentProcessor struct {
	config     *config.Config
	logger     *logger.Logger
	factory    *Factory
	client     interfaces.OCRClient
	rasterizer interfaces.PageRasterizer
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.DocumentProcessor = (*DefaultDocumentProcessor)(nil)

// NewDocumentProcessor creates a processor that recognizes pages through
// client. The caller keeps ownership of client.
func NewDocumentProcessor(cfg *config.Config, client interfaces.OCRClient, log *logger.Logger, opts ...ProcessorOption) (*DefaultDocumentProcessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, utils.NewValidationError("OCR client is required", nil)
	}

	factory := NewFactory(cfg, log)
	p := &DefaultDocumentProcessor{
		config:     cfg,
		logger:     log,
		factory:    factory,
		client:     client,
		rasterizer: factory.NewRasterizer(),
		httpClient: utils.DefaultHTTPClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	log.Info("Document processor initialized:")
	log.Info("  Backend: %s", client.Name())
	log.Info("  Rasterizer: %s at %d DPI", p.rasterizer.Name(), cfg.DPI)
	log.Info("  Workers: %d", cfg.MaxConcurrency)
	log.Info("  Request timeout: %s, retries: %d", cfg.RequestTimeout(), cfg.MaxRetries)

	return p, nil
}

// ProcessDocument runs one document through rasterization, OCR and
// aggregation. Page failures are reported inside the batch; only failures
// that prevent any page work are returned as errors.
func (p *DefaultDocumentProcessor) ProcessDocument(ctx context.Context, input string) (result *interfaces.ProcessingResult, err error) {
	start := p.now()
	batchID := uuid.NewString()
	log := p.logger.WithField("batch", batchID)

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "process document")
	span.SetAttributes(
		attribute.String("document.input", input),
		attribute.String("batch.id", batchID),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log.Info("=== Starting document processing ===")
	log.Info("Input: %s", input)

	if input == "" {
		return nil, utils.NewValidationError("input document cannot be empty", nil)
	}

	ws := utils.NewBatchWorkspace(p.config.WorkDir, batchID, log)
	if err := ws.Ensure(); err != nil {
		return nil, err
	}

	err = ws.WithCleanup(func() error {
		doc, err := p.resolveDocument(ctx, input, ws)
		if err != nil {
			return err
		}
		log.Info("Document: %s (%d bytes, md5 %s)", doc.Name, doc.Size, doc.MD5Hash)

		if p.config.CleanupImages {
			// pages that never reached a worker still have their image
			ws.RegisterCleanupFunc(func() error { return removeMatching(ws.Dir(), constants.PDFPageImageGlob) })
		}

		pages, err := p.rasterizer.Rasterize(ctx, doc, p.config.DPI, ws.PageImagePattern())
		if err != nil {
			if utils.GetErrorType(err) != utils.ErrorTypeDocumentOpen {
				err = utils.NewDocumentOpenError("failed to rasterize document", err)
			}
			return err
		}
		span.SetAttributes(attribute.Int("document.pages", len(pages)))

		batch := p.factory.NewPipeline(p.client).Run(ctx, batchID, pages)

		meta := aggregate.Meta{
			Name:        p.outputName(input, start),
			Document:    doc.Name,
			Source:      input,
			MD5Hash:     doc.MD5Hash,
			Backend:     p.client.Name(),
			ProcessedAt: start,
		}
		artifacts, err := aggregate.Persist(batch, meta, p.outputDir(input))
		if err != nil {
			return err
		}

		result = &interfaces.ProcessingResult{
			Document:    *doc,
			Batch:       batch,
			Artifacts:   artifacts,
			Backend:     p.client.Name(),
			ProcessTime: p.now().Sub(start).Milliseconds(),
		}
		return nil
	})
	if err != nil {
		log.Error("Document processing failed: %v", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("batch.failed_pages", result.Batch.FailedPages()))
	log.Progress("✅", "Processed %d pages in %dms (%d failed)",
		len(result.Batch.Pages), result.ProcessTime, result.Batch.FailedPages())
	log.Info("=== Document processing completed ===")
	return result, nil
}

// resolveDocument makes the input available as a local PDF inside the batch
func (p *DefaultDocumentProcessor) resolveDocument(ctx context.Context, input string, ws *utils.BatchWorkspace) (*types.Document, error) {
	path := input
	if utils.IsRemoteURL(input) {
		path = ws.SourcePath()
		ws.RegisterCleanupFunc(func() error { return utils.RemoveFile(path) })

		p.logger.Progress("🌐", "Downloading %s", input)
		if err := utils.DownloadFile(ctx, p.httpClient, input, path); err != nil {
			return nil, utils.NewDocumentOpenError(fmt.Sprintf("failed to download %s", input), err)
		}
	} else {
		expanded, err := utils.ExpandPath(input)
		if err != nil {
			return nil, utils.NewDocumentOpenError(fmt.Sprintf("invalid document path %s", input), err)
		}
		path = utils.NormalizePath(expanded)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, utils.NewDocumentOpenError(fmt.Sprintf("cannot open document %s", input), err)
	}
	if info.IsDir() {
		return nil, utils.NewDocumentOpenError(fmt.Sprintf("%s is a directory", input), nil)
	}
	if err := p.validateFileSize(info.Size()); err != nil {
		return nil, err
	}

	hash, err := utils.FileMD5(path)
	if err != nil {
		return nil, utils.NewDocumentOpenError(fmt.Sprintf("cannot read document %s", input), err)
	}

	return &types.Document{
		Input:   input,
		Path:    path,
		Name:    utils.DocumentStem(input) + filepath.Ext(path),
		MD5Hash: hash,
		Size:    info.Size(),
	}, nil
}

// validateFileSize validates that the file size is within acceptable limits
func (p *DefaultDocumentProcessor) validateFileSize(size int64) error {
	if size > constants.MaxFileSize {
		return utils.NewValidationError(
			fmt.Sprintf("file size (%d bytes) exceeds maximum limit (%d bytes)",
				size, constants.MaxFileSize), nil)
	}

	if size > constants.WarnFileSizeLimit {
		p.logger.Warn("Large file detected (%d bytes), processing may take longer", size)
	}

	return nil
}

func (p *DefaultDocumentProcessor) outputName(input string, at time.Time) string {
	if p.config.OutputName != "" {
		return p.config.OutputName
	}
	return utils.OutputBaseName(input, at)
}

// outputDir defaults to the directory of a local input, or the working
// directory for a URL
func (p *DefaultDocumentProcessor) outputDir(input string) string {
	if p.config.OutputDir != "" {
		return utils.NormalizePath(p.config.OutputDir)
	}
	if utils.IsRemoteURL(input) {
		return "."
	}
	return filepath.Dir(utils.NormalizePath(input))
}

func removeMatching(dir, pattern string) error {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := utils.RemoveFile(m); err != nil {
			return err
		}
	}
	return nil
}
