package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/script"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// ProcessorOption configures a PageProcessor
type ProcessorOption func(*PageProcessor)

// WithLanguageHints sets the hints sent with every detection call
func WithLanguageHints(hints []string) ProcessorOption {
	return func(p *PageProcessor) { p.hints = append([]string(nil), hints...) }
}

// WithRequestTimeout bounds each detection call. Zero disables the deadline.
func WithRequestTimeout(d time.Duration) ProcessorOption {
	return func(p *PageProcessor) { p.requestTimeout = d }
}

// WithCleanup controls whether page images are deleted after processing
func WithCleanup(enabled bool) ProcessorOption {
	return func(p *PageProcessor) { p.cleanup = enabled }
}

// WithRetry retries transient detection failures up to maxRetries times
func WithRetry(maxRetries int, baseDelay time.Duration) ProcessorOption {
	return func(p *PageProcessor) { p.retry = utils.NewSimpleErrorHandler(maxRetries, baseDelay) }
}

// WithRateLimiter admits detection calls through l. The wait happens under
// the batch context, before the request timeout starts.
func WithRateLimiter(l *rate.Limiter) ProcessorOption {
	return func(p *PageProcessor) { p.limiter = l }
}

// PageProcessor turns one page image into a PageResult. Every failure is
// reported in the result; Process never panics or returns an error.
type PageProcessor struct {
	client         interfaces.OCRClient
	logger         *logger.Logger
	hints          []string
	requestTimeout time.Duration
	cleanup        bool
	retry          *utils.SimpleErrorHandler
	limiter        *rate.Limiter

	readFile   func(string) ([]byte, error)
	removeFile func(string) error
}

var _ interfaces.PageProcessor = (*PageProcessor)(nil)

// NewPageProcessor creates a processor that detects text through client
func NewPageProcessor(client interfaces.OCRClient, log *logger.Logger, opts ...ProcessorOption) *PageProcessor {
	p := &PageProcessor{
		client:         client,
		logger:         log,
		hints:          constants.CloneLanguageHints(),
		requestTimeout: constants.DefaultRequestTimeout,
		cleanup:        true,
		retry:          utils.NewSimpleErrorHandler(constants.DefaultMaxRetries, constants.DefaultRetryBaseDelay),
		readFile:       os.ReadFile,
		removeFile:     utils.RemoveFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs detection, normalization and classification for one page
func (p *PageProcessor) Process(ctx context.Context, page types.PageImage) (result types.PageResult) {
	log := p.logger.WithField("page", page.PageNumber)

	defer p.release(page, log)
	defer func() {
		if r := recover(); r != nil {
			err := utils.NewOCRServiceError(fmt.Sprintf("page processing panicked: %v", r), nil)
			log.Error("%v", err)
			result = types.NewPageError(page.PageNumber, err)
		}
	}()

	image, err := p.readFile(page.Path)
	if err != nil {
		err = utils.WrapError(err, utils.ErrorTypeIO, "failed to read page image")
		log.Warn("%v", err)
		return types.NewPageError(page.PageNumber, err)
	}

	ann, err := p.detect(ctx, image, log)
	if err != nil {
		log.Warn("%v", err)
		return types.NewPageError(page.PageNumber, err)
	}

	text, _ := NormalizeText(ann.FullText)
	result = types.NewPageResult(page.PageNumber, text, script.Classify(text))
	result.WordCount = WordCount(text)
	result.KeyValuePairs = ExtractKeyValuePairs(text)

	log.Debug("Recognized %d words (%v)", result.WordCount, result.DetectedLanguages)
	return result
}

func (p *PageProcessor) detect(ctx context.Context, image []byte, log *logger.Logger) (types.OCRAnnotation, error) {
	var ann types.OCRAnnotation

	err := p.retry.WithRetryContext(ctx, func(attempt int) error {
		if attempt > 0 {
			log.Warn("Retrying text detection (attempt %d of %d)", attempt+1, p.retry.MaxRetries()+1)
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return utils.NewOCRServiceError("rate limiter wait aborted", err)
			}
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.requestTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.requestTimeout)
		}
		defer cancel()

		a, err := p.client.Detect(callCtx, image, p.hints)
		if err != nil {
			if utils.GetErrorType(err) == utils.ErrorTypeOCRService {
				return err
			}
			return utils.NewOCRServiceError("text detection failed", err)
		}
		ann = a
		return nil
	})
	if err != nil && utils.GetErrorType(err) != utils.ErrorTypeOCRService {
		// the batch context ended before the first attempt
		err = utils.NewOCRServiceError("text detection not attempted", err)
	}
	return ann, err
}

// release deletes the page image when cleanup is enabled. A failure is
// logged and leaves the result untouched.
func (p *PageProcessor) release(page types.PageImage, log *logger.Logger) {
	if !p.cleanup {
		return
	}
	if err := p.removeFile(page.Path); err != nil {
		log.Warn("%v", utils.NewResourceCleanupError(
			fmt.Sprintf("failed to delete page image %s", page.Path), err))
		return
	}
	log.Debug("Deleted page image %s", page.Path)
}
