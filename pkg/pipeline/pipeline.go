package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// ConcurrentPipeline runs one task per page on a fixed-size worker pool and
// returns the results sorted by page number.
//
// Tasks never return errors to the group, so a failed page cannot cancel or
// delay its siblings. The batch context is the only cancellation signal.
type ConcurrentPipeline struct {
	processor interfaces.PageProcessor
	workers   int
	logger    *logger.Logger
}

var _ interfaces.Pipeline = (*ConcurrentPipeline)(nil)

// NewConcurrentPipeline creates a pipeline with the given pool size
func NewConcurrentPipeline(processor interfaces.PageProcessor, workers int, log *logger.Logger) *ConcurrentPipeline {
	if workers < 1 {
		workers = constants.DefaultWorkerPoolSize
	}
	return &ConcurrentPipeline{processor: processor, workers: workers, logger: log}
}

// Workers returns the pool size
func (p *ConcurrentPipeline) Workers() int {
	return p.workers
}

// Run blocks until every page has a result. The returned batch has exactly
// one entry per input page, ascending by page number.
func (p *ConcurrentPipeline) Run(ctx context.Context, batchID string, pages []types.PageImage) types.Batch {
	total := len(pages)
	results := make(chan types.PageResult, total)
	var done, failed atomic.Int32

	report := func(r types.PageResult) {
		results <- r
		n := done.Add(1)
		if r.Failed() {
			failed.Add(1)
			p.logger.Progress("⚠️", "Page %d failed (%d/%d): %s", r.PageNumber, n, total, r.Error)
			return
		}
		p.logger.Progress("📄", "Page %d done (%d/%d)", r.PageNumber, n, total)
	}

	p.logger.ProgressAlways("🚀", "Processing %d pages with %d workers", total, p.workers)

	var g errgroup.Group
	g.SetLimit(p.workers)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			report(submissionError(page, err))
			continue
		}

		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					report(types.NewPageError(page.PageNumber, utils.NewOCRServiceError(
						fmt.Sprintf("page processing panicked: %v", r), nil)))
				}
			}()

			// the slot may have been granted after cancellation
			if err := ctx.Err(); err != nil {
				report(submissionError(page, err))
				return nil
			}

			r := p.processor.Process(ctx, page)
			r.PageNumber = page.PageNumber
			report(r)
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	collected := make([]types.PageResult, 0, total)
	for r := range results {
		collected = append(collected, r)
	}

	batch := types.NewBatch(batchID, collected)
	p.logger.Info("Batch %s finished: %d pages, %d failed", batchID, total, failed.Load())
	return batch
}

func submissionError(page types.PageImage, cause error) types.PageResult {
	return types.NewPageError(page.PageNumber,
		utils.NewSchedulerSubmissionError("page was not scheduled before the batch was cancelled", cause))
}
