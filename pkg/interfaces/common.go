package interfaces

import (
	"context"

	"github.com/nodewee/page-ocr/pkg/types"
)

// === Core interfaces ===

// PageRasterizer turns a document into ordered page images
type PageRasterizer interface {
	// Rasterize renders every page of doc at dpi into outputPattern, a
	// printf-style path with one %d for the 1-based page number
	Rasterize(ctx context.Context, doc *types.Document, dpi int, outputPattern string) ([]types.PageImage, error)
	// Name returns the rasterizer name
	Name() string
}

// PageProcessor is the unit of work for one page. It never fails outward.
type PageProcessor interface {
	Process(ctx context.Context, page types.PageImage) types.PageResult
}

// Pipeline schedules page work and returns the ordered batch
type Pipeline interface {
	Run(ctx context.Context, batchID string, pages []types.PageImage) types.Batch
}

// DocumentProcessor runs a whole document through the pipeline
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, input string) (*ProcessingResult, error)
}

// === Data structures ===

// ProcessingResult describes a finished batch
type ProcessingResult struct {
	Document    types.Document `json:"document"`
	Batch       types.Batch    `json:"-"`
	Artifacts   Artifacts      `json:"artifacts"`
	Backend     string         `json:"backend"`
	ProcessTime int64          `json:"process_time_ms"`
}

// Artifacts lists the files written for a batch
type Artifacts struct {
	CompleteJSON  string `json:"complete_json"`
	TextOnlyJSON  string `json:"text_only_json"`
	ExtractedText string `json:"extracted_text"`
	SummaryJSON   string `json:"summary_json"`
}
