package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/page-ocr/pkg/aggregate"
	"github.com/nodewee/page-ocr/pkg/config"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// fakeRasterizer writes one small file per page into the requested pattern
type fakeRasterizer struct {
	pages int
	err   error
	seen  *types.Document
}

func (f *fakeRasterizer) Name() string { return "fake" }

func (f *fakeRasterizer) Rasterize(_ context.Context, doc *types.Document, dpi int, pattern string) ([]types.PageImage, error) {
	f.seen = doc
	if f.err != nil {
		return nil, f.err
	}
	doc.PageCount = f.pages
	pages := make([]types.PageImage, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		path := fmt.Sprintf(pattern, i)
		if err := os.WriteFile(path, []byte(fmt.Sprintf("image %d", i)), 0o644); err != nil {
			return nil, err
		}
		pages = append(pages, types.PageImage{PageNumber: i, Path: path, DPI: dpi})
	}
	return pages, nil
}

// echoClient recognizes the image bytes as text, failing on one page
type echoClient struct {
	failOn string
}

func (c *echoClient) Name() string { return "echo" }

func (c *echoClient) Detect(_ context.Context, image []byte, _ []string) (types.OCRAnnotation, error) {
	if string(image) == c.failOn {
		return types.OCRAnnotation{}, errors.New("quota exceeded")
	}
	return types.OCRAnnotation{FullText: string(image), Backend: "echo"}, nil
}

func (c *echoClient) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.WorkDir = filepath.Join(t.TempDir(), "work")
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.MaxConcurrency = 3
	return cfg
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	return path
}

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestProcessor(t *testing.T, cfg *config.Config, r *fakeRasterizer, c *echoClient, opts ...ProcessorOption) *DefaultDocumentProcessor {
	t.Helper()
	opts = append([]ProcessorOption{WithRasterizer(r), WithClock(func() time.Time { return fixedTime })}, opts...)
	p, err := NewDocumentProcessor(cfg, c, logger.Discard(), opts...)
	require.NoError(t, err)
	return p
}

func TestProcessDocument(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t)
	raster := &fakeRasterizer{pages: 5}

	result, err := newTestProcessor(t, cfg, raster, &echoClient{failOn: "image 4"}).
		ProcessDocument(context.Background(), input)
	require.NoError(t, err)

	_, err = uuid.Parse(result.Batch.ID)
	assert.NoError(t, err)
	assert.Equal(t, "echo", result.Backend)
	assert.Equal(t, "scan.pdf", result.Document.Name)
	assert.Len(t, result.Document.MD5Hash, 32)
	assert.Equal(t, 5, raster.seen.PageCount)

	require.Len(t, result.Batch.Pages, 5)
	assert.Equal(t, 1, result.Batch.FailedPages())
	assert.True(t, result.Batch.Pages[3].Failed())
	assert.Equal(t, "image 1", result.Batch.Pages[0].FullText)

	base := filepath.Join(cfg.OutputDir, "scan_20240506_070809")
	assert.Equal(t, base+"_complete.json", result.Artifacts.CompleteJSON)
	for _, path := range []string{
		result.Artifacts.CompleteJSON,
		result.Artifacts.TextOnlyJSON,
		result.Artifacts.ExtractedText,
		result.Artifacts.SummaryJSON,
	} {
		assert.FileExists(t, path)
	}

	var summary aggregate.Summary
	data, err := os.ReadFile(result.Artifacts.SummaryJSON)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, result.Batch.ID, summary.BatchID)
	assert.Equal(t, 5, summary.TotalPages)
	assert.Equal(t, 1, summary.FailedPages)
	assert.Equal(t, []string{"Latin_Script"}, summary.LanguagesDetected)

	// page images and the batch directory are gone
	_, err = os.Stat(filepath.Join(cfg.WorkDir, result.Batch.ID))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessDocumentKeepsImages(t *testing.T) {
	cfg := testConfig(t)
	cfg.CleanupImages = false
	cfg.OutputName = "custom"

	result, err := newTestProcessor(t, cfg, &fakeRasterizer{pages: 2}, &echoClient{}).
		ProcessDocument(context.Background(), writeInput(t))
	require.NoError(t, err)

	images, err := filepath.Glob(filepath.Join(cfg.WorkDir, result.Batch.ID, "page_*.png"))
	require.NoError(t, err)
	assert.Len(t, images, 2)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "custom_summary.json"), result.Artifacts.SummaryJSON)
}

func TestProcessDocumentMissingInput(t *testing.T) {
	cfg := testConfig(t)
	_, err := newTestProcessor(t, cfg, &fakeRasterizer{pages: 1}, &echoClient{}).
		ProcessDocument(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))

	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))
}

func TestProcessDocumentRasterizeFailure(t *testing.T) {
	cfg := testConfig(t)
	raster := &fakeRasterizer{err: utils.NewDocumentOpenError("not a PDF", nil)}

	result, err := newTestProcessor(t, cfg, raster, &echoClient{}).
		ProcessDocument(context.Background(), writeInput(t))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))

	// nothing was written
	_, err = os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessDocumentDownloadsURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/report.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 remote"))
	}))
	defer server.Close()

	cfg := testConfig(t)
	raster := &fakeRasterizer{pages: 1}
	p := newTestProcessor(t, cfg, raster, &echoClient{}, WithHTTPClient(server.Client()))

	result, err := p.ProcessDocument(context.Background(), server.URL+"/files/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", result.Document.Name)
	assert.Equal(t, "source.pdf", filepath.Base(raster.seen.Path))

	_, err = p.ProcessDocument(context.Background(), server.URL+"/files/missing.pdf")
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))
}

func TestProcessDocumentCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestProcessor(t, cfg, &fakeRasterizer{pages: 4}, &echoClient{}).
		ProcessDocument(ctx, writeInput(t))
	require.NoError(t, err)

	require.Len(t, result.Batch.Pages, 4)
	assert.Equal(t, 4, result.Batch.FailedPages())

	// unscheduled page images are still removed
	_, err = os.Stat(filepath.Join(cfg.WorkDir, result.Batch.ID))
	assert.True(t, os.IsNotExist(err))
}

func TestNewDocumentProcessorValidates(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MaxConcurrency = 0
	_, err := NewDocumentProcessor(cfg, &echoClient{}, logger.Discard())
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeValidation, utils.GetErrorType(err))

	_, err = NewDocumentProcessor(config.NewConfig(), nil, logger.Discard())
	require.Error(t, err)
}
