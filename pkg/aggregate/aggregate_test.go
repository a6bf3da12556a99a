package aggregate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/page-ocr/pkg/types"
)

func sampleBatch() types.Batch {
	ok := types.NewPageResult(1, "Name: Asha\nनमस्ते", []string{"Devanagari_Script", "Latin_Script"})
	ok.WordCount = 3
	ok.KeyValuePairs = map[string]string{"Name": "Asha"}

	empty := types.NewPageResult(3, "", []string{"Unknown"})

	odia := types.NewPageResult(4, "ଓଡ଼ିଆ <b>", []string{"Odia", "Latin_Script"})
	odia.WordCount = 2

	failed := types.NewPageError(2, errors.New("ocr_service: quota exceeded"))

	// deliberately out of order; NewBatch sorts
	return types.NewBatch("batch-1", []types.PageResult{odia, failed, empty, ok})
}

func sampleMeta() Meta {
	return Meta{
		Name:        "report_20240102_030405",
		Document:    "report.pdf",
		Source:      "/data/report.pdf",
		MD5Hash:     "d41d8cd98f00b204e9800998ecf8427e",
		Backend:     "vision",
		ProcessedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText(sampleBatch())
	assert.Equal(t, "=== Page 1 ===\nName: Asha\nनमस्ते\n\n=== Page 3 ===\n\n\n=== Page 4 ===\nଓଡ଼ିଆ <b>", got)
	assert.NotContains(t, got, "Page 2")
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(sampleBatch())
	require.NoError(t, err)

	// non-ASCII and markup stay literal
	assert.Contains(t, string(data), "नमस्ते")
	assert.Contains(t, string(data), "<b>")

	var pages []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &pages))
	require.Len(t, pages, 4)

	assert.Equal(t, float64(2), pages[1]["page_number"])
	assert.Equal(t, "ocr_service: quota exceeded", pages[1]["error"])
	assert.Equal(t, false, pages[1]["has_content"])
	assert.NotContains(t, pages[1], "full_text")

	assert.Equal(t, map[string]interface{}{"Name": "Asha"}, pages[0]["key_value_pairs"])
	assert.NotContains(t, pages[2], "key_value_pairs")
}

func TestRenderJSONEmptyBatch(t *testing.T) {
	data, err := RenderJSON(types.Batch{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestRenderTextOnly(t *testing.T) {
	data, err := RenderTextOnly(sampleBatch())
	require.NoError(t, err)

	var pages []TextOnlyPage
	require.NoError(t, json.Unmarshal(data, &pages))
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 4, pages[1].PageNumber)
	assert.Equal(t, []string{"Odia", "Latin_Script"}, pages[1].Languages)
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(sampleBatch(), sampleMeta())

	assert.Equal(t, "report.pdf", s.Document)
	assert.Equal(t, "batch-1", s.BatchID)
	assert.Equal(t, "2024-01-02T03:04:05Z", s.ProcessedAt)
	assert.Equal(t, 4, s.TotalPages)
	assert.Equal(t, 2, s.PagesWithContent)
	assert.Equal(t, 1, s.FailedPages)
	assert.Equal(t, 5, s.TotalWords)
	assert.Equal(t, []string{"Devanagari_Script", "Odia", "Latin_Script"}, s.LanguagesDetected)
}

func TestBuildSummaryAllFailed(t *testing.T) {
	batch := types.NewBatch("b", []types.PageResult{types.NewPageError(1, nil)})
	s := BuildSummary(batch, sampleMeta())
	assert.Equal(t, []string{}, s.LanguagesDetected)
	assert.Equal(t, 1, s.FailedPages)
}

func TestPersistWritesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	batch, meta := sampleBatch(), sampleMeta()

	artifacts, err := Persist(batch, meta, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report_20240102_030405_complete.json"), artifacts.CompleteJSON)
	assert.Equal(t, filepath.Join(dir, "report_20240102_030405_text_only.json"), artifacts.TextOnlyJSON)
	assert.Equal(t, filepath.Join(dir, "report_20240102_030405_extracted_text.txt"), artifacts.ExtractedText)
	assert.Equal(t, filepath.Join(dir, "report_20240102_030405_summary.json"), artifacts.SummaryJSON)

	text, err := os.ReadFile(artifacts.ExtractedText)
	require.NoError(t, err)
	assert.Equal(t, RenderText(batch), string(text))

	var summary Summary
	data, err := os.ReadFile(artifacts.SummaryJSON)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, BuildSummary(batch, meta), summary)
}

func TestPersistIsDeterministic(t *testing.T) {
	first, err := Persist(sampleBatch(), sampleMeta(), filepath.Join(t.TempDir(), "a"))
	require.NoError(t, err)
	second, err := Persist(sampleBatch(), sampleMeta(), filepath.Join(t.TempDir(), "b"))
	require.NoError(t, err)

	pairs := [][2]string{
		{first.CompleteJSON, second.CompleteJSON},
		{first.TextOnlyJSON, second.TextOnlyJSON},
		{first.ExtractedText, second.ExtractedText},
		{first.SummaryJSON, second.SummaryJSON},
	}
	for _, p := range pairs {
		a, err := os.ReadFile(p[0])
		require.NoError(t, err)
		b, err := os.ReadFile(p[1])
		require.NoError(t, err)
		assert.Equal(t, a, b, filepath.Base(p[0]))
	}
}

func TestPersistRequiresName(t *testing.T) {
	meta := sampleMeta()
	meta.Name = ""
	_, err := Persist(sampleBatch(), meta, t.TempDir())
	require.Error(t, err)
}
