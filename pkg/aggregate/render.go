// Package aggregate renders a finished batch into its output artifacts.
// Rendering is pure: the same batch and metadata always give the same bytes.
package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/script"
	"github.com/nodewee/page-ocr/pkg/types"
)

// Meta describes the batch beyond its page results
type Meta struct {
	Name        string // output base name
	Document    string // display name of the source
	Source      string // path or URL as given
	MD5Hash     string
	Backend     string
	ProcessedAt time.Time
}

// TextOnlyPage is one entry of the text-only artifact
type TextOnlyPage struct {
	PageNumber int      `json:"page_number"`
	Text       string   `json:"text"`
	Languages  []string `json:"languages"`
	WordCount  int      `json:"word_count"`
}

// Summary is the batch overview artifact
type Summary struct {
	Document          string   `json:"document"`
	Source            string   `json:"source,omitempty"`
	MD5Hash           string   `json:"md5_hash,omitempty"`
	Backend           string   `json:"backend,omitempty"`
	BatchID           string   `json:"batch_id"`
	ProcessedAt       string   `json:"processed_at"`
	TotalPages        int      `json:"total_pages"`
	PagesWithContent  int      `json:"pages_with_content"`
	FailedPages       int      `json:"failed_pages"`
	TotalWords        int      `json:"total_words"`
	LanguagesDetected []string `json:"languages_detected"`
}

// RenderJSON lists every page, failed pages included
func RenderJSON(batch types.Batch) ([]byte, error) {
	pages := batch.Pages
	if pages == nil {
		pages = []types.PageResult{}
	}
	return encode(pages)
}

// RenderText joins the text of successful pages under page headers
func RenderText(batch types.Batch) string {
	var parts []string
	for _, p := range batch.Pages {
		if p.Failed() {
			continue
		}
		parts = append(parts, fmt.Sprintf(constants.PageTextHeader, p.PageNumber)+"\n"+p.FullText)
	}
	return strings.Join(parts, "\n\n")
}

// RenderTextOnly lists pages that recognized text
func RenderTextOnly(batch types.Batch) ([]byte, error) {
	pages := make([]TextOnlyPage, 0, len(batch.Pages))
	for _, p := range batch.Pages {
		if p.Failed() || !p.HasContent {
			continue
		}
		pages = append(pages, TextOnlyPage{
			PageNumber: p.PageNumber,
			Text:       p.FullText,
			Languages:  p.DetectedLanguages,
			WordCount:  p.WordCount,
		})
	}
	return encode(pages)
}

// BuildSummary computes the batch overview
func BuildSummary(batch types.Batch, meta Meta) Summary {
	var labels [][]string
	for _, p := range batch.Pages {
		if !p.Failed() {
			labels = append(labels, p.DetectedLanguages)
		}
	}
	languages := script.Union(labels...)
	if languages == nil {
		languages = []string{}
	}

	return Summary{
		Document:          meta.Document,
		Source:            meta.Source,
		MD5Hash:           meta.MD5Hash,
		Backend:           meta.Backend,
		BatchID:           batch.ID,
		ProcessedAt:       meta.ProcessedAt.Format(time.RFC3339),
		TotalPages:        len(batch.Pages),
		PagesWithContent:  batch.PagesWithContent(),
		FailedPages:       batch.FailedPages(),
		TotalWords:        batch.TotalWords(),
		LanguagesDetected: languages,
	}
}

// RenderSummary encodes BuildSummary
func RenderSummary(batch types.Batch, meta Meta) ([]byte, error) {
	return encode(BuildSummary(batch, meta))
}

// encode writes indented JSON without escaping non-ASCII or HTML characters
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
