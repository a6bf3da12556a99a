package types

import (
	"encoding/json"
	"sort"
)

// OCRBackend selects the text detection service
type OCRBackend string

const (
	OCRBackendVision    OCRBackend = "vision"    // Google Cloud Vision document text detection
	OCRBackendTesseract OCRBackend = "tesseract" // Local Tesseract through gosseract
)

// Document identifies the source file of a batch
type Document struct {
	Input     string `json:"input"` // path or URL as given by the caller
	Path      string `json:"path"`  // local file that is rasterized
	Name      string `json:"name"`
	MD5Hash   string `json:"md5_hash,omitempty"`
	Size      int64  `json:"size"`
	PageCount int    `json:"page_count"`
}

// PageImage is one rasterized page. The processor assigned to it owns the file.
type PageImage struct {
	PageNumber int
	Path       string
	DPI        int
}

// OCRAnnotation is the raw result of one detection call
type OCRAnnotation struct {
	FullText string
	// Locales reported by the backend, in the order it reported them
	Locales []string
	Backend string
}

// PageResult is the durable outcome for one page. Exactly one of the success
// fields or Error is meaningful; use NewPageResult and NewPageError.
type PageResult struct {
	PageNumber        int
	FullText          string
	HasContent        bool
	DetectedLanguages []string
	WordCount         int
	KeyValuePairs     map[string]string
	Error             string
}

// NewPageResult builds a successful result
func NewPageResult(pageNumber int, fullText string, languages []string) PageResult {
	return PageResult{
		PageNumber:        pageNumber,
		FullText:          fullText,
		HasContent:        fullText != "",
		DetectedLanguages: languages,
	}
}

// NewPageError builds a failed result
func NewPageError(pageNumber int, err error) PageResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PageResult{PageNumber: pageNumber, Error: msg}
}

// Failed reports whether the page carries an error
func (r PageResult) Failed() bool {
	return r.Error != ""
}

type pageSuccessJSON struct {
	PageNumber        int               `json:"page_number"`
	FullText          string            `json:"full_text"`
	HasContent        bool              `json:"has_content"`
	DetectedLanguages []string          `json:"detected_languages"`
	WordCount         int               `json:"word_count"`
	KeyValuePairs     map[string]string `json:"key_value_pairs,omitempty"`
}

type pageErrorJSON struct {
	PageNumber int    `json:"page_number"`
	Error      string `json:"error"`
	HasContent bool   `json:"has_content"`
}

// MarshalJSON emits one of the two entry shapes
func (r PageResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(pageErrorJSON{PageNumber: r.PageNumber, Error: r.Error})
	}
	return json.Marshal(pageSuccessJSON{
		PageNumber:        r.PageNumber,
		FullText:          r.FullText,
		HasContent:        r.HasContent,
		DetectedLanguages: r.DetectedLanguages,
		WordCount:         r.WordCount,
		KeyValuePairs:     r.KeyValuePairs,
	})
}

// UnmarshalJSON accepts either entry shape
func (r *PageResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		pageSuccessJSON
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = PageResult{
		PageNumber:        raw.PageNumber,
		FullText:          raw.FullText,
		HasContent:        raw.HasContent,
		DetectedLanguages: raw.DetectedLanguages,
		WordCount:         raw.WordCount,
		KeyValuePairs:     raw.KeyValuePairs,
		Error:             raw.Error,
	}
	return nil
}

// Batch is the page-ordered collection of results for one document
type Batch struct {
	ID    string
	Pages []PageResult
}

// NewBatch sorts results ascending by page number
func NewBatch(id string, results []PageResult) Batch {
	pages := make([]PageResult, len(results))
	copy(pages, results)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
	return Batch{ID: id, Pages: pages}
}

// FailedPages counts pages with an error
func (b Batch) FailedPages() int {
	n := 0
	for _, p := range b.Pages {
		if p.Failed() {
			n++
		}
	}
	return n
}

// PagesWithContent counts successful pages that recognized text
func (b Batch) PagesWithContent() int {
	n := 0
	for _, p := range b.Pages {
		if !p.Failed() && p.HasContent {
			n++
		}
	}
	return n
}

// TotalWords sums word counts over successful pages
func (b Batch) TotalWords() int {
	n := 0
	for _, p := range b.Pages {
		if !p.Failed() {
			n += p.WordCount
		}
	}
	return n
}
