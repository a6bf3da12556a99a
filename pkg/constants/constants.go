package constants

import "time"

// Application constants
const (
	AppName = "page-ocr"
	// AppVersion is injected through ldflags in main.go, see cmd.GetVersionInfo
)

// File processing constants
const (
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// Page delimiter used by the flattened text artifact
	PageTextHeader = "=== Page %d ==="

	DefaultMaxRetries     = 0
	DefaultRetryBaseDelay = time.Second
	DefaultRequestTimeout = 2 * time.Minute
	DefaultTimeoutMinutes = 30

	// Concurrency limits
	MaxConcurrentPages    = 20
	DefaultWorkerPoolSize = 4
)

// File size limits (in bytes)
const (
	MaxFileSize       = 200 * 1024 * 1024
	WarnFileSizeLimit = 20 * 1024 * 1024
)

// Rasterization
const (
	DefaultImageDPI     = 300
	MinImageDPI         = 72
	MaxImageDPI         = 600
	PDFPageImagePattern = "page_%d.png"
	PDFPageImageGlob    = "page_*.png"
	DownloadedPDFName   = "source.pdf"
)

// Output artifact suffixes, appended to the output base name
const (
	CompleteJSONSuffix  = "_complete.json"
	TextOnlyJSONSuffix  = "_text_only.json"
	ExtractedTextSuffix = "_extracted_text.txt"
	SummaryJSONSuffix   = "_summary.json"
	OutputTimestamp     = "20060102_150405"
)

// DefaultLanguageHints biases recognition towards the Indic, European and CJK
// languages the pipeline is expected to see. Order is preserved on the wire.
var DefaultLanguageHints = []string{
	"en", "hi", "or", "bn", "ta", "te", "ml", "kn", "gu", "pa",
	"mr", "as", "es", "fr", "de", "ja", "ko", "zh", "ar", "ru",
}

// CloneLanguageHints returns a copy of the default hints
func CloneLanguageHints() []string {
	out := make([]string, len(DefaultLanguageHints))
	copy(out, DefaultLanguageHints)
	return out
}
