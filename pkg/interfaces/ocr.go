package interfaces

import (
	"context"

	"github.com/nodewee/page-ocr/pkg/types"
)

// OCRClient performs one text detection call per image. Implementations do
// not retry; failures are returned to the caller as is.
type OCRClient interface {
	// Name returns the backend name
	Name() string

	// Detect recognizes text in an encoded image. languageHints bias the
	// backend's own language inference and never replace it.
	Detect(ctx context.Context, image []byte, languageHints []string) (types.OCRAnnotation, error)

	// Close releases connections held by the client
	Close() error
}
