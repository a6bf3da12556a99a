// Package tesseract runs recognition locally through libtesseract.
// Building it requires the tesseract and leptonica development headers.
package tesseract

import (
	"context"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	"github.com/nodewee/page-ocr/pkg/ocr"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// Client recognizes pages with a fresh gosseract client per call, so it is
// safe to share across workers
type Client struct {
	tessdataPath string
	runner       *ocr.BoundedRunner
}

// NewClient creates a Tesseract backend that runs at most maxConcurrent
// recognitions at once. tessdataPath may be empty to use the library
// default.
func NewClient(tessdataPath string, maxConcurrent int) *Client {
	return &Client{tessdataPath: tessdataPath, runner: ocr.NewBoundedRunner(maxConcurrent)}
}

// Name returns the backend name
func (c *Client) Name() string {
	return string(types.OCRBackendTesseract)
}

// Detect recognizes one image. libtesseract cannot be interrupted, so on
// cancellation the call returns at once while the recognition keeps its
// slot until it finishes.
func (c *Client) Detect(ctx context.Context, image []byte, languageHints []string) (types.OCRAnnotation, error) {
	if err := ctx.Err(); err != nil {
		return types.OCRAnnotation{}, utils.NewOCRServiceError("tesseract call not started", err)
	}

	prepared, err := ocr.PreprocessForOCR(image)
	if err != nil {
		return types.OCRAnnotation{}, utils.NewOCRServiceError("failed to prepare page image", err)
	}
	langs := ocr.TesseractLanguages(languageHints, c.installed)

	text, err := c.runner.Run(ctx, func() (string, error) {
		return c.recognize(prepared, langs)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.OCRAnnotation{}, utils.NewOCRServiceError("tesseract call abandoned", ctxErr)
		}
		return types.OCRAnnotation{}, utils.NewOCRServiceError("tesseract recognition failed", err)
	}
	return types.OCRAnnotation{
		FullText: text,
		Locales:  langs,
		Backend:  c.Name(),
	}, nil
}

func (c *Client) recognize(image []byte, langs []string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if c.tessdataPath != "" {
		if err := client.SetTessdataPrefix(c.tessdataPath); err != nil {
			return "", err
		}
	}
	if err := client.SetLanguage(langs...); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}

// installed reports whether traineddata for lang exists. Without a known
// tessdata directory every language is assumed present.
func (c *Client) installed(lang string) bool {
	if c.tessdataPath == "" {
		return true
	}
	_, err := os.Stat(filepath.Join(c.tessdataPath, lang+".traineddata"))
	return err == nil
}

// Close is a no-op; clients are released after every call
func (c *Client) Close() error {
	return nil
}
