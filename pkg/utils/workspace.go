package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/logger"
)

// BatchWorkspace owns the working directory of one batch.
// Directory structure: {work_dir}/{batch_id}/page_N.png
//
// Keying the directory by batch id lets several batches share a work dir
// without two workers ever touching the same page file.
type BatchWorkspace struct {
	batchID    string
	dir        string
	logger     *logger.Logger
	mu         sync.Mutex
	cleanupFns []func() error
}

// NewBatchWorkspace creates a workspace rooted at workDir for batchID
func NewBatchWorkspace(workDir, batchID string, log *logger.Logger) *BatchWorkspace {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &BatchWorkspace{
		batchID: batchID,
		dir:     NormalizePath(filepath.Join(workDir, batchID)),
		logger:  log,
	}
}

// ID returns the batch identifier
func (w *BatchWorkspace) ID() string {
	return w.batchID
}

// Dir returns the batch working directory
func (w *BatchWorkspace) Dir() string {
	return w.dir
}

// Ensure creates the working directory
func (w *BatchWorkspace) Ensure() error {
	if err := EnsureDir(w.dir); err != nil {
		return WrapError(err, ErrorTypeIO, "failed to create batch working directory")
	}
	return nil
}

// PageImagePattern returns the printf-style output pattern handed to the rasterizer
func (w *BatchWorkspace) PageImagePattern() string {
	return filepath.Join(w.dir, constants.PDFPageImagePattern)
}

// SourcePath returns where a downloaded document is stored
func (w *BatchWorkspace) SourcePath() string {
	return filepath.Join(w.dir, constants.DownloadedPDFName)
}

// RegisterCleanupFunc registers a cleanup function
func (w *BatchWorkspace) RegisterCleanupFunc(fn func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cleanupFns = append(w.cleanupFns, fn)
}

// WithCleanup executes fn and always runs Cleanup afterwards. A cleanup
// failure is logged and never replaces fn's result.
func (w *BatchWorkspace) WithCleanup(fn func() error) error {
	defer func() {
		if err := w.Cleanup(); err != nil {
			w.logger.Warn("Batch workspace cleanup failed: %v", err)
		}
	}()
	return fn()
}

// Cleanup runs registered cleanup functions, then removes the working
// directory if nothing is left in it. Retained page images keep it alive.
func (w *BatchWorkspace) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for i := len(w.cleanupFns) - 1; i >= 0; i-- {
		if err := w.cleanupFns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	w.cleanupFns = w.cleanupFns[:0]

	entries, err := os.ReadDir(w.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		errs = append(errs, err)
	case len(entries) == 0:
		if err := os.Remove(w.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		} else {
			w.logger.Debug("Removed batch directory: %s", w.dir)
		}
	default:
		w.logger.Debug("Keeping batch directory with %d entries: %s", len(entries), w.dir)
	}

	if len(errs) > 0 {
		return NewResourceCleanupError(
			fmt.Sprintf("cleanup of %s failed", w.dir), errors.Join(errs...))
	}
	return nil
}

// RemoveFile deletes a file, treating a missing file as already removed
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
