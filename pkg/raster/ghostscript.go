// Package raster renders PDF pages to images.
package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// GhostscriptRasterizer renders pages with the Ghostscript png16m device
type GhostscriptRasterizer struct {
	gsPath string
	logger *logger.Logger
}

// NewGhostscriptRasterizer creates a rasterizer that runs the gs binary at gsPath
func NewGhostscriptRasterizer(gsPath string, log *logger.Logger) *GhostscriptRasterizer {
	if gsPath == "" {
		gsPath = "gs"
	}
	return &GhostscriptRasterizer{gsPath: gsPath, logger: log}
}

// Name returns the rasterizer name
func (r *GhostscriptRasterizer) Name() string {
	return "ghostscript"
}

// Rasterize renders every page of doc into outputPattern. It either returns
// one image per page, numbered 1..N in source order, or a document_open
// error with no page files left behind.
func (r *GhostscriptRasterizer) Rasterize(ctx context.Context, doc *types.Document, dpi int, outputPattern string) ([]types.PageImage, error) {
	count, err := PageCount(doc.Path)
	if err != nil {
		return nil, utils.NewDocumentOpenError(fmt.Sprintf("cannot open document %s", doc.Path), err)
	}
	if count == 0 {
		return nil, utils.NewDocumentOpenError(fmt.Sprintf("document %s has no pages", doc.Path), nil)
	}
	doc.PageCount = count

	if err := utils.EnsureDir(filepath.Dir(outputPattern)); err != nil {
		return nil, utils.NewDocumentOpenError("cannot create page image directory", err)
	}

	args := []string{
		"-dNOPAUSE", "-dBATCH", "-dSAFER", "-dQUIET",
		"-sDEVICE=png16m",
		fmt.Sprintf("-r%d", dpi),
		"-dTextAlphaBits=4", "-dGraphicsAlphaBits=4",
		fmt.Sprintf("-sOutputFile=%s", outputPattern),
		utils.NormalizePath(doc.Path),
	}

	r.logger.Progress("🖼️", "Rasterizing %d pages at %d DPI", count, dpi)
	r.logger.Debug("Command: %s %s", r.gsPath, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.gsPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		removePageImages(outputPattern, count+1)
		return nil, utils.NewDocumentOpenError(
			fmt.Sprintf("ghostscript failed: %s", strings.TrimSpace(string(output))), err)
	}

	pages, err := collectPageImages(outputPattern, count, dpi)
	if err != nil {
		removePageImages(outputPattern, count+1)
		return nil, err
	}

	r.logger.Info("Rasterized %d pages into %s", len(pages), filepath.Dir(outputPattern))
	return pages, nil
}

// PageCount opens a PDF and returns its page count
func PageCount(path string) (n int, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return reader.NumPage(), nil
}

// collectPageImages checks that exactly pages 1..count were produced
func collectPageImages(outputPattern string, count, dpi int) ([]types.PageImage, error) {
	pages := make([]types.PageImage, 0, count)
	for i := 1; i <= count; i++ {
		path := fmt.Sprintf(outputPattern, i)
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			return nil, utils.NewDocumentOpenError(
				fmt.Sprintf("page %d of %d was not rendered", i, count), err)
		}
		pages = append(pages, types.PageImage{PageNumber: i, Path: path, DPI: dpi})
	}

	if _, err := os.Stat(fmt.Sprintf(outputPattern, count+1)); err == nil {
		return nil, utils.NewDocumentOpenError(
			fmt.Sprintf("renderer produced more than %d pages", count), nil)
	}
	return pages, nil
}

func removePageImages(outputPattern string, upTo int) {
	for i := 1; i <= upTo; i++ {
		_ = utils.RemoveFile(fmt.Sprintf(outputPattern, i))
	}
}
