package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// writeMinimalPDF writes a valid PDF with the given number of empty pages
func writeMinimalPDF(t *testing.T, path string, pages int) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeFakeGhostscript installs a shell script that writes FAKE_GS_PAGES files
func writeFakeGhostscript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for gs")
	}

	script := `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
done
i=1
while [ "$i" -le "${FAKE_GS_PAGES:-0}" ]; do
  printf 'png' > "$(printf "$out" "$i")"
  i=$((i+1))
done
exit "${FAKE_GS_EXIT:-0}"
`
	path := filepath.Join(t.TempDir(), "gs")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestPageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeMinimalPDF(t, path, 3)

	n, err := PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRasterizeRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	r := NewGhostscriptRasterizer("gs", logger.Discard())
	pages, err := r.Rasterize(context.Background(), &types.Document{Path: path}, 300, filepath.Join(dir, "out", "page_%d.png"))

	require.Error(t, err)
	assert.Nil(t, pages)
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))
}

func TestRasterizeMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := NewGhostscriptRasterizer("gs", logger.Discard())
	_, err := r.Rasterize(context.Background(), &types.Document{Path: filepath.Join(dir, "absent.pdf")}, 300, filepath.Join(dir, "page_%d.png"))
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))
}

func TestRasterizeWithGhostscript(t *testing.T) {
	gs := writeFakeGhostscript(t)
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	writeMinimalPDF(t, pdfPath, 3)
	t.Setenv("FAKE_GS_PAGES", "3")

	doc := &types.Document{Path: pdfPath}
	pattern := filepath.Join(dir, "batch", "page_%d.png")
	pages, err := NewGhostscriptRasterizer(gs, logger.Discard()).Rasterize(context.Background(), doc, 150, pattern)
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, 3, doc.PageCount)
	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, 150, p.DPI)
		assert.FileExists(t, p.Path)
	}
}

func TestRasterizePageCountMismatchCleansUp(t *testing.T) {
	gs := writeFakeGhostscript(t)
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	writeMinimalPDF(t, pdfPath, 3)
	t.Setenv("FAKE_GS_PAGES", "2")

	pattern := filepath.Join(dir, "batch", "page_%d.png")
	_, err := NewGhostscriptRasterizer(gs, logger.Discard()).Rasterize(context.Background(), &types.Document{Path: pdfPath}, 300, pattern)
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))

	left, _ := filepath.Glob(filepath.Join(dir, "batch", "page_*.png"))
	assert.Empty(t, left)
}

func TestRasterizeGhostscriptFailure(t *testing.T) {
	gs := writeFakeGhostscript(t)
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "doc.pdf")
	writeMinimalPDF(t, pdfPath, 2)
	t.Setenv("FAKE_GS_PAGES", "1")
	t.Setenv("FAKE_GS_EXIT", "1")

	pattern := filepath.Join(dir, "batch", "page_%d.png")
	_, err := NewGhostscriptRasterizer(gs, logger.Discard()).Rasterize(context.Background(), &types.Document{Path: pdfPath}, 300, pattern)
	assert.Equal(t, utils.ErrorTypeDocumentOpen, utils.GetErrorType(err))

	left, _ := filepath.Glob(filepath.Join(dir, "batch", "page_*.png"))
	assert.Empty(t, left)
}

func TestCollectPageImagesRejectsExtraPage(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("page_%d.png", i)), []byte("x"), 0o644))
	}
	_, err := collectPageImages(filepath.Join(dir, "page_%d.png"), 2, 300)
	require.Error(t, err)

	pages, err := collectPageImages(filepath.Join(dir, "page_%d.png"), 3, 300)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
}
