package aggregate

import (
	"os"
	"path/filepath"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

// Persist writes the four artifacts of a batch into outDir
func Persist(batch types.Batch, meta Meta, outDir string) (interfaces.Artifacts, error) {
	if meta.Name == "" {
		return interfaces.Artifacts{}, utils.NewValidationError("output name is required", nil)
	}
	if err := utils.EnsureDir(outDir); err != nil {
		return interfaces.Artifacts{}, utils.WrapError(err, utils.ErrorTypeIO, "failed to create output directory")
	}

	base := filepath.Join(outDir, utils.SanitizeFileName(meta.Name))
	artifacts := interfaces.Artifacts{
		CompleteJSON:  base + constants.CompleteJSONSuffix,
		TextOnlyJSON:  base + constants.TextOnlyJSONSuffix,
		ExtractedText: base + constants.ExtractedTextSuffix,
		SummaryJSON:   base + constants.SummaryJSONSuffix,
	}

	complete, err := RenderJSON(batch)
	if err != nil {
		return interfaces.Artifacts{}, utils.WrapError(err, utils.ErrorTypeConversion, "failed to render page results")
	}
	textOnly, err := RenderTextOnly(batch)
	if err != nil {
		return interfaces.Artifacts{}, utils.WrapError(err, utils.ErrorTypeConversion, "failed to render text-only results")
	}
	summary, err := RenderSummary(batch, meta)
	if err != nil {
		return interfaces.Artifacts{}, utils.WrapError(err, utils.ErrorTypeConversion, "failed to render summary")
	}

	files := []struct {
		path string
		data []byte
	}{
		{artifacts.CompleteJSON, complete},
		{artifacts.TextOnlyJSON, textOnly},
		{artifacts.ExtractedText, []byte(RenderText(batch))},
		{artifacts.SummaryJSON, summary},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, constants.DefaultFilePermission); err != nil {
			return interfaces.Artifacts{}, utils.WrapError(err, utils.ErrorTypeIO, "failed to write "+filepath.Base(f.path))
		}
	}
	return artifacts, nil
}
