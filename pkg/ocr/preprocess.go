package ocr

import (
	"bytes"

	"github.com/disintegration/imaging"

	"github.com/nodewee/page-ocr/pkg/utils"
)

// PreprocessForOCR converts a page image to a contrast-boosted grayscale PNG.
// Local engines read scanned pages noticeably better after this step.
func PreprocessForOCR(image []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(image), imaging.AutoOrientation(true))
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to decode page image")
	}

	gray := imaging.AdjustContrast(imaging.Grayscale(img), 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to encode page image")
	}
	return buf.Bytes(), nil
}
