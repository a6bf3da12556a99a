package ocr

// tesseractCodes maps the ISO 639-1 hints used by Cloud Vision to Tesseract
// traineddata names
var tesseractCodes = map[string]string{
	"en": "eng",
	"hi": "hin",
	"or": "ori",
	"bn": "ben",
	"ta": "tam",
	"te": "tel",
	"ml": "mal",
	"kn": "kan",
	"gu": "guj",
	"pa": "pan",
	"mr": "mar",
	"as": "asm",
	"es": "spa",
	"fr": "fra",
	"de": "deu",
	"ja": "jpn",
	"ko": "kor",
	"zh": "chi_sim",
	"ar": "ara",
	"ru": "rus",
}

// TesseractLanguages converts hints to Tesseract language names, keeping
// hint order and dropping unknown or repeated codes. available, when not
// nil, filters out languages whose traineddata is not installed. The result
// falls back to "eng" so Tesseract always has a model.
func TesseractLanguages(hints []string, available func(lang string) bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range hints {
		lang, ok := tesseractCodes[h]
		if !ok || seen[lang] {
			continue
		}
		seen[lang] = true
		if available != nil && !available(lang) {
			continue
		}
		out = append(out, lang)
	}
	if len(out) == 0 {
		return []string{"eng"}
	}
	return out
}
