// Package script labels recognized text with the writing systems it contains.
package script

// Unknown is returned when no known script is present
const Unknown = "Unknown"

// Labels, in canonical check order
const (
	Devanagari      = "Devanagari_Script"
	Odia            = "Odia"
	BengaliAssamese = "Bengali_Assamese"
	Tamil           = "Tamil"
	Telugu          = "Telugu"
	Malayalam       = "Malayalam"
	Kannada         = "Kannada"
	Gujarati        = "Gujarati"
	Punjabi         = "Punjabi"
	Chinese         = "Chinese"
	Japanese        = "Japanese"
	Korean          = "Korean"
	Arabic          = "Arabic"
	Russian         = "Russian"
	Latin           = "Latin_Script"
)

type block struct {
	label string
	match func(r rune) bool
}

func between(lo, hi rune) func(rune) bool {
	return func(r rune) bool { return r >= lo && r <= hi }
}

// blocks is the canonical order. Output order follows it, not the text.
var blocks = []block{
	{Devanagari, between(0x0900, 0x097F)},
	{Odia, between(0x0B00, 0x0B7F)},
	{BengaliAssamese, between(0x0980, 0x09FF)},
	{Tamil, between(0x0B80, 0x0BFF)},
	{Telugu, between(0x0C00, 0x0C7F)},
	{Malayalam, between(0x0D00, 0x0D7F)},
	{Kannada, between(0x0C80, 0x0CFF)},
	{Gujarati, between(0x0A80, 0x0AFF)},
	{Punjabi, between(0x0A00, 0x0A7F)},
	{Chinese, between(0x4E00, 0x9FFF)},
	{Japanese, between(0x3040, 0x30FF)}, // Hiragana and Katakana
	{Korean, between(0xAC00, 0xD7AF)},
	{Arabic, between(0x0600, 0x06FF)},
	{Russian, between(0x0400, 0x04FF)},
	{Latin, func(r rune) bool { return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') }},
}

// Labels returns every label in canonical order
func Labels() []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.label
	}
	return out
}

// Classify returns the labels of all scripts present in text, in canonical
// order. Text without any known script yields []string{Unknown}.
func Classify(text string) []string {
	found := make([]bool, len(blocks))
	remaining := len(blocks)

	for _, r := range text {
		for i, b := range blocks {
			if !found[i] && b.match(r) {
				found[i] = true
				remaining--
				break
			}
		}
		if remaining == 0 {
			break
		}
	}

	var labels []string
	for i, ok := range found {
		if ok {
			labels = append(labels, blocks[i].label)
		}
	}
	if len(labels) == 0 {
		return []string{Unknown}
	}
	return labels
}

// Union merges label lists into one list in canonical order. Unknown is
// kept only when nothing else is present.
func Union(lists ...[]string) []string {
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, label := range l {
			seen[label] = true
		}
	}

	var out []string
	for _, b := range blocks {
		if seen[b.label] {
			out = append(out, b.label)
		}
	}
	if len(out) == 0 && seen[Unknown] {
		out = []string{Unknown}
	}
	return out
}
