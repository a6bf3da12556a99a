package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"odia only", "ଓଡ଼ିଆ ଭାଷା", []string{Odia}},
		{"empty", "", []string{Unknown}},
		{"digits and punctuation", "123 - 456 !?", []string{Unknown}},
		{"latin", "Hello", []string{Latin}},
		{"devanagari then latin", "नमस्ते world", []string{Devanagari, Latin}},
		{"latin then devanagari keeps canonical order", "world नमस्ते", []string{Devanagari, Latin}},
		{"accented latin outside ascii", "éàü", []string{Unknown}},
		{"hiragana and katakana", "ひらがな カタカナ", []string{Japanese}},
		{"cjk and hangul", "中文 한국어", []string{Chinese, Korean}},
		{"cyrillic and arabic", "Привет مرحبا", []string{Arabic, Russian}},
		{"bengali tamil telugu", "বাংলা தமிழ் తెలుగు", []string{BengaliAssamese, Tamil, Telugu}},
		{"malayalam kannada gujarati punjabi", "മലയാളം ಕನ್ನಡ ગુજરાતી ਪੰਜਾਬੀ", []string{Malayalam, Kannada, Gujarati, Punjabi}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "Invoice: ଟଙ୍କା 500 नमस्ते"
	first := Classify(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify(text))
	}
}

func TestLabelsCanonicalOrder(t *testing.T) {
	labels := Labels()
	assert.Equal(t, Devanagari, labels[0])
	assert.Equal(t, Odia, labels[1])
	assert.Equal(t, Latin, labels[len(labels)-1])
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{Devanagari, Odia, Latin},
		Union([]string{Latin, Odia}, []string{Unknown}, []string{Devanagari}))
	assert.Equal(t, []string{Unknown}, Union([]string{Unknown}, []string{Unknown}))
	assert.Nil(t, Union())
}
