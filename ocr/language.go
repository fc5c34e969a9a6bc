package ocr

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// hintLanguages are the languages the hint detector distinguishes, paired
// with their Tesseract trained-data codes.
var hintLanguages = map[lingua.Language]string{
	lingua.English:    "eng",
	lingua.German:     "deu",
	lingua.French:     "fra",
	lingua.Spanish:    "spa",
	lingua.Italian:    "ita",
	lingua.Portuguese: "por",
	lingua.Dutch:      "nld",
}

var (
	hintDetectorOnce sync.Once
	hintDetector     lingua.LanguageDetector
)

// LanguageHints guesses the document language from a text sample and
// returns the matching Tesseract language code, for feeding into
// Input.Languages. Short or inconclusive samples return no hints and leave
// the engine on its own defaults.
func LanguageHints(sample string) []string {
	sample = strings.TrimSpace(sample)
	if len(sample) < 20 {
		return nil
	}
	hintDetectorOnce.Do(func() {
		langs := make([]lingua.Language, 0, len(hintLanguages))
		for lang := range hintLanguages {
			langs = append(langs, lang)
		}
		hintDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build()
	})
	lang, ok := hintDetector.DetectLanguageOf(sample)
	if !ok {
		return nil
	}
	code, ok := hintLanguages[lang]
	if !ok {
		return nil
	}
	return []string{code}
}
