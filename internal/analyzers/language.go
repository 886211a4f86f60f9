// Package analyzers provides lightweight content analysis used during
// processing. Detection is heuristic: good enough to label chunks, not
// a general language identifier.
package analyzers

import "unicode"

// Language codes produced by detection.
const (
	LanguageEnglish   = "en"
	LanguageMarathi   = "mr"
	LanguageBilingual = "bilingual"
	LanguageOther     = "other"
)

// script share thresholds for classification
const (
	bilingualShare  = 0.20
	dominantShare   = 0.50
	minLetterSample = 3
)

// DetectLanguage classifies text as English, Marathi, bilingual or
// other by Devanagari versus Latin script share. Non-letter runes are
// ignored. Short or scriptless text defaults to English; text dominated
// by some third script is labelled other.
func DetectLanguage(text string) string {
	var devanagari, latin, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case r < 128:
			latin++
		}
	}
	if letters < minLetterSample {
		return LanguageEnglish
	}

	devShare := float64(devanagari) / float64(letters)
	latShare := float64(latin) / float64(letters)

	otherShare := float64(letters-devanagari-latin) / float64(letters)

	switch {
	case devShare >= bilingualShare && latShare >= bilingualShare:
		return LanguageBilingual
	case devShare >= dominantShare:
		return LanguageMarathi
	case otherShare >= dominantShare:
		return LanguageOther
	default:
		return LanguageEnglish
	}
}

// IsBilingual reports whether the detected language is the bilingual label.
func IsBilingual(language string) bool {
	return language == LanguageBilingual
}
