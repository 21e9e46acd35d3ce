// Package detector decides whether a span of text needs translation and,
// when the source language is set to auto, guesses what that language is.
package detector

import (
	"fmt"
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minVerifyLength is the minimum rune count for output verification.
// Detection on shorter fragments is unreliable, so they pass unchecked.
const minVerifyLength = 20

// Detector wraps a statistical language detector for --source-lang auto.
// Construction is expensive (the models are loaded once); share one
// instance across workers, it is safe for concurrent use.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// VerifyTarget checks that translated output actually reads as targetLang.
// Short texts and texts the detector cannot classify pass without error;
// a confident mismatch returns an error naming both codes.
func (d *Detector) VerifyTarget(text, targetLang string) error {
	if targetLang == "" {
		return nil
	}
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minVerifyLength {
		return nil
	}
	detected, ok := d.DetectISO(text)
	if !ok {
		return nil
	}
	if !strings.EqualFold(detected, targetLang) {
		return fmt.Errorf("expected %s but output looks like %s", targetLang, detected)
	}
	return nil
}

// ContainsCJK reports whether text contains Han ideographs, Japanese kana
// or Korean hangul. Comments written purely in ASCII are already readable
// and are skipped by default; statistical detection is far too noisy on
// three-word comment fragments, so the filter is a plain script check.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) ||
			unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) ||
			unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
