package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	bioMinRunes = 10
	bioMaxLines = 5
)

// ExtractBio picks descriptive lines out of OCR text. A line qualifies when it
// is not purely numeric, is longer than bioMinRunes and has no metric label.
// Returns "" when nothing qualifies.
func ExtractBio(text string) string {
	var picked []string
	for _, line := range splitLines(text) {
		if len(picked) == bioMaxLines {
			break
		}
		if utf8.RuneCountInString(line) <= bioMinRunes || !hasText(line) || hasLabel(line) {
			continue
		}
		picked = append(picked, line)
	}
	return strings.Join(picked, " ")
}

// hasText reports whether s is more than digits, punctuation and spaces.
func hasText(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
