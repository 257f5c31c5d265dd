package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes text to NFC and applies Unicode case folding so keyword
// comparisons ignore case in every script.
func Fold(text string) string {
	return cases.Fold().String(norm.NFC.String(text))
}

// ContainsAny reports whether the folded text contains any of the folded
// needles as a substring. Empty needles never match.
func ContainsAny(text string, needles []string) bool {
	folded := Fold(text)
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(folded, Fold(needle)) {
			return true
		}
	}
	return false
}

// Truncate returns at most limit runes of text.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

// TitleCase converts text to English title case.
func TitleCase(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(text)
}

// WordCount returns the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
