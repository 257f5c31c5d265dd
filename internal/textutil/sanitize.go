package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeToken turns value into a lowercase token for file names. Accents
// are stripped, ASCII letters, digits, '-' and '_' survive and every other
// rune becomes '_'. Blank results yield "unknown".
func SanitizeToken(value string) string {
	decomposed := norm.NFD.String(strings.TrimSpace(value))
	token := strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(unicode.Mn, r):
			return -1
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, decomposed)
	if token = strings.Trim(token, "_-"); token == "" {
		return "unknown"
	}
	return token
}
