package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Transcribable lists the languages WhisperX aligns with word timings.
var Transcribable = []string{
	"ar", "ca", "cs", "da", "de", "el", "en", "es", "eu", "fa", "fi", "fr",
	"gl", "he", "hi", "hr", "hu", "it", "ja", "ka", "ko", "lv", "ml", "nl",
	"no", "pl", "pt", "ro", "ru", "sk", "sl", "te", "tr", "uk", "ur", "vi", "zh",
}

var byName = func() map[string]string {
	names := display.English.Languages()
	index := make(map[string]string, len(Transcribable))
	for _, code := range Transcribable {
		name := strings.ToLower(names.Name(xlanguage.MustParse(code)))
		if name != "" {
			index[name] = code
		}
	}
	return index
}()

// ToISO2 maps a code ("en", "eng", "en-US") or an English language name
// ("English") to its two-letter code. Unrecognized input returns "".
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if code, ok := byName[value]; ok {
		return code
	}
	tag, err := xlanguage.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// Aligned reports whether WhisperX can produce word timings for code.
func Aligned(code string) bool {
	code = ToISO2(code)
	for _, candidate := range Transcribable {
		if candidate == code {
			return true
		}
	}
	return false
}

// DisplayName returns the English name for a language code, or the code
// itself when it is not recognized.
func DisplayName(code string) string {
	iso := ToISO2(code)
	if iso == "" {
		return strings.TrimSpace(code)
	}
	name := display.English.Languages().Name(xlanguage.MustParse(iso))
	if name == "" {
		return iso
	}
	return name
}
