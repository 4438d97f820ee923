package word

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize trims s and returns its NFC, lowercase form.
// Decomposed input (e.g. 'a' + combining ring) is composed so that it matches
// the vocabulary keys.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// a Caser is stateful, it is not shared between goroutines
	return cases.Lower(language.Swedish).String(norm.NFC.String(s))
}

// IsWord reports whether s is a non-empty string of lowercase letters, as
// returned by Normalize. Accented letters (idé, kafé) are words too.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
