package textutil

import (
	"strings"
	"unicode"
)

// NormalizeName folds case and removes every whitespace rune, including the
// non-breaking and ideographic spaces wiki pages pad names with.
func NormalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// SameName reports whether two names differ only by case or whitespace.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
