// internal/matching/normalize.go
package matching

import (
	"strings"
	"unicode"
)

// Normalize prepares a name field for comparison: lower-case, drop every
// rune that is not a letter, digit or whitespace, collapse whitespace runs
// to a single space and trim the ends. Nil/missing fields are passed in as
// "" and normalize to "".
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}

	return b.String()
}

// NormalizePtr normalizes an optional name component.
func NormalizePtr(text *string) string {
	if text == nil {
		return ""
	}
	return Normalize(*text)
}
