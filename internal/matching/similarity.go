// internal/matching/similarity.go
package matching

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity returns the Levenshtein similarity of two strings as a
// percentage in [0, 100]: ((maxLen - distance) / maxLen) * 100, measured in
// runes with unit-cost insert/delete/substitute edits.
//
// Two empty strings score 100: a shared absence (missing middle or
// extension name on both sides) is a perfect match, not a mismatch.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}

	distance := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen) * 100
}
