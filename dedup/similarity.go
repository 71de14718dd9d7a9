package dedup

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Normalize lower-cases s and collapses every whitespace run to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similarity compares two texts on a 0..1 scale after normalization.
// Identical normalized texts score 1; otherwise the score is
// 1 - editDistance/maxLength, measured in runes.
func Similarity(a, b string) float64 {
	return normalizedSimilarity(Normalize(a), Normalize(b))
}

func normalizedSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
