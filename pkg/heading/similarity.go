package heading

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two normalized headings in the range 0..1.
type Similarity func(a, b string) float64

// Ratio is the longest-matching-blocks ratio of a and b compared rune by
// rune: twice the matched length over the combined length.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
