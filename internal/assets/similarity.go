package assets

import (
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
)

// minTokenLength is the shortest token that counts toward similarity; shorter ones are noise.
const minTokenLength = 3

// Similarity returns the Jaccard index of the token sets of a and b, in [0, 1].
// It is advisory only and used to label conflicts for a human decision.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	emptyA, emptyB := strings.TrimSpace(a) == "", strings.TrimSpace(b) == ""
	switch {
	case emptyA && emptyB:
		return 1
	case emptyA || emptyB:
		return 0
	}

	// Texts made only of noise tokens on both sides carry nothing to tell apart.
	ta := tokenSet(a)
	tb := tokenSet(b)

	switch {
	case ta.Cardinality() == 0 && tb.Cardinality() == 0:
		return 1
	case ta.Cardinality() == 0 || tb.Cardinality() == 0:
		return 0
	}

	union := ta.Union(tb).Cardinality()
	return float64(ta.Intersect(tb).Cardinality()) / float64(union)
}

// SimilarityLabel bands a similarity score for display.
func SimilarityLabel(score float64) string {
	switch {
	case score >= 0.9:
		return "nearly identical"
	case score >= 0.7:
		return "very similar"
	case score >= 0.5:
		return "similar"
	case score >= 0.3:
		return "somewhat different"
	default:
		return "very different"
	}
}

func tokenSet(text string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, field := range strings.Fields(text) {
		token := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, field)
		if utf8.RuneCountInString(token) >= minTokenLength {
			set.Add(token)
		}
	}
	return set
}
