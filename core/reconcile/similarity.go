package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Scorer compares two names and returns a similarity in [0,1].
type Scorer func(a, b string) float64

// normalizeName strips all whitespace and folds case.
func normalizeName(s string) []rune {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	// A Caser is stateful, so one is built per call.
	return []rune(cases.Fold().String(s))
}

// Score returns the Dice coefficient over the bigram multisets of a and b.
// Identical names score 1; names shorter than two runes score 0 unless identical.
func Score(a, b string) float64 {
	ra := normalizeName(a)
	rb := normalizeName(b)

	if string(ra) == string(rb) {
		return 1
	}
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	counts := make(map[[2]rune]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		counts[[2]rune{ra[i], ra[i+1]}]++
	}

	matches := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := [2]rune{rb[i], rb[i+1]}
		if counts[bg] > 0 {
			counts[bg]--
			matches++
		}
	}

	return 2 * float64(matches) / float64(len(ra)+len(rb)-2)
}
