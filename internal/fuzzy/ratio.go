// Package fuzzy scores string similarity on a 0..100 scale.
package fuzzy

import (
	"math"

	"github.com/agext/levenshtein"
)

// indel distance: a substitution costs as much as a delete plus an insert
var indelParams = levenshtein.NewParams().SubCost(2)

// Ratio returns round(100 * (1 - indel(a, b) / (len(a) + len(b)))).
// Two empty strings score 0.
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	return int(math.Round(100 * levenshtein.Similarity(a, b, indelParams)))
}

// Similarity is the plain edit-distance similarity in 0..1 used for short tokens.
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}
