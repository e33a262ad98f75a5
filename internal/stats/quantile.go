// internal/stats/quantile.go
// Package: stats
package stats

import (
	"math"
	"slices"
)

// Quantile returns the q-quantile (0..1) of values, interpolating
// linearly between the two closest order statistics (position q*(n-1)).
// At q = 0.5 this is the usual median: the mean of the middle pair for an
// even count. The input is not modified.
func Quantile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyGroup
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	last := len(sorted) - 1
	if !(q > 0) {
		q = 0
	}
	q = math.Min(1, q)

	whole, frac := math.Modf(q * float64(last))
	i := int(whole)
	if i >= last || frac == 0 {
		return sorted[min(i, last)], nil
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i]), nil
}
