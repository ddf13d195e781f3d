package dataprocessing

import (
	"math"
	"sort"
)

// quantile returns the p-quantile of values using linear interpolation
// between closest ranks (Hyndman-Fan type 7). values is not modified.
// The second result is false for an empty input.
func quantile(values []float64, p float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0], true
	}
	if p >= 1 {
		return sorted[len(sorted)-1], true
	}

	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i], true
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i]), true
}

// mean returns the arithmetic mean, or 0 for an empty input.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
