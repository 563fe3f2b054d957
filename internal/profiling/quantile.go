package profiling

import "math"

// Quantile returns the p-quantile of an ascending slice by linear
// interpolation between the closest ranks: position h = (n-1)p, result
// x[floor(h)] + (h-floor(h)) * (x[floor(h)+1] - x[floor(h)]).
// This is the convention every quartile in the audit uses. It returns NaN
// for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
