package bench

import "sort"

// Percentile computes the p-th percentile (0..100) of xs with linear
// interpolation between closest ranks. Returns 0 for an empty input.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	k := float64(len(sorted)-1) * (p / 100.0)
	f := int(k)
	c := f + 1
	if c > len(sorted)-1 {
		c = len(sorted) - 1
	}
	if f == c {
		return sorted[f]
	}
	return sorted[f] + (sorted[c]-sorted[f])*(k-float64(f))
}
