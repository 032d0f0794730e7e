package stats

import (
	"iter"
	"math"
)

// WindowCount is the number of coefficients RollingCorrelation yields for
// a series of length n: one per start index 0..n-window-1.
func WindowCount(n, window int) int {
	if window < 1 || n <= window {
		return 0
	}
	return n - window
}

// RollingCorrelation returns the Pearson coefficient of every length-window
// slice a[i:i+window] against b[i:i+window], for start indexes 0 through
// len(a)-window-1, in ascending order.
//
// The sequence is lazy and restartable: each range recomputes it from a and b,
// which must not be modified while it is being consumed. Mismatched lengths or
// a window below 1 yield nothing.
func RollingCorrelation(a, b []float64, window int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if len(a) != len(b) {
			return
		}
		for i := range WindowCount(len(a), window) {
			if !yield(Pearson(a[i:i+window], b[i:i+window])) {
				return
			}
		}
	}
}

// Strength maps a coefficient to |r|, replacing NaN with missing.
func Strength(r, missing float64) float64 {
	if math.IsNaN(r) {
		return missing
	}
	return math.Abs(r)
}
