// Package stats computes correlation statistics over numeric series.
//
// Missing observations are represented as NaN. A pair where either side is
// NaN is dropped from both vectors before any statistic is computed.
package stats

import "math"

// Pearson returns the Pearson correlation coefficient of x and y, paired by
// position.
//
// The result is NaN when the vectors differ in length, when fewer than two
// complete pairs remain, or when either side has zero variance. NaN means
// "no correlation signal" and is never an error.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}

	var (
		n          int
		sumX, sumY float64
		constX     = true
		constY     = true
		firstX     float64
		firstY     float64
	)
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		if n == 0 {
			firstX, firstY = x[i], y[i]
		}
		constX = constX && x[i] == firstX
		constY = constY && y[i] == firstY
		sumX += x[i]
		sumY += y[i]
		n++
	}
	if n < 2 || constX || constY {
		return math.NaN()
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	// Centered sums; algebraically equal to Σxy - n·x̄·ȳ over
	// sqrt(Σx² - n·x̄²)·sqrt(Σy² - n·ȳ²) but without the cancellation.
	var sxy, sxx, syy float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	denominator := math.Sqrt(sxx) * math.Sqrt(syy)
	if denominator == 0 {
		return math.NaN()
	}
	r := sxy / denominator

	// Rounding can push a perfect fit just past ±1.
	return math.Max(-1, math.Min(1, r))
}
