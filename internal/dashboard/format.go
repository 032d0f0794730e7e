package dashboard

import (
	"math"
	"strconv"
	"time"
)

// Tone is the color class of a formatted change.
type Tone string

const (
	Positive Tone = "positive"
	Negative Tone = "negative"
	Neutral  Tone = "neutral"
)

// TitleDateLayout renders chart tooltip dates, e.g. "Jan 02 2015".
const TitleDateLayout = "Jan 02 2006"

// FormatChange renders a fractional change as a percentage with two decimals.
// The tone follows the rendered text, so "-0.00" is not negative.
// Non-finite changes render as "n/a" with a neutral tone.
func FormatChange(v float64) (string, Tone) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a", Neutral
	}
	s := strconv.FormatFloat(v*100, 'f', 2, 64)
	if n, _ := strconv.ParseFloat(s, 64); n < 0 {
		return s, Negative
	}
	return s, Positive
}

// FormatValue renders v with precision decimals, showing NaN as 0.
func FormatValue(v float64, precision int) string {
	if math.IsNaN(v) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// FormatTitle renders a chart tooltip: the date, then the value and unit.
func FormatTitle(t time.Time, v float64, unit string) string {
	return t.Format(TitleDateLayout) + "\n" + FormatValue(v, 2) + unit
}
