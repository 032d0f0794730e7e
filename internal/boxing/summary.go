package boxing

import (
	"math"
	"sort"
	"strconv"
)

// RoundTotal holds the per-round sums behind the stacked punch bar and the
// landed punch series.
type RoundTotal struct {
	Round            int     `json:"round"`
	Rows             int     `json:"rows"`
	Mayweather       float64 `json:"mayweather"`
	Pacquiao         float64 `json:"pacquiao"`
	MayweatherLanded float64 `json:"mayweather_landed"`
	PacquiaoLanded   float64 `json:"pacquiao_landed"`
}

// Count is one bar of a row chart, labelled "key (value)".
type Count struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Share is one slice of an outcome pie. Percent is floored and taken of the
// boxer's punch total, so the slices need not add up to 100.
type Share struct {
	Key     string `json:"key"`
	Value   int    `json:"value"`
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

// Summary is the boxing dashboard.
type Summary struct {
	Rows            int          `json:"rows"`
	MayweatherTotal float64      `json:"mayweather_total"`
	PacquiaoTotal   float64      `json:"pacquiao_total"`
	Rounds          []RoundTotal `json:"rounds"`
	Boxers          []Count      `json:"boxers"`
	Outcomes        []Count      `json:"outcomes"`
	PunchTypes      []Count      `json:"punch_types"`

	MayweatherOutcomes []Share `json:"mayweather_outcomes"`
	PacquiaoOutcomes   []Share `json:"pacquiao_outcomes"`
}

// Summarize computes every chart of the dashboard from punches.
func Summarize(punches []Punch) Summary {
	s := Summary{
		Rows:       len(punches),
		Rounds:     RoundTotals(punches),
		Boxers:     countBy(punches, func(p Punch) string { return p.Boxer }),
		Outcomes:   countBy(punches, func(p Punch) string { return p.Outcome }),
		PunchTypes: countBy(punches, func(p Punch) string { return p.PunchType }),
	}
	for _, p := range punches {
		s.MayweatherTotal += p.Mayweather
		s.PacquiaoTotal += p.Pacquiao
	}
	s.MayweatherOutcomes = OutcomeShares(punches, Mayweather, s.MayweatherTotal)
	s.PacquiaoOutcomes = OutcomeShares(punches, Pacquiao, s.PacquiaoTotal)
	return s
}

// RoundTotals sums every round from 1 to Rounds, or to the last round
// present when the file runs longer. Rounds without rows are zero.
func RoundTotals(punches []Punch) []RoundTotal {
	last := Rounds
	for _, p := range punches {
		last = max(last, p.Round)
	}
	out := make([]RoundTotal, last)
	for i := range out {
		out[i].Round = i + 1
	}
	for _, p := range punches {
		rt := &out[p.Round-1]
		rt.Rows++
		rt.Mayweather += p.Mayweather
		rt.Pacquiao += p.Pacquiao
		switch p.Boxer {
		case Mayweather:
			rt.MayweatherLanded += p.Landed
		case Pacquiao:
			rt.PacquiaoLanded += p.Landed
		}
	}
	return out
}

// OutcomeCounts counts the rows of boxer per outcome. Rows of the other
// boxer and rows without an outcome are left out.
func OutcomeCounts(punches []Punch, boxer string) []Count {
	var own []Punch
	for _, p := range punches {
		if p.Boxer == boxer && p.Outcome != "" && p.Outcome != "null" {
			own = append(own, p)
		}
	}
	return countBy(own, func(p Punch) string { return p.Outcome })
}

// OutcomeShares labels the outcome counts of boxer as floored percentages of
// total, e.g. " (41%)". A zero total yields 0%.
func OutcomeShares(punches []Punch, boxer string, total float64) []Share {
	counts := OutcomeCounts(punches, boxer)
	out := make([]Share, len(counts))
	for i, c := range counts {
		pct := 0
		if c.Value != 0 && total != 0 {
			pct = int(math.Floor(float64(c.Value) / total * 100))
		}
		out[i] = Share{
			Key:     c.Key,
			Value:   c.Value,
			Percent: pct,
			Label:   " (" + strconv.Itoa(pct) + "%)",
		}
	}
	return out
}

// countBy counts punches per key, sorted by key.
func countBy(punches []Punch, key func(Punch) string) []Count {
	counts := make(map[string]int)
	for _, p := range punches {
		counts[key(p)]++
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Value: n, Label: k + " (" + strconv.Itoa(n) + ")"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
