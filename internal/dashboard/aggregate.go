package dashboard

import (
	"sort"
	"time"

	"oilfx/internal/series"
)

// Period is the bucket width of an aggregate.
type Period int

const (
	Day Period = iota
	Week
	Month
)

// Truncate returns the start of the period containing t, in t's location.
// Weeks start on Sunday.
func (p Period) Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	switch p {
	case Week:
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

// Average is a running mean that supports removal, so a bucket can follow
// a filter being applied and cleared.
type Average struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
	Avg   float64 `json:"avg"`
}

// Add folds v into the mean.
func (a *Average) Add(v float64) {
	a.Count++
	a.Total += v
	a.update()
}

// Remove takes v back out of the mean.
func (a *Average) Remove(v float64) {
	a.Count--
	a.Total -= v
	a.update()
}

func (a *Average) update() {
	if a.Count == 0 {
		a.Avg = 0
		return
	}
	a.Avg = a.Total / float64(a.Count)
}

// Bucket is the average of one period.
type Bucket struct {
	Key time.Time `json:"key"`
	Average
}

// Group averages one value field per period. Add and Remove always read the
// same field.
type Group struct {
	timeField  string
	valueField string
	period     Period
	buckets    map[time.Time]*Average
}

// NewGroup creates an empty group.
func NewGroup(timeField, valueField string, period Period) *Group {
	return &Group{
		timeField:  timeField,
		valueField: valueField,
		period:     period,
		buckets:    make(map[time.Time]*Average),
	}
}

// Add folds row into its bucket. Rows without a time or value are ignored.
func (g *Group) Add(row series.Row) {
	key, v, ok := g.read(row)
	if !ok {
		return
	}
	b, found := g.buckets[key]
	if !found {
		b = &Average{}
		g.buckets[key] = b
	}
	b.Add(v)
}

// Remove takes row back out of its bucket. Empty buckets are kept, like
// crossfilter groups, and report an average of 0.
func (g *Group) Remove(row series.Row) {
	key, v, ok := g.read(row)
	if !ok {
		return
	}
	if b, found := g.buckets[key]; found {
		b.Remove(v)
	}
}

// All returns the buckets ordered by period start.
func (g *Group) All() []Bucket {
	out := make([]Bucket, 0, len(g.buckets))
	for k, b := range g.buckets {
		out = append(out, Bucket{Key: k, Average: *b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Before(out[j].Key) })
	return out
}

func (g *Group) read(row series.Row) (time.Time, float64, bool) {
	t, ok := row.Time(g.timeField)
	if !ok {
		return time.Time{}, 0, false
	}
	v, ok := row.Float(g.valueField)
	if !ok {
		return time.Time{}, 0, false
	}
	return g.period.Truncate(t), v, true
}

// Aggregate averages valueField of s per period.
func Aggregate(s series.Series, timeField, valueField string, p Period) []Bucket {
	g := NewGroup(timeField, valueField, p)
	for _, row := range s {
		g.Add(row)
	}
	return g.All()
}
