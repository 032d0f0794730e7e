// Package series holds the keyed rows a dataset is made of and the pure
// transforms applied to them: joining datasets on a shared key, validity
// filtering and period-over-period percent change.
package series

import (
	"math"
	"reflect"
	"sort"
	"time"
)

// Row is one keyed record of a dataset, e.g. one day's prices and rates.
// Values are string, float64 or time.Time.
type Row map[string]any

// Float returns the numeric value stored under field.
// The second result is false when the field is missing or not a number.
func (r Row) Float(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Time returns the time value stored under field.
func (r Row) Time(field string) (time.Time, bool) {
	t, ok := r[field].(time.Time)
	return t, ok
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Series is an ordered sequence of rows, ascending by join key.
type Series []Row

// Floats extracts field as a column. Missing or non-numeric values become NaN.
func (s Series) Floats(field string) []float64 {
	out := make([]float64, len(s))
	for i, row := range s {
		v, ok := row.Float(field)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// Clone deep-copies the series one row level down.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	for i, row := range s {
		out[i] = row.Clone()
	}
	return out
}

// SortByTime returns a copy of s ordered ascending by the time value in field.
// Rows without a time value sort first, keeping their relative order.
func SortByTime(s Series, field string) Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].Time(field)
		tj, _ := out[j].Time(field)
		return ti.Before(tj)
	})
	return out
}

func hashable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Comparable()
}
