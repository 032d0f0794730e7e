package series

import "time"

// Predicate reports whether a row should be kept.
type Predicate func(Row) bool

// Filter returns the rows of s for which keep is true, in order.
func Filter(s Series, keep Predicate) Series {
	out := make(Series, 0, len(s))
	for _, row := range s {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// All is true when every predicate is. An empty list keeps every row.
func All(preds ...Predicate) Predicate {
	return func(r Row) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// NonZero rejects rows where any of fields is missing or zero.
// Unmatched join rows carry a 0 default, so this drops dates a dataset lacks.
func NonZero(fields ...string) Predicate {
	return func(r Row) bool {
		for _, f := range fields {
			v, ok := r.Float(f)
			if !ok || v == 0 {
				return false
			}
		}
		return true
	}
}

// InOpenRange keeps rows whose fields all lie strictly between lo and hi.
func InOpenRange(lo, hi float64, fields ...string) Predicate {
	return func(r Row) bool {
		for _, f := range fields {
			v, ok := r.Float(f)
			if !ok || v <= lo || v >= hi {
				return false
			}
		}
		return true
	}
}

// ParseDates converts the string in field to a time.Time using layout.
// Rows whose value is already a time are kept as is; rows that fail to parse
// are dropped.
func ParseDates(s Series, field, layout string) Series {
	out := make(Series, 0, len(s))
	for _, row := range s {
		switch v := row[field].(type) {
		case time.Time:
			out = append(out, row)
		case string:
			t, err := time.Parse(layout, v)
			if err != nil {
				continue
			}
			parsed := row.Clone()
			parsed[field] = t
			out = append(out, parsed)
		}
	}
	return out
}
