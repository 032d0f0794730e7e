package series

// Selector builds an output row from a main row and its matching lookup row.
// lookup is nil when the main row's key has no match; the selector must then
// supply defaults for any lookup-derived fields.
type Selector func(main, lookup Row) Row

// Join merges lookup into main on lookupKey/mainKey.
//
// Keys are compared as raw values: the string "2019-01-01" never matches a
// time.Time. When lookup repeats a key the last row wins. The result has
// exactly one row per main row, in main's order.
func Join(lookup, main Series, lookupKey, mainKey string, sel Selector) Series {
	index := make(map[any]Row, len(lookup))
	for _, row := range lookup {
		k, ok := row[lookupKey]
		if !ok || !hashable(k) {
			continue
		}
		index[k] = row
	}

	out := make(Series, 0, len(main))
	for _, row := range main {
		var match Row
		if k, ok := row[mainKey]; ok && hashable(k) {
			match = index[k]
		}
		out = append(out, sel(row, match))
	}
	return out
}

// WithField returns a selector that copies the main row and adds field taken
// from the lookup row, or def when there is no match or the lookup value is
// missing.
func WithField(field string, def float64) Selector {
	return func(main, lookup Row) Row {
		out := main.Clone()
		out[field] = def
		if lookup != nil {
			if v, ok := lookup.Float(field); ok {
				out[field] = v
			}
		}
		return out
	}
}
