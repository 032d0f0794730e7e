package fetcher

import "oilfx/internal/series"

// Result represents the outcome of fetching one source.
type Result struct {
	// Key is the source key, see Source.Key.
	Key string

	// Field is the row field the dataset's value is stored under.
	Field string

	// Rows is the fetched dataset. It is nil when Error is set.
	Rows series.Series

	Error error
}
