package fetcher

import (
	"context"

	"oilfx/internal/series"
)

// Source is the interface every dataset provider implements.
// A source retrieves one daily dataset and names the field its value is
// stored under, so the pipeline can join it onto the others.
type Source interface {
	// Fetch retrieves the dataset as rows of {date, Field()}, ascending by date.
	Fetch(ctx context.Context) (series.Series, error)

	// Key identifies the source in logs and errors.
	// Format: source:{provider}:{dataset}
	// Examples:
	//   - source:quandl:CHRIS/CME_CL1
	//   - source:alphavantage:FX_DAILY/USD/RUB
	//   - source:csv:data/may-vs-pac.csv
	Key() string

	// Field is the row field holding the fetched value, e.g. wti_price.
	Field() string
}
