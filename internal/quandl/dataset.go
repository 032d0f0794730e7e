// Package quandl fetches daily datasets from the Quandl v1 datasets API,
// e.g. CHRIS/CME_CL1 (WTI futures) or CURRFX/USDRUB.
package quandl

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"oilfx/internal/fetcher"
	"oilfx/internal/ratelimit"
	"oilfx/internal/series"
)

// DefaultBaseURL is the production datasets endpoint.
const DefaultBaseURL = "https://www.quandl.com/api/v1/datasets"

// DatasetResponse is the subset of the v1 dataset body that is used.
// Data rows are newest first; cell 0 is the date.
type DatasetResponse struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	ColumnNames []string `json:"column_names"`
	Data        [][]any  `json:"data"`
	Error       string   `json:"error"`
}

// Params selects a dataset and the column to read from it.
type Params struct {
	Code  string // e.g. CURRFX/USDRUB
	Field string // row field the value is stored under, e.g. rate_rub
	// Column is the data column index; 0 means 1, the first value column.
	Column int
	// ColumnName, when set, takes precedence over Column.
	ColumnName string
	// TrimStart limits the dataset to dates on or after it (YYYY-MM-DD).
	TrimStart string
}

// DatasetFetcher fetches one Quandl dataset column as a daily series
type DatasetFetcher struct {
	apiKey  string
	params  Params
	client  *resty.Client
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewDatasetFetcher creates a dataset fetcher using client, which should be
// built with fetcher.NewHTTPClient. limiter may be nil.
func NewDatasetFetcher(apiKey string, params Params, client *resty.Client, limiter *ratelimit.Limiter, log zerolog.Logger) *DatasetFetcher {
	if params.Column <= 0 {
		params.Column = 1
	}
	return &DatasetFetcher{
		apiKey:  apiKey,
		params:  params,
		client:  client,
		limiter: limiter,
		log:     log.With().Str("source", "quandl").Str("code", params.Code).Logger(),
	}
}

// Key returns the source key for this dataset
func (f *DatasetFetcher) Key() string {
	return fmt.Sprintf("source:quandl:%s", f.params.Code)
}

// Field returns the row field the dataset is stored under
func (f *DatasetFetcher) Field() string {
	return f.params.Field
}

// Fetch retrieves the dataset and returns rows of {date, field} oldest first.
// Rows whose cell is null or not a number are skipped.
func (f *DatasetFetcher) Fetch(ctx context.Context) (series.Series, error) {
	if err := f.limiter.Wait(ctx, ratelimit.APIQuandl); err != nil {
		return nil, fetcher.NewTimeoutError(err).For(f.Key())
	}

	query := map[string]string{}
	if f.apiKey != "" {
		query["auth_token"] = f.apiKey
	}
	if f.params.TrimStart != "" {
		query["trim_start"] = f.params.TrimStart
	}

	var result DatasetResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&result).
		Get("/" + f.params.Code + ".json")
	if err != nil {
		return nil, fetcher.ClassifyRequestError(err).For(f.Key())
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode()).For(f.Key())
	}
	if result.Error != "" {
		return nil, fetcher.NewValidationError(result.Error).For(f.Key())
	}

	col, err := f.column(result.ColumnNames)
	if err != nil {
		return nil, err
	}

	rows := make(series.Series, 0, len(result.Data))
	skipped := 0
	for _, cells := range result.Data {
		if len(cells) <= col {
			skipped++
			continue
		}
		date, ok := cells[0].(string)
		value, isNum := cells[col].(float64)
		if !ok || !isNum {
			skipped++
			continue
		}
		rows = append(rows, series.Row{"date": date, f.params.Field: value})
	}
	if len(rows) == 0 {
		return nil, fetcher.NewValidationError("dataset has no usable rows").For(f.Key())
	}

	// ISO dates sort lexically.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i]["date"].(string) < rows[j]["date"].(string)
	})

	f.log.Debug().Int("rows", len(rows)).Int("skipped", skipped).Msg("dataset fetched")
	return rows, nil
}

func (f *DatasetFetcher) column(names []string) (int, error) {
	if f.params.ColumnName == "" {
		return f.params.Column, nil
	}
	for i, name := range names {
		if name == f.params.ColumnName {
			return i, nil
		}
	}
	return 0, fetcher.NewValidationError(fmt.Sprintf("column %q not in dataset", f.params.ColumnName)).For(f.Key())
}
