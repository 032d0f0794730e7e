package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"oilfx/internal/fetcher"
	"oilfx/internal/ratelimit"
	"oilfx/internal/series"
)

// DefaultBaseURL is the production query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Supported functions.
const (
	FunctionFXDaily = "FX_DAILY"
	FunctionWTI     = "WTI"
	FunctionBrent   = "BRENT"
)

// DailyResponse covers both daily shapes the API returns: the FX time series
// keyed by date and the commodity data array. Throttling and bad requests come
// back as 200 with Note, Information or Error Message set.
type DailyResponse struct {
	FXDaily map[string]map[string]string `json:"Time Series FX (Daily)"`
	Data    []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// Params selects a daily series.
type Params struct {
	Function   string // FX_DAILY, WTI or BRENT
	FromSymbol string // FX_DAILY only, e.g. USD
	ToSymbol   string // FX_DAILY only, e.g. RUB
	Field      string // row field the value is stored under
	// TrimStart drops dates before it (YYYY-MM-DD); the API has no such filter.
	TrimStart string
}

// DailyFetcher fetches a daily FX rate or commodity price from Alpha Vantage
type DailyFetcher struct {
	apiKey  string
	params  Params
	client  *resty.Client
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewDailyFetcher creates a new daily series fetcher. limiter may be nil.
func NewDailyFetcher(apiKey string, params Params, client *resty.Client, limiter *ratelimit.Limiter, log zerolog.Logger) *DailyFetcher {
	f := &DailyFetcher{
		apiKey:  apiKey,
		params:  params,
		client:  client,
		limiter: limiter,
	}
	f.log = log.With().Str("source", "alphavantage").Str("dataset", f.dataset()).Logger()
	return f
}

func (f *DailyFetcher) dataset() string {
	if f.params.Function == FunctionFXDaily {
		return fmt.Sprintf("%s/%s/%s", f.params.Function, f.params.FromSymbol, f.params.ToSymbol)
	}
	return f.params.Function
}

// Key returns the source key for this series
func (f *DailyFetcher) Key() string {
	return "source:alphavantage:" + f.dataset()
}

// Field returns the row field the series is stored under
func (f *DailyFetcher) Field() string {
	return f.params.Field
}

// Fetch retrieves the series as rows of {date, field}, oldest first.
func (f *DailyFetcher) Fetch(ctx context.Context) (series.Series, error) {
	query := map[string]string{
		"apikey":   f.apiKey,
		"function": f.params.Function,
	}
	switch f.params.Function {
	case FunctionFXDaily:
		query["from_symbol"] = f.params.FromSymbol
		query["to_symbol"] = f.params.ToSymbol
		query["outputsize"] = "full"
	case FunctionWTI, FunctionBrent:
		query["interval"] = "daily"
	default:
		return nil, fetcher.NewValidationError(fmt.Sprintf("unsupported function %q", f.params.Function)).For(f.Key())
	}

	if err := f.limiter.Wait(ctx, ratelimit.APIAlphaVantage); err != nil {
		return nil, fetcher.NewTimeoutError(err).For(f.Key())
	}

	var result DailyResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&result).
		Get("")
	if err != nil {
		return nil, fetcher.ClassifyRequestError(err).For(f.Key())
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode()).For(f.Key())
	}

	switch {
	case result.Note != "":
		return nil, fetcher.NewRateLimitError(resp.StatusCode(), result.Note).For(f.Key())
	case result.Information != "":
		return nil, fetcher.NewRateLimitError(resp.StatusCode(), result.Information).For(f.Key())
	case result.ErrorMessage != "":
		return nil, fetcher.NewValidationError(result.ErrorMessage).For(f.Key())
	}

	rows := f.rows(&result)
	if len(rows) == 0 {
		return nil, fetcher.NewValidationError("series has no usable rows").For(f.Key())
	}
	f.log.Debug().Int("rows", len(rows)).Msg("series fetched")
	return rows, nil
}

func (f *DailyFetcher) rows(result *DailyResponse) series.Series {
	var rows series.Series
	add := func(date, raw string) {
		if f.params.TrimStart != "" && date < f.params.TrimStart {
			return
		}
		// Missing commodity days are reported as ".".
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return
		}
		rows = append(rows, series.Row{"date": date, f.params.Field: v})
	}

	if f.params.Function == FunctionFXDaily {
		for date, bar := range result.FXDaily {
			add(date, bar["4. close"])
		}
	} else {
		for _, d := range result.Data {
			add(d.Date, d.Value)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["date"].(string) < rows[j]["date"].(string)
	})
	return rows
}
