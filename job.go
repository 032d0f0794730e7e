package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"oilfx/internal/alphavantage"
	"oilfx/internal/boxing"
	"oilfx/internal/config"
	"oilfx/internal/coordinator"
	"oilfx/internal/csvsource"
	"oilfx/internal/dashboard"
	"oilfx/internal/fetcher"
	"oilfx/internal/pipeline"
	"oilfx/internal/quandl"
	"oilfx/internal/ratelimit"
	"oilfx/internal/series"
)

// fetchTimeout bounds one complete fetch of every dataset.
const fetchTimeout = 2 * time.Minute

// job is one refresh cycle: fetch every dataset, derive the series and build
// the dashboard snapshot.
type job struct {
	coord    *coordinator.Coordinator
	opts     pipeline.Options
	profiles map[dashboard.Currency]dashboard.Profile
	oil      dashboard.OilFields
	active   dashboard.Currency
	boxing   string
	log      zerolog.Logger
	now      func() time.Time
}

func newJob(cfg *config.Config, sources []fetcher.Source, log zerolog.Logger) (*job, error) {
	active, err := dashboard.ParseCurrency(cfg.ActiveCurrency)
	if err != nil {
		return nil, err
	}
	return &job{
		coord:    coordinator.New(sources, log),
		opts:     pipelineOptions(cfg),
		profiles: dashboard.DefaultProfiles(),
		oil:      dashboard.DefaultOilFields(),
		active:   active,
		boxing:   cfg.BoxingCSV,
		log:      log,
		now:      time.Now,
	}, nil
}

// Refresh implements scheduler.Refresher.
func (j *job) Refresh(ctx context.Context) (*dashboard.Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	results, err := j.coord.Run(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("fetch datasets: %w", err)
	}

	inputs := make([]pipeline.Input, len(results))
	for i, r := range results {
		inputs[i] = pipeline.Input{Name: r.Key, Field: r.Field, Rows: r.Rows}
	}
	res, err := pipeline.Run(inputs, j.opts)
	if err != nil {
		return nil, fmt.Errorf("derive series: %w", err)
	}
	j.log.Info().
		Int("joined", res.Joined).
		Int("dropped", res.Dropped).
		Int("rows", len(res.Rows)).
		Msg("series derived")

	st, err := dashboard.NewState(res.Rows, j.profiles, j.oil, j.active, j.opts.JoinKey)
	if err != nil {
		return nil, err
	}
	snap := dashboard.NewSnapshot(st, res.Rows, j.now().UTC())

	if j.boxing != "" {
		b, err := boxing.Load(j.boxing)
		if err != nil {
			return nil, fmt.Errorf("boxing summary: %w", err)
		}
		j.log.Debug().Int("punches", b.Rows).Str("path", j.boxing).Msg("boxing summary loaded")
		snap.Boxing = b
	}
	return &snap, nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	corrs := make([]pipeline.CorrelationPair, len(cfg.Correlations))
	for i, c := range cfg.Correlations {
		corrs[i] = pipeline.CorrelationPair{X: c.X, Y: c.Y, Field: c.Field}
	}

	var keep []series.Predicate
	if len(cfg.Filter.NonZeroFields) > 0 {
		keep = append(keep, series.NonZero(cfg.Filter.NonZeroFields...))
	}
	if len(cfg.Filter.PriceFields) > 0 {
		keep = append(keep, series.InOpenRange(cfg.Filter.PriceMin, cfg.Filter.PriceMax, cfg.Filter.PriceFields...))
	}

	opts := pipeline.Options{
		JoinKey:            "date",
		ChangeFields:       cfg.ChangeFields,
		Correlations:       corrs,
		WindowPeriod:       cfg.WindowPeriod,
		MissingCorrelation: cfg.MissingCorrelation,
		Signed:             cfg.SignedCorrelation,
	}
	if len(keep) > 0 {
		opts.Keep = series.All(keep...)
	}
	return opts
}

// buildSources creates one source per configured dataset, in order. HTTP
// sources of the same provider share a client and the limiter.
func buildSources(cfg *config.Config, log zerolog.Logger) ([]fetcher.Source, error) {
	limits := make(map[ratelimit.API]rate.Limit, len(cfg.RequestRate))
	for api, r := range cfg.RequestRate {
		limits[ratelimit.API(api)] = rate.Limit(r)
	}
	limiter := ratelimit.New(limits)

	clientOpts := fetcher.ClientOptions{Timeout: cfg.HTTPTimeout, UserAgent: cfg.HTTPUserAgent, Logger: log}
	quandlClient := fetcher.NewHTTPClient(cfg.QuandlBaseURL, clientOpts)
	avClient := fetcher.NewHTTPClient(cfg.AlphavantageBaseURL, clientOpts)

	sources := make([]fetcher.Source, 0, len(cfg.Datasets))
	for _, d := range cfg.Datasets {
		switch d.Provider {
		case "quandl":
			sources = append(sources, quandl.NewDatasetFetcher(cfg.QuandlAPIKey, quandl.Params{
				Code:       d.Code,
				Field:      d.Field,
				Column:     d.Column,
				ColumnName: d.ColumnName,
				TrimStart:  cfg.TrimStart,
			}, quandlClient, limiter, log))
		case "alphavantage":
			sources = append(sources, alphavantage.NewDailyFetcher(cfg.AlphavantageAPIKey, alphavantage.Params{
				Function:   d.Function,
				FromSymbol: d.FromSymbol,
				ToSymbol:   d.ToSymbol,
				Field:      d.Field,
				TrimStart:  cfg.TrimStart,
			}, avClient, limiter, log))
		case "csv":
			sources = append(sources, csvsource.NewFileSource(d.Path, csvsource.Options{
				DateColumn:  d.DateColumn,
				ValueColumn: d.ValueColumn,
				Field:       d.Field,
			}))
		default:
			return nil, fmt.Errorf("unknown provider %q for field %s", d.Provider, d.Field)
		}
	}
	return sources, nil
}

// writeSnapshot writes snap to path, or to stdout when path is empty. Files
// are replaced atomically so readers never see a partial snapshot.
func writeSnapshot(path string, snap *dashboard.Snapshot) error {
	if path == "" {
		return dashboard.Encode(os.Stdout, snap)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := dashboard.Encode(tmp, snap); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
