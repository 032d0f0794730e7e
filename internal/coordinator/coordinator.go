package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"oilfx/internal/fetcher"
)

// Coordinator fetches every configured dataset concurrently and hands them
// over only once all of them are resolved, since the join needs fully
// materialized inputs.
type Coordinator struct {
	sources []fetcher.Source
	log     zerolog.Logger
}

// New creates a new Coordinator with the given sources
func New(sources []fetcher.Source, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		sources: sources,
		log:     log,
	}
}

// Run executes all sources concurrently, one goroutine each, and returns the
// results in source order. When any source fails the error joins every
// failure and the returned results still describe each outcome.
func (c *Coordinator) Run(ctx context.Context) ([]fetcher.Result, error) {
	if len(c.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	results := make([]fetcher.Result, len(c.sources))
	var wg sync.WaitGroup

	for i, src := range c.sources {
		wg.Add(1)
		go func(i int, src fetcher.Source) {
			defer wg.Done()

			start := time.Now()
			rows, err := src.Fetch(ctx)
			results[i] = fetcher.Result{
				Key:   src.Key(),
				Field: src.Field(),
				Rows:  rows,
				Error: err,
			}

			ev := c.log.Info()
			if err != nil {
				ev = c.log.Error().Err(err)
			}
			ev.Str("source", src.Key()).
				Int("rows", len(rows)).
				Dur("elapsed", time.Since(start)).
				Msg("dataset fetch finished")
		}(i, src)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) > 0 {
		return results, fmt.Errorf("%d of %d sources failed: %w", len(errs), len(results), errors.Join(errs...))
	}
	return results, nil
}
