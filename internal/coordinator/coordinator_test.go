package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"oilfx/internal/fetcher"
	"oilfx/internal/series"
	"oilfx/internal/testutil"
)

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func TestNew(t *testing.T) {
	sources := []fetcher.Source{
		testutil.NewMockSource("source:mock:wti", "wti_price", nil, nil),
		testutil.NewMockSource("source:mock:rub", "rate_rub", nil, nil),
	}

	coord := New(sources, zerolog.Nop())
	if coord == nil {
		t.Fatal("New() returned nil")
	}

	if len(coord.sources) != len(sources) {
		t.Errorf("New() created coordinator with %d sources, want %d", len(coord.sources), len(sources))
	}
}

func TestRun_Success(t *testing.T) {
	sources := []fetcher.Source{
		testutil.NewMockSource("source:mock:wti", "wti_price", testutil.Daily("2015-01-01", 3, "wti_price", constant(50)), nil),
		testutil.NewMockSource("source:mock:brent", "brent_price", testutil.Daily("2015-01-01", 2, "brent_price", constant(55)), nil),
		testutil.NewMockSource("source:mock:rub", "rate_rub", testutil.Daily("2015-01-01", 1, "rate_rub", constant(60)), nil),
	}

	results, err := New(sources, zerolog.Nop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	tests := []struct {
		key   string
		field string
		rows  int
	}{
		{"source:mock:wti", "wti_price", 3},
		{"source:mock:brent", "brent_price", 2},
		{"source:mock:rub", "rate_rub", 1},
	}
	for i, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if results[i].Key != tt.key {
				t.Errorf("results[%d].Key = %q, want %q", i, results[i].Key, tt.key)
			}
			if results[i].Field != tt.field {
				t.Errorf("results[%d].Field = %q, want %q", i, results[i].Field, tt.field)
			}
			if len(results[i].Rows) != tt.rows {
				t.Errorf("results[%d] rows = %d, want %d", i, len(results[i].Rows), tt.rows)
			}
		})
	}
}

func TestRun_WithErrors(t *testing.T) {
	testErr := errors.New("fetch failed")

	sources := []fetcher.Source{
		testutil.NewMockSource("source:mock:wti", "wti_price", testutil.Daily("2015-01-01", 3, "wti_price", constant(50)), nil),
		testutil.NewMockSource("source:mock:rub", "rate_rub", nil, testErr),
	}

	results, err := New(sources, zerolog.Nop()).Run(context.Background())

	// The join needs every dataset, so one failure fails the run.
	if err == nil {
		t.Fatal("Run() expected error when a source fails, got nil")
	}
	if !errors.Is(err, testErr) {
		t.Errorf("Run() error = %v, want it to wrap %v", err, testErr)
	}
	if len(results) != 2 || results[0].Error != nil || results[1].Error != testErr {
		t.Errorf("results do not describe each outcome: %+v", results)
	}
}

func TestRun_NoSources(t *testing.T) {
	_, err := New([]fetcher.Source{}, zerolog.Nop()).Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error for no sources, got nil")
	}

	expectedErrMsg := "no sources configured"
	if err.Error() != expectedErrMsg {
		t.Errorf("Run() error = %q, want %q", err.Error(), expectedErrMsg)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	slow := &testutil.MockSource{
		FetchFunc: func(ctx context.Context) (series.Series, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return series.Series{}, nil
			}
		},
		KeyValue: "source:mock:slow",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New([]fetcher.Source{slow}, zerolog.Nop()).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Run() did not return promptly after the deadline")
	}
}

func TestRun_ConcurrentExecution(t *testing.T) {
	sleeper := func(key string, d time.Duration) fetcher.Source {
		return &testutil.MockSource{
			FetchFunc: func(ctx context.Context) (series.Series, error) {
				time.Sleep(d)
				return series.Series{{"date": key}}, nil
			},
			KeyValue: key,
		}
	}
	sources := []fetcher.Source{
		sleeper("a", 150*time.Millisecond),
		sleeper("b", 150*time.Millisecond),
		sleeper("c", 150*time.Millisecond),
	}

	start := time.Now()
	results, err := New(sources, zerolog.Nop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	// Sequential execution would take at least 450ms.
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Run() took %v, want concurrent execution", elapsed)
	}
	// Results keep source order regardless of completion order.
	for i, key := range []string{"a", "b", "c"} {
		if results[i].Key != key {
			t.Errorf("results[%d].Key = %q, want %q", i, results[i].Key, key)
		}
	}
}
