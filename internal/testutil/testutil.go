package testutil

import (
	"context"
	"fmt"
	"time"

	"oilfx/internal/fetcher"
	"oilfx/internal/series"
)

// MockSource is a mock implementation of the Source interface for testing
type MockSource struct {
	FetchFunc func(ctx context.Context) (series.Series, error)
	KeyValue  string
	FieldName string
}

// Fetch implements the Source interface
func (m *MockSource) Fetch(ctx context.Context) (series.Series, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return nil, nil
}

// Key implements the Source interface
func (m *MockSource) Key() string {
	if m.KeyValue != "" {
		return m.KeyValue
	}
	return "source:mock:key"
}

// Field implements the Source interface
func (m *MockSource) Field() string {
	return m.FieldName
}

// NewMockSource creates a mock source returning rows and err
func NewMockSource(key, field string, rows series.Series, err error) fetcher.Source {
	return &MockSource{
		FetchFunc: func(ctx context.Context) (series.Series, error) {
			return rows, err
		},
		KeyValue:  key,
		FieldName: field,
	}
}

// Daily builds n consecutive daily rows starting at start (YYYY-MM-DD) with
// field set to value(i).
func Daily(start string, n int, field string, value func(i int) float64) series.Series {
	t0, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(fmt.Sprintf("testutil.Daily: bad start %q: %v", start, err))
	}
	rows := make(series.Series, n)
	for i := range rows {
		rows[i] = series.Row{
			"date": t0.AddDate(0, 0, i).Format("2006-01-02"),
			field:  value(i),
		}
	}
	return rows
}
