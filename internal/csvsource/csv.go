// Package csvsource loads a daily dataset from a local CSV file with a header
// row, for offline runs and datasets that are not served over HTTP.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"oilfx/internal/fetcher"
	"oilfx/internal/series"
)

// Options selects the columns to read.
type Options struct {
	DateColumn  string // default "date"
	ValueColumn string // required
	Field       string // row field; defaults to ValueColumn
	Delimiter   rune   // default ','
}

func (o Options) withDefaults() Options {
	if o.DateColumn == "" {
		o.DateColumn = "date"
	}
	if o.Field == "" {
		o.Field = o.ValueColumn
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	return o
}

// Read parses rows of {date, field} from r, oldest first. Rows with an empty
// or non-numeric value (NA, NaN, null) are skipped.
func Read(r io.Reader, opts Options) (series.Series, error) {
	opts = opts.withDefaults()
	if opts.ValueColumn == "" {
		return nil, errors.New("value column is required")
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateIdx, valueIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.DateColumn:
			dateIdx = i
		case opts.ValueColumn:
			valueIdx = i
		}
	}
	if dateIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("columns %q and %q must both be present", opts.DateColumn, opts.ValueColumn)
	}

	var rows series.Series
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if dateIdx >= len(record) || valueIdx >= len(record) {
			continue
		}
		date := strings.TrimSpace(record[dateIdx])
		v, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if date == "" || err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		rows = append(rows, series.Row{"date": date, opts.Field: v})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i]["date"].(string) < rows[j]["date"].(string)
	})
	return rows, nil
}

// FileSource is a fetcher.Source backed by a CSV file.
type FileSource struct {
	path string
	opts Options
}

// NewFileSource creates a source reading path with opts.
func NewFileSource(path string, opts Options) *FileSource {
	return &FileSource{path: path, opts: opts.withDefaults()}
}

// Key returns the source key for this file
func (s *FileSource) Key() string {
	return "source:csv:" + s.path
}

// Field returns the row field the value column is stored under
func (s *FileSource) Field() string {
	return s.opts.Field
}

// Fetch reads the file. ctx is only checked before opening it.
func (s *FileSource) Fetch(ctx context.Context) (series.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetcher.NewTimeoutError(err).For(s.Key())
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Key(), err)
	}
	defer f.Close()

	rows, err := Read(f, s.opts)
	if err != nil {
		return nil, fetcher.NewValidationError(err.Error()).For(s.Key())
	}
	if len(rows) == 0 {
		return nil, fetcher.NewValidationError("no valid rows in file").For(s.Key())
	}
	return rows, nil
}
