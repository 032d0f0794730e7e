// Package pipeline turns the fetched datasets into the annotated daily series
// the dashboard binds to: join on date, drop invalid rows, attach percent
// change per field and rolling oil/currency correlation.
package pipeline

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"oilfx/internal/series"
	"oilfx/internal/stats"
)

var validate = validator.New()

// Input is one resolved dataset. Rows carry the join key and Field.
type Input struct {
	Name  string
	Field string
	Rows  series.Series
}

// CorrelationPair names two numeric fields to correlate and the field the
// rolling coefficient is written to.
type CorrelationPair struct {
	X     string `validate:"required"`
	Y     string `validate:"required"`
	Field string `validate:"required"`
}

// Options configures a pipeline run. Zero values are replaced by the
// defaults in the struct tags.
type Options struct {
	JoinKey    string `default:"date" validate:"required"`
	DateLayout string `default:"2006-01-02" validate:"required"`

	// JoinDefault is stored for a lookup field on dates the dataset lacks.
	JoinDefault float64

	// Keep is the validity predicate applied after joining. Nil keeps all rows.
	Keep series.Predicate `default:"-" validate:"-"`

	ChangeFields []string          `validate:"dive,required"`
	Correlations []CorrelationPair `validate:"dive"`

	WindowPeriod int `default:"60" validate:"gte=2"`
	// MissingCorrelation is stored on rows without a defined coefficient.
	MissingCorrelation float64
	// Signed keeps the sign of the coefficient instead of storing |r|.
	Signed bool
}

// Result is the output of a run.
type Result struct {
	Rows    series.Series
	Joined  int // rows after the join chain
	Dropped int // rows removed by date parsing and the validity predicate
}

// Run executes the pipeline. inputs[0] is the main table every other input is
// joined onto. Errors are returned only for misconfiguration; irregular data
// surfaces as 0, NaN or Inf values on the rows.
func Run(inputs []Input, opts Options) (*Result, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no datasets to join")
	}
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("apply pipeline defaults: %w", err)
	}
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}

	rows := inputs[0].Rows
	for _, in := range inputs[1:] {
		rows = series.Join(in.Rows, rows, opts.JoinKey, opts.JoinKey, series.WithField(in.Field, opts.JoinDefault))
	}
	joined := len(rows)

	rows = series.SortByTime(series.ParseDates(rows, opts.JoinKey, opts.DateLayout), opts.JoinKey)
	if opts.Keep != nil {
		rows = series.Filter(rows, opts.Keep)
	}
	dropped := joined - len(rows)

	for _, f := range opts.ChangeFields {
		rows = series.PercentChange(rows, f)
	}

	for _, c := range opts.Correlations {
		coeffs := stats.RollingCorrelation(rows.Floats(c.X), rows.Floats(c.Y), opts.WindowPeriod)
		rows = attach(rows, c.Field, coeffs, opts)
	}

	return &Result{Rows: rows, Joined: joined, Dropped: dropped}, nil
}

// attach stores the coefficient of window [i, i+w) on row i+w-1, the last
// date the window covers.
func attach(s series.Series, field string, coeffs iter.Seq[float64], opts Options) series.Series {
	out := s.Clone()
	for _, row := range out {
		row[field] = opts.MissingCorrelation
	}

	i := opts.WindowPeriod - 1
	for r := range coeffs {
		switch {
		case math.IsNaN(r):
			out[i][field] = opts.MissingCorrelation
		case opts.Signed:
			out[i][field] = r
		default:
			out[i][field] = stats.Strength(r, opts.MissingCorrelation)
		}
		i++
	}
	return out
}
