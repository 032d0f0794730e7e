// Package boxing summarizes the punch statistics of the Mayweather vs
// Pacquiao fight: punches and landed punches per round, outcome shares per
// boxer and punch type counts.
package boxing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// The two boxers of the fight, as they appear in the boxer column.
const (
	Mayweather = "Mayweather"
	Pacquiao   = "Pacquiao"
)

// Rounds is the scheduled length of the fight.
const Rounds = 12

// Punch is one row of the punch file.
type Punch struct {
	Round      int
	Boxer      string
	PunchType  string
	Outcome    string
	Landed     float64
	Mayweather float64
	Pacquiao   float64
}

var columns = []string{"round", "boxer", "punch_type", "outcome", "landed", "mayweather", "pacquiao"}

// Read parses punches from r. The header must name every column; their order
// is free. Rows with a round below 1 or a non-numeric count are skipped, and
// an empty count reads as 0.
func Read(r io.Reader) ([]Punch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(columns))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	var punches []Punch
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		p, ok := parse(record, idx)
		if !ok {
			continue
		}
		punches = append(punches, p)
	}
	return punches, nil
}

func parse(record []string, idx map[string]int) (Punch, bool) {
	field := func(name string) (string, bool) {
		i := idx[name]
		if i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	count := func(name string) (float64, bool) {
		s, ok := field(name)
		if !ok {
			return 0, false
		}
		if s == "" {
			return 0, true
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}

	var p Punch
	round, ok := field("round")
	if !ok {
		return p, false
	}
	n, err := strconv.Atoi(round)
	if err != nil || n < 1 {
		return p, false
	}
	p.Round = n

	for name, dst := range map[string]*string{"boxer": &p.Boxer, "punch_type": &p.PunchType, "outcome": &p.Outcome} {
		s, ok := field(name)
		if !ok {
			return p, false
		}
		*dst = s
	}
	for name, dst := range map[string]*float64{"landed": &p.Landed, "mayweather": &p.Mayweather, "pacquiao": &p.Pacquiao} {
		v, ok := count(name)
		if !ok {
			return p, false
		}
		*dst = v
	}
	return p, true
}

// Load reads the punch file at path and summarizes it.
func Load(path string) (*Summary, error) {
	if path == "" {
		return nil, errors.New("no punch file configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	punches, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := Summarize(punches)
	return &s, nil
}
