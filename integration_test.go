package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"oilfx/internal/config"
)

// quandlBody renders n daily rows from 2015-01-01, newest first like the
// real API, leaving out the day indexes in skip.
func quandlBody(t *testing.T, n int, value func(i int) float64, skip ...int) []byte {
	t.Helper()
	skipped := make(map[int]bool, len(skip))
	for _, i := range skip {
		skipped[i] = true
	}

	t0 := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	var data [][]any
	for i := n - 1; i >= 0; i-- {
		if skipped[i] {
			continue
		}
		data = append(data, []any{t0.AddDate(0, 0, i).Format("2006-01-02"), value(i)})
	}
	body, err := json.Marshal(map[string]any{
		"column_names": []string{"Date", "Value"},
		"data":         data,
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func testConfig(quandlURL string) *config.Config {
	return &config.Config{
		QuandlBaseURL:       quandlURL,
		AlphavantageBaseURL: "http://127.0.0.1:0",
		Datasets: []config.DatasetConfig{
			{Provider: "quandl", Code: "CHRIS/CME_CL1", Field: "wti_price"},
			{Provider: "quandl", Code: "CHRIS/ICE_B1", Field: "brent_price"},
			{Provider: "quandl", Code: "CURRFX/USDRUB", Field: "rate_rub"},
			{Provider: "quandl", Code: "CURRFX/USDCAD", Field: "rate_cad"},
		},
		TrimStart:    "2015-01-01",
		ChangeFields: []string{"wti_price", "brent_price", "rate_rub", "rate_cad"},
		Correlations: []config.CorrelationConfig{
			{X: "wti_price_change", Y: "rate_rub_change", Field: "corr_wti_rub"},
			{X: "wti_price_change", Y: "rate_cad_change", Field: "corr_wti_cad"},
		},
		WindowPeriod: 60,
		Filter: config.FilterConfig{
			NonZeroFields: []string{"rate_rub", "rate_cad"},
			PriceFields:   []string{"wti_price", "brent_price"},
			PriceMax:      1000,
		},
		ActiveCurrency: "CAD",
		HTTPTimeout:    5 * time.Second,
		HTTPUserAgent:  "oilfx-integration/1.0",
	}
}

// TestIntegration_FetchDeriveSnapshot runs the full flow against a mock
// Quandl server: fetch, join, filter, change, correlation and snapshot.
func TestIntegration_FetchDeriveSnapshot(t *testing.T) {
	const days = 80
	bodies := map[string][]byte{
		"/CHRIS/CME_CL1.json": quandlBody(t, days, func(i int) float64 { return 50 + float64(i%5) + 0.1*float64(i) }),
		"/CHRIS/ICE_B1.json":  quandlBody(t, days, func(i int) float64 { return 55 + float64(i%7) }),
		// Day 10 has no RUB quote, so the joined row reads 0 and is dropped.
		"/CURRFX/USDRUB.json": quandlBody(t, days, func(i int) float64 { return 60 + 2*float64(i%5) }, 10),
		"/CURRFX/USDCAD.json": quandlBody(t, days, func(i int) float64 { return 1.1 + 0.01*float64(i%3) }),
	}

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.URL.Query().Get("trim_start"); got != "2015-01-01" {
			t.Errorf("trim_start = %q, want 2015-01-01", got)
		}
		if got := r.Header.Get("User-Agent"); got != "oilfx-integration/1.0" {
			t.Errorf("User-Agent = %q, want oilfx-integration/1.0", got)
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer server.Close()

	punches := filepath.Join(t.TempDir(), "may-vs-pac.csv")
	if err := os.WriteFile(punches, []byte("round,boxer,punch_type,outcome,landed,mayweather,pacquiao\n1,Pacquiao,jab,landed,1,0,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(server.URL)
	cfg.BoxingCSV = punches
	sources, err := buildSources(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildSources() returned unexpected error: %v", err)
	}
	j, err := newJob(cfg, sources, zerolog.Nop())
	if err != nil {
		t.Fatalf("newJob() returned unexpected error: %v", err)
	}
	j.now = func() time.Time { return time.Date(2015, 3, 30, 12, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := j.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() returned unexpected error: %v", err)
	}

	if hits.Load() != 4 {
		t.Errorf("server hits = %d, want 4", hits.Load())
	}
	if len(snap.Rows) != days-1 {
		t.Fatalf("rows = %d, want %d", len(snap.Rows), days-1)
	}
	if snap.Active.String() != "CAD" || snap.View.RateField != "rate_cad" {
		t.Errorf("active view = %v/%s, want CAD/rate_cad", snap.Active, snap.View.RateField)
	}
	if len(snap.View.Weekly) == 0 || len(snap.View.Daily) != days-1 {
		t.Errorf("daily = %d, weekly = %d buckets", len(snap.View.Daily), len(snap.View.Weekly))
	}

	if len(snap.Oil.WTIDaily) != days-1 || len(snap.Oil.BrentDaily) != days-1 || len(snap.Oil.WTIWeekly) == 0 {
		t.Errorf("oil daily = %d/%d, weekly = %d buckets", len(snap.Oil.WTIDaily), len(snap.Oil.BrentDaily), len(snap.Oil.WTIWeekly))
	}
	if snap.Boxing == nil || snap.Boxing.Rows != 1 || len(snap.Boxing.PacquiaoOutcomes) != 1 {
		t.Errorf("boxing = %+v, want one Pacquiao punch", snap.Boxing)
	}

	first := snap.Rows[0]
	if _, ok := first["wti_price_change"]; ok {
		t.Errorf("first row has wti_price_change = %v, want none", first["wti_price_change"])
	}
	for _, f := range []string{"date", "wti_price", "brent_price", "rate_rub", "rate_cad", "corr_wti_rub", "corr_wti_cad"} {
		if _, ok := first[f]; !ok {
			t.Errorf("first row misses field %s", f)
		}
	}

	// Rows before the first full window carry the missing value.
	if v := snap.Rows[58]["corr_wti_rub"]; v != 0.0 {
		t.Errorf("row 58 corr_wti_rub = %v, want 0", v)
	}
	for i := 59; i < len(snap.Rows)-1; i++ {
		v, ok := snap.Rows[i]["corr_wti_rub"].(float64)
		if !ok || v < 0 || v > 1 {
			t.Fatalf("row %d corr_wti_rub = %v, want |r| in [0, 1]", i, snap.Rows[i]["corr_wti_rub"])
		}
	}
	if v := snap.Rows[len(snap.Rows)-2]["corr_wti_rub"].(float64); v < 0.9 {
		t.Errorf("corr_wti_rub = %v, want > 0.9 for co-moving series", v)
	}

	missing := time.Date(2015, 1, 11, 0, 0, 0, 0, time.UTC)
	for _, row := range snap.Rows {
		if d, ok := row["date"].(time.Time); ok && d.Equal(missing) {
			t.Error("row with missing RUB quote was not filtered")
		}
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := writeSnapshot(path, snap); err != nil {
		t.Fatalf("writeSnapshot() returned unexpected error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "NaN") {
		t.Error("snapshot contains NaN")
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if doc["generated_at"] != "2015-03-30T12:00:00Z" {
		t.Errorf("generated_at = %v", doc["generated_at"])
	}
	for _, key := range []string{"oil", "boxing"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("snapshot misses %q", key)
		}
	}
}

func TestIntegration_MissingPunchFileFailsRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(quandlBody(t, 5, func(i int) float64 { return 60 }))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BoxingCSV = filepath.Join(t.TempDir(), "missing.csv")
	sources, err := buildSources(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	j, err := newJob(cfg, sources, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	_, err = j.Refresh(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boxing summary") {
		t.Errorf("Refresh() error = %v, want a boxing summary error", err)
	}
}

func TestIntegration_FailingSourceFailsRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/CURRFX/USDCAD.json" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(quandlBody(t, 5, func(i int) float64 { return 60 }))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	sources, err := buildSources(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	j, err := newJob(cfg, sources, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	_, err = j.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "1 of 4 sources failed") {
		t.Errorf("error = %q, want it to name the failed share", err.Error())
	}
	if !strings.Contains(err.Error(), "source:quandl:CURRFX/USDCAD") {
		t.Errorf("error = %q, want it to name the failed source", err.Error())
	}
}

func TestBuildSources(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.AlphavantageAPIKey = "k"
	cfg.Datasets = []config.DatasetConfig{
		{Provider: "alphavantage", Function: "FX_DAILY", FromSymbol: "USD", ToSymbol: "RUB", Field: "rate_rub"},
		{Provider: "csv", Path: "/data/cad.csv", ValueColumn: "close", Field: "rate_cad"},
		{Provider: "quandl", Code: "CHRIS/ICE_B1", Field: "brent_price"},
	}

	sources, err := buildSources(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildSources() returned unexpected error: %v", err)
	}

	want := []string{
		"source:alphavantage:FX_DAILY/USD/RUB",
		"source:csv:/data/cad.csv",
		"source:quandl:CHRIS/ICE_B1",
	}
	for i, src := range sources {
		if src.Key() != want[i] {
			t.Errorf("sources[%d].Key() = %q, want %q", i, src.Key(), want[i])
		}
	}

	cfg.Datasets = []config.DatasetConfig{{Provider: "yahoo", Field: "x"}}
	if _, err := buildSources(cfg, zerolog.Nop()); err == nil {
		t.Error("buildSources() expected error for unknown provider, got nil")
	}
}

func TestPipelineOptions_Filter(t *testing.T) {
	opts := pipelineOptions(testConfig("http://localhost"))

	tests := []struct {
		name string
		row  map[string]any
		keep bool
	}{
		{"valid", map[string]any{"rate_rub": 60.0, "rate_cad": 1.1, "wti_price": 50.0, "brent_price": 55.0}, true},
		{"zero rate", map[string]any{"rate_rub": 0.0, "rate_cad": 1.1, "wti_price": 50.0, "brent_price": 55.0}, false},
		{"zero price", map[string]any{"rate_rub": 60.0, "rate_cad": 1.1, "wti_price": 0.0, "brent_price": 55.0}, false},
		{"price too high", map[string]any{"rate_rub": 60.0, "rate_cad": 1.1, "wti_price": 5000.0, "brent_price": 55.0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opts.Keep(tt.row); got != tt.keep {
				t.Errorf("Keep() = %v, want %v", got, tt.keep)
			}
		})
	}
}
