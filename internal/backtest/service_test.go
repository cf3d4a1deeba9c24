package backtest

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CamarillaBacktester/internal/collector"
	"CamarillaBacktester/internal/model"
	"CamarillaBacktester/internal/pattern"
	"CamarillaBacktester/internal/recorder"
	"CamarillaBacktester/internal/scanner"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func syntheticDaily(months int) []model.OHLCV {
	var bars []model.OHLCV
	k := 0
	for m := 0; m < months; m++ {
		for d := 1; d <= 20; d++ {
			c := 100 + 15*math.Sin(float64(k)/9) + 5*math.Cos(float64(k)/3)
			bars = append(bars, model.OHLCV{
				Time:  time.Date(2018, time.Month(1+m), d, 9, 15, 0, 0, ist),
				Open:  c - 0.5,
				High:  c + 1.5,
				Low:   c - 1.5,
				Close: c,
			})
			k++
		}
	}
	return bars
}

type fixture struct {
	svc *Service
	rec *recorder.SQLiteRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dataDir := t.TempDir()
	src := collector.NewCSVSource(dataDir, ist)
	series := syntheticDaily(48)
	if err := src.Save("AAA", series); err != nil {
		t.Fatal(err)
	}
	if err := src.Save("BBB", series[200:]); err != nil {
		t.Fatal(err)
	}

	listDir := t.TempDir()
	list := filepath.Join(listDir, "StockList.csv")
	if err := os.WriteFile(list, []byte("Symbol,Type\nAAA,IT\nBBB,IT\nZZZ,IT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cat := collector.NewCatalog(src, list)
	if err := cat.Refresh(); err != nil {
		t.Fatal(err)
	}

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "bt.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rec.Close() })

	svc := NewService(scanner.NewEngine(ist), src, cat, rec, Options{Workers: 2, Timeout: time.Minute})
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local) }
	return &fixture{svc: svc, rec: rec}
}

func TestRunSingle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, id, err := f.svc.RunSingle(ctx, SingleRequest{
		Ticker:    "AAA",
		StartDate: "2018-01-01",
		EndDate:   "2021-12-31",
		Pattern:   "Month 0: High touched R1",
		Notes:     "synthetic",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id <= 0 || report.TestID != id {
		t.Errorf("expected report to carry id %d, got %d", id, report.TestID)
	}
	if report.Ticker != "AAA" || report.TotalMatches == 0 || len(report.History) != report.TotalMatches {
		t.Errorf("unexpected single report %+v", report)
	}

	stored, err := f.svc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TestName != "Untitled Single Test" || stored.TestType != model.TestSingle {
		t.Errorf("unexpected stored run %+v", stored)
	}
	if stored.Results.TestID != id {
		t.Errorf("expected stored results test id %d, got %d", id, stored.Results.TestID)
	}
	if stored.Parameters.Ticker != "AAA" || stored.Parameters.StartDate != "2018-01-01" {
		t.Errorf("unexpected parameters %+v", stored.Parameters)
	}
}

func TestRunSingle_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := SingleRequest{Ticker: "AAA", StartDate: "2018-01-01", EndDate: "2021-12-31", Pattern: "Month 0: High touched R1"}

	tests := []struct {
		name   string
		mutate func(*SingleRequest)
		want   error
	}{
		{"missing ticker", func(r *SingleRequest) { r.Ticker = " " }, ErrInvalidRequest},
		{"bad date", func(r *SingleRequest) { r.StartDate = "01/01/2018" }, ErrInvalidRequest},
		{"reversed range", func(r *SingleRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate }, ErrInvalidRequest},
		{"bad pattern", func(r *SingleRequest) { r.Pattern = "Month 0 High touched R1" }, pattern.ErrMissingColon},
		{"empty pattern", func(r *SingleRequest) { r.Pattern = "" }, pattern.ErrEmptyPattern},
		{"no data", func(r *SingleRequest) { r.Ticker = "ZZZ" }, ErrNoMatches},
		{"path ticker", func(r *SingleRequest) { r.Ticker = "../AAA" }, ErrInvalidRequest},
		{"hidden ticker", func(r *SingleRequest) { r.Ticker = ".AAA" }, collector.ErrInvalidSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, _, err := f.svc.RunSingle(ctx, req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	list, err := f.svc.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("failed runs must not be recorded, got %d", len(list))
	}
}

func TestRunMind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := MindRequest{
		Universe:  "IT",
		StartDate: "2018-01-01",
		EndDate:   "2021-12-31",
		Pattern:   "Month 0: High touched R1",
		TestName:  "IT breakout",
	}

	report, id, err := f.svc.RunMind(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	single, _, err := f.svc.RunSingle(ctx, SingleRequest{
		Ticker: "AAA", StartDate: req.StartDate, EndDate: req.EndDate, Pattern: req.Pattern,
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalHistoricalMatches <= single.TotalMatches {
		t.Errorf("universe should add BBB matches: %d vs %d", report.TotalHistoricalMatches, single.TotalMatches)
	}
	if report.Ticker != "" || len(report.History) != 0 {
		t.Error("mind report must not carry single-ticker fields")
	}

	all, _, err := f.svc.RunMind(ctx, MindRequest{
		Universe: collector.AllTickers, StartDate: req.StartDate, EndDate: req.EndDate, Pattern: req.Pattern,
	})
	if err != nil {
		t.Fatal(err)
	}
	if all.TotalHistoricalMatches != report.TotalHistoricalMatches {
		t.Errorf("All Tickers should cover the same files: %d vs %d", all.TotalHistoricalMatches, report.TotalHistoricalMatches)
	}

	if _, _, err := f.svc.RunMind(ctx, MindRequest{Universe: "Pharma", StartDate: req.StartDate, EndDate: req.EndDate, Pattern: req.Pattern}); !errors.Is(err, collector.ErrUnknownUniverse) {
		t.Errorf("expected ErrUnknownUniverse, got %v", err)
	}

	stored, err := f.svc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TestName != "IT breakout" || stored.Parameters.Universe != "IT" {
		t.Errorf("unexpected stored run %+v", stored)
	}
}

func TestShareAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, id, err := f.svc.RunSingle(ctx, SingleRequest{
		Ticker: "AAA", StartDate: "2018-01-01", EndDate: "2021-12-31",
		Pattern: "Month 0: High touched R1", TestName: "My test/v2",
	})
	if err != nil {
		t.Fatal(err)
	}

	shareID, err := f.svc.Share(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	shared, err := f.svc.Shared(ctx, shareID)
	if err != nil || shared.ID != id {
		t.Fatalf("expected shared run %d, got %v, %v", id, shared, err)
	}

	data, name, err := f.svc.Export(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if name != "backtest_My_test_v2.qwc" {
		t.Errorf("unexpected filename %s", name)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["id"]; ok {
		t.Error("export must not contain id")
	}
	if _, ok := doc["share_uuid"]; ok {
		t.Error("export must not contain share_uuid")
	}
	if doc["timestamp"] != "2024-06-01 12:00:00" || doc["test_type"] != "Single" {
		t.Errorf("unexpected export header %v %v", doc["timestamp"], doc["test_type"])
	}
	if !strings.Contains(string(data), "\n  \"results\"") {
		t.Error("export should be indented")
	}

	if _, _, err := f.svc.Export(ctx, 999); !errors.Is(err, recorder.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	tests := map[string]string{
		"":          "backtest_export.qwc",
		"Nifty R3":  "backtest_Nifty_R3.qwc",
		"a-b_c":     "backtest_a-b_c.qwc",
		"../../etc": "backtest_______etc.qwc",
	}
	for in, want := range tests {
		if got := ExportFilename(in); got != want {
			t.Errorf("ExportFilename(%q): expected %s, got %s", in, want, got)
		}
	}
}
