package calculator

import (
	"testing"
	"time"

	"CamarillaBacktester/internal/model"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func dailyBar(y int, m time.Month, d int, o, h, l, c float64) model.OHLCV {
	return model.OHLCV{Time: time.Date(y, m, d, 0, 0, 0, 0, ist), Open: o, High: h, Low: l, Close: c}
}

func TestMonthlyBars_Aggregation(t *testing.T) {
	bars := []model.OHLCV{
		dailyBar(2024, 1, 2, 100, 105, 99, 104),
		dailyBar(2024, 1, 15, 104, 112, 101, 110),
		dailyBar(2024, 1, 31, 110, 111, 95, 97),
		dailyBar(2024, 2, 1, 97, 99, 90, 92),
		dailyBar(2024, 2, 29, 92, 120, 91, 118),
		dailyBar(2024, 4, 1, 118, 119, 117, 118),
	}
	rng, err := model.ParseDateRange("2024-01-01", "2024-12-31", ist)
	if err != nil {
		t.Fatal(err)
	}
	months := MonthlyBars(bars, rng, ist)
	if len(months) != 3 {
		t.Fatalf("expected 3 months (March has no bars), got %d", len(months))
	}

	jan := months[0]
	if jan.Open != 100 || jan.High != 112 || jan.Low != 95 || jan.Close != 97 {
		t.Errorf("january OHLC wrong: %+v", jan.OHLCV)
	}
	if !jan.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, ist)) {
		t.Errorf("january start wrong: %v", jan.Start)
	}
	if len(jan.Bars) != 3 {
		t.Errorf("expected 3 raw bars in january, got %d", len(jan.Bars))
	}
	if jan.Pivots != nil {
		t.Error("first month must not have pivots")
	}

	feb := months[1]
	want := Camarilla(jan.OHLCV)
	if feb.Pivots == nil || *feb.Pivots != want {
		t.Errorf("february pivots should come from january: got %+v want %+v", feb.Pivots, want)
	}

	apr := months[2]
	want = Camarilla(feb.OHLCV)
	if apr.Pivots == nil || *apr.Pivots != want {
		t.Error("april pivots should come from the previous available month")
	}
}

func TestMonthlyBars_TimezoneAndRange(t *testing.T) {
	bars := []model.OHLCV{
		// 20:00 UTC on Jan 31 is already February 1st in IST.
		{Time: time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2},
		{Time: time.Date(2024, 1, 10, 4, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1},
		// Late on the end day is still inside the range.
		{Time: time.Date(2024, 2, 10, 23, 0, 0, 0, ist), Open: 3, High: 3, Low: 3, Close: 3},
		{Time: time.Date(2024, 2, 11, 0, 0, 0, 0, ist), Open: 9, High: 9, Low: 9, Close: 9},
	}
	rng, _ := model.ParseDateRange("2024-01-01", "2024-02-10", ist)
	months := MonthlyBars(bars, rng, ist)
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(months))
	}
	if len(months[1].Bars) != 2 {
		t.Errorf("expected 2 february bars, got %d", len(months[1].Bars))
	}
	if months[1].Close != 3 {
		t.Errorf("bar after the end day leaked into the series: close=%v", months[1].Close)
	}
}

func TestMonthlyBars_Empty(t *testing.T) {
	rng, _ := model.ParseDateRange("2024-01-01", "2024-02-10", ist)
	if got := MonthlyBars(nil, rng, ist); got != nil {
		t.Errorf("expected nil series, got %d months", len(got))
	}
}
