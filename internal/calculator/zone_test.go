package calculator

import (
	"math"
	"testing"

	"CamarillaBacktester/internal/model"
)

func TestZone(t *testing.T) {
	ps := Camarilla(model.OHLCV{High: 110, Low: 90, Close: 100})

	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{"above top", ps.R5 + 0.01, "Above R5"},
		{"far above", 1000, "Above R5"},
		{"equal to top", ps.R5, "R4-R5 Zone"},
		{"equal to R3 closes upper bound", ps.R3, "R2-R3 Zone"},
		{"just above R3", ps.R3 + 1e-6, "R3-R4 Zone"},
		{"between P and R1", 100.5, "P-R1 Zone"},
		{"equal to P", ps.P, "S1-P Zone"},
		{"between S3 and S2", 95, "S3-S2 Zone"},
		{"equal to bottom", ps.S5, "Below S5"},
		{"below bottom", 10, "Below S5"},
	}
	for _, tt := range tests {
		if got := Zone(tt.price, &ps); got != tt.want {
			t.Errorf("%s (%.4f): expected %q, got %q", tt.name, tt.price, tt.want, got)
		}
	}
}

func TestZone_MissingPivots(t *testing.T) {
	if got := Zone(100, nil); got != ZoneInvalidPivots {
		t.Errorf("nil pivots: expected %q, got %q", ZoneInvalidPivots, got)
	}

	nan := math.NaN()
	empty := model.PivotSet{P: nan, R1: nan, R2: nan, R3: nan, R4: nan, R5: nan, S1: nan, S2: nan, S3: nan, S4: nan, S5: nan}
	if got := Zone(100, &empty); got != ZoneNoPivots {
		t.Errorf("undefined levels: expected %q, got %q", ZoneNoPivots, got)
	}
}

func TestZone_PartialPivots(t *testing.T) {
	nan := math.NaN()
	ps := model.PivotSet{P: 100, R1: 110, R2: nan, R3: nan, R4: nan, R5: nan, S1: 90, S2: nan, S3: nan, S4: nan, S5: nan}

	if got := Zone(105, &ps); got != "P-R1 Zone" {
		t.Errorf("expected P-R1 Zone, got %q", got)
	}
	if got := Zone(80, &ps); got != "Below S1" {
		t.Errorf("expected Below S1, got %q", got)
	}
	if got := Zone(nan, &ps); got != ZoneUnknown {
		t.Errorf("NaN price: expected %q, got %q", ZoneUnknown, got)
	}
}
