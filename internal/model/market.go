package model

import (
	"errors"
	"time"
)

// ErrNoData is returned by bar sources that hold no history for a symbol.
var ErrNoData = errors.New("no price data")

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MonthlyBar is one calendar month of price action in the reference timezone.
type MonthlyBar struct {
	OHLCV
	// Start is the first instant of the month.
	Start time.Time
	// Pivots are derived from the previous monthly bar. Nil for the first month.
	Pivots *PivotSet
	// Bars holds the raw bars that were folded into this month, oldest first.
	Bars []OHLCV
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

const dateLayout = "2006-01-02"

// ParseDateRange parses YYYY-MM-DD bounds as midnight in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	s, err := time.ParseInLocation(dateLayout, start, loc)
	if err != nil {
		return DateRange{}, err
	}
	e, err := time.ParseInLocation(dateLayout, end, loc)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether t falls on or after Start and on or before the End day.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End.AddDate(0, 0, 1))
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
