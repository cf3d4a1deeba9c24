package calculator

import (
	"sort"
	"time"

	"CamarillaBacktester/internal/model"
)

// MonthlyBars folds the bars inside rng into calendar months of loc: first
// open, max high, min low, last close. Months without bars are absent. Each
// month after the first carries the Camarilla pivots of the month before it.
func MonthlyBars(bars []model.OHLCV, rng model.DateRange, loc *time.Location) []model.MonthlyBar {
	if loc == nil {
		loc = time.UTC
	}
	filtered := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if rng.Contains(b.Time) {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Time.Before(filtered[j].Time) })

	var months []model.MonthlyBar
	for _, b := range filtered {
		start := MonthStart(b.Time, loc)
		n := len(months)
		if n == 0 || !months[n-1].Start.Equal(start) {
			months = append(months, model.MonthlyBar{
				Start: start,
				OHLCV: model.OHLCV{
					Time:  start,
					Open:  b.Open,
					High:  b.High,
					Low:   b.Low,
					Close: b.Close,
				},
			})
			n++
		}
		m := &months[n-1]
		if b.High > m.High {
			m.High = b.High
		}
		if b.Low < m.Low {
			m.Low = b.Low
		}
		m.Close = b.Close
		m.Volume += b.Volume
		m.Bars = append(m.Bars, b)
	}

	for i := 1; i < len(months); i++ {
		ps := Camarilla(months[i-1].OHLCV)
		months[i].Pivots = &ps
	}
	return months
}

// MonthStart returns midnight of the first day of t's month in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}
