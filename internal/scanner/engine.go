package scanner

import (
	"time"

	"CamarillaBacktester/internal/calculator"
	"CamarillaBacktester/internal/model"
)

// Engine slides a pattern across monthly series built in a reference timezone.
type Engine struct {
	Location *time.Location
}

// NewEngine creates an Engine bucketing months in loc (UTC when nil).
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{Location: loc}
}

// Scan returns every match of p in the bars inside rng, oldest first.
func (e *Engine) Scan(bars []model.OHLCV, rng model.DateRange, p model.Pattern) []model.Match {
	return ScanMonths(calculator.MonthlyBars(bars, rng, e.Location), p)
}

// ScanMonths finds matches of p in a monthly series whose pivots are already
// attached.
//
// For a candidate index i every rule is checked against month i+offset. The
// outcome month is the one right after the last referenced month, and its
// zones are measured against its own pivots, i.e. the levels derived from the
// month before it.
func ScanMonths(months []model.MonthlyBar, p model.Pattern) []model.Match {
	if len(months) < 2 || len(p.Rules) == 0 {
		return nil
	}
	minOffset, maxOffset := p.MinOffset(), p.MaxOffset()
	n := len(months)
	// Offsets beyond the series can never match; checking them first keeps
	// the window arithmetic below from overflowing.
	if minOffset < -n || maxOffset > n || maxOffset-minOffset+2 > n {
		return nil
	}
	first := 0
	if minOffset < 0 {
		first = -minOffset
	}
	last := n - maxOffset - 2

	var matches []model.Match
	for i := first; i <= last; i++ {
		if !matchesAt(months, i, p) {
			continue
		}
		premise, outcome := i+maxOffset, i+maxOffset+1
		if premise < 0 || outcome >= len(months) {
			continue
		}
		om := months[outcome]
		if len(om.Bars) == 0 {
			continue
		}
		labels := ClassifyOutcome(om.Bars, om.Pivots)
		if labels.Len() == 0 {
			continue
		}
		matches = append(matches, model.Match{
			PremiseDate: months[premise].Start,
			OutcomeDate: om.Start,
			Outcomes:    labels,
		})
	}
	return matches
}

func matchesAt(months []model.MonthlyBar, i int, p model.Pattern) bool {
	for _, rule := range p.Rules {
		target := i + rule.Offset
		if target < 0 || target >= len(months) {
			return false
		}
		m := months[target]
		mc := model.MonthContext{High: m.High, Low: m.Low, Pivots: m.Pivots}
		if !evaluateRule(mc, rule) {
			return false
		}
	}
	return true
}
