// Package aggregate turns scan matches into probability reports.
package aggregate

import (
	"sort"
	"strings"

	"CamarillaBacktester/internal/model"

	"github.com/shopspring/decimal"
)

// Aggregate collapses matches into probability tables. It returns nil when
// there are no matches.
//
// A match whose labels contain a transition belongs to the path subset; all
// others are singular. The "all" table counts every label of every match, so
// a path match contributes both its "Ends in" and its transition label there.
func Aggregate(matches []model.Match, kind model.TestType, ticker string) *model.Report {
	if len(matches) == 0 {
		return nil
	}

	var singular, path []model.Match
	for _, m := range matches {
		if m.Outcomes.HasPath() {
			path = append(path, m)
		} else {
			singular = append(singular, m)
		}
	}

	report := &model.Report{
		Probabilities: model.ProbabilityTables{
			All:      countLabels(matches, nil).probabilities(len(matches)),
			Singular: countLabels(singular, nil).probabilities(len(singular)),
			Path:     countLabels(path, model.IsPathLabel).probabilities(len(path)),
		},
		ProbabilitiesByStartZone: byStartZone(path),
		Totals: model.Totals{
			All:      len(matches),
			Singular: len(singular),
			Path:     len(path),
		},
	}
	report.Histogram = Histogram(report.Probabilities.All)

	switch kind {
	case model.TestSingle:
		report.TotalMatches = len(matches)
		report.History = History(matches)
		report.Ticker = ticker
	default:
		report.TotalHistoricalMatches = len(matches)
	}
	return report
}

// History renders each match for display. Labels are joined with ", ",
// non-transition labels first, each group in alphabetical order.
func History(matches []model.Match) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(matches))
	for i, m := range matches {
		labels := m.Outcomes.Labels()
		sort.Slice(labels, func(a, b int) bool {
			pa, pb := model.IsPathLabel(labels[a]), model.IsPathLabel(labels[b])
			if pa != pb {
				return !pa
			}
			return labels[a] < labels[b]
		})
		out[i] = model.HistoryEntry{
			PremiseDate: model.FormatDate(m.PremiseDate),
			OutcomeDate: model.FormatDate(m.OutcomeDate),
			State:       strings.Join(labels, ", "),
		}
	}
	return out
}

// byStartZone splits every transition label into its start and end zone and
// reports, per start zone, how often each end zone followed.
func byStartZone(path []model.Match) map[string][]model.ProbabilityEntry {
	counters := make(map[string]*counter)
	var starts []string
	for _, m := range path {
		for _, label := range m.Outcomes.Labels() {
			if !model.IsPathLabel(label) {
				continue
			}
			parts := strings.SplitN(label, model.PathSeparator, 2)
			start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			c, ok := counters[start]
			if !ok {
				c = newCounter()
				counters[start] = c
				starts = append(starts, start)
			}
			c.add(end)
		}
	}

	out := make(map[string][]model.ProbabilityEntry, len(starts))
	for _, start := range starts {
		c := counters[start]
		entries := make([]model.ProbabilityEntry, 0, len(c.order))
		for _, end := range c.order {
			entries = append(entries, model.ProbabilityEntry{State: end, Probability: percent(c.counts[end], c.total)})
		}
		out[start] = entries
	}
	return out
}

// counter tallies labels and remembers the order they first appeared in.
type counter struct {
	order  []string
	counts map[string]int
	total  int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
	c.total++
}

// countLabels counts the labels of matches accepted by keep (all when nil).
func countLabels(matches []model.Match, keep func(string) bool) *counter {
	c := newCounter()
	for _, m := range matches {
		for _, label := range m.Outcomes.Labels() {
			if keep == nil || keep(label) {
				c.add(label)
			}
		}
	}
	return c
}

// probabilities converts counts to percentages of denominator, most frequent
// first. Ties keep first-appearance order.
func (c *counter) probabilities(denominator int) []model.ProbabilityEntry {
	entries := make([]model.ProbabilityEntry, 0, len(c.order))
	if denominator <= 0 {
		return entries
	}
	labels := make([]string, len(c.order))
	copy(labels, c.order)
	sort.SliceStable(labels, func(i, j int) bool { return c.counts[labels[i]] > c.counts[labels[j]] })
	for _, l := range labels {
		entries = append(entries, model.ProbabilityEntry{State: l, Probability: percent(c.counts[l], denominator)})
	}
	return entries
}

var hundred = decimal.NewFromInt(100)

// percent returns 100*count/total rounded to two decimals.
func percent(count, total int) float64 {
	return decimal.NewFromInt(int64(count)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}
