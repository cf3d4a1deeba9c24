package model

// TestType distinguishes a single-ticker run from a universe ("Mind") run.
type TestType string

const (
	TestSingle TestType = "Single"
	TestMind   TestType = "Mind"
)

// ProbabilityEntry is one row of a probability table.
type ProbabilityEntry struct {
	State       string  `json:"state"`
	Probability float64 `json:"probability"`
}

// ProbabilityTables groups the overall, singular and path tables.
type ProbabilityTables struct {
	All      []ProbabilityEntry `json:"all"`
	Singular []ProbabilityEntry `json:"singular"`
	Path     []ProbabilityEntry `json:"path"`
}

// Totals holds the denominators of each table.
type Totals struct {
	All      int `json:"all"`
	Singular int `json:"singular"`
	Path     int `json:"path"`
}

// HistoryEntry is one match rendered for display.
type HistoryEntry struct {
	PremiseDate string `json:"premise_date"`
	OutcomeDate string `json:"outcome_date"`
	State       string `json:"state"`
}

// HistogramData holds bin counts over fixed-width probability bins.
type HistogramData struct {
	Counts   []int     `json:"counts"`
	BinEdges []float64 `json:"bin_edges"`
}

// Report is the aggregated result of a backtest run.
type Report struct {
	Probabilities            ProbabilityTables             `json:"probabilities"`
	ProbabilitiesByStartZone map[string][]ProbabilityEntry `json:"probabilities_by_start_zone"`
	Totals                   Totals                        `json:"totals"`
	Histogram                *HistogramData                `json:"histogram,omitempty"`

	// Single runs only.
	TotalMatches int            `json:"total_matches,omitempty"`
	History      []HistoryEntry `json:"history,omitempty"`
	Ticker       string         `json:"ticker,omitempty"`

	// Mind runs only.
	TotalHistoricalMatches int `json:"total_historical_matches,omitempty"`

	TestID int64 `json:"test_id,omitempty"`
}
