package model

import "time"

// BacktestParams are the user inputs echoed back with a stored run.
type BacktestParams struct {
	Ticker    string `json:"ticker,omitempty"`
	Universe  string `json:"universe,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Backtest is a persisted run.
type Backtest struct {
	ID         int64          `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	TestType   TestType       `json:"test_type"`
	TestName   string         `json:"test_name"`
	Pattern    string         `json:"pattern"`
	Parameters BacktestParams `json:"parameters"`
	Results    *Report        `json:"results"`
	Notes      string         `json:"notes"`
	ShareUUID  string         `json:"share_uuid,omitempty"`
}
