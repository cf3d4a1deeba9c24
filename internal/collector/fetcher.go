package collector

import (
	"context"

	"CamarillaBacktester/internal/model"
)

// BarSource loads the stored daily history of a symbol.
type BarSource interface {
	LoadBars(symbol string) ([]model.OHLCV, error)
	Symbols() ([]string, error)
}

// Fetcher downloads daily bars from a remote market data provider.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.OHLCV, error)
	Name() string
}
