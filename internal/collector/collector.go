package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/model"
)

// MockFetcher returns fixed bars for development and testing.
type MockFetcher struct {
	Bars map[string][]model.OHLCV
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol, _ string) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars, ok := m.Bars[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: %w", symbol, model.ErrNoData)
	}
	return bars, nil
}

// Collector downloads daily history and stores it as CSV files.
type Collector struct {
	Fetcher Fetcher
	Store   *CSVSource
	Range   string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, store *CSVSource, rng string) *Collector {
	return &Collector{Fetcher: fetcher, Store: store, Range: rng}
}

// SyncResult summarises a Sync run.
type SyncResult struct {
	Updated []string
	Failed  map[string]error
}

// Sync fetches and stores every symbol. Per-symbol failures are logged and
// collected; the run continues unless ctx is cancelled.
func (c *Collector) Sync(ctx context.Context, symbols []string) (*SyncResult, error) {
	res := &SyncResult{Failed: make(map[string]error)}
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		bars, err := c.Fetcher.FetchDailyBars(ctx, sym, c.Range)
		if err == nil && len(bars) == 0 {
			err = fmt.Errorf("%s: %w", sym, model.ErrNoData)
		}
		if err == nil {
			err = c.Store.Save(sym, bars)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return res, err
			}
			log.Warn().Err(err).Str("symbol", sym).Str("source", c.Fetcher.Name()).Msg("sync failed")
			res.Failed[sym] = err
			continue
		}
		log.Debug().Str("symbol", sym).Int("bars", len(bars)).Msg("synced")
		res.Updated = append(res.Updated, sym)
	}
	log.Info().Int("updated", len(res.Updated)).Int("failed", len(res.Failed)).Msg("sync finished")
	return res, nil
}
