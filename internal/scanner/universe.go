package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"CamarillaBacktester/internal/model"

	"github.com/rs/zerolog/log"
)

// BarSource loads the raw bar history of one instrument.
type BarSource interface {
	LoadBars(symbol string) ([]model.OHLCV, error)
}

// ScanSymbol loads symbol from src and scans it. A symbol without history
// yields no matches and no error.
func (e *Engine) ScanSymbol(src BarSource, symbol string, rng model.DateRange, p model.Pattern) ([]model.Match, error) {
	bars, err := src.LoadBars(symbol)
	if errors.Is(err, model.ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", symbol, err)
	}
	matches := e.Scan(bars, rng, p)
	for i := range matches {
		matches[i].Ticker = symbol
	}
	return matches, nil
}

// ScanUniverse scans every symbol on a pool of workers and concatenates the
// matches in symbol order. Symbols that fail to load are logged and skipped.
// Cancelling ctx stops dispatching and returns ctx.Err().
func (e *Engine) ScanUniverse(ctx context.Context, src BarSource, symbols []string, rng model.DateRange, p model.Pattern, workers int) ([]model.Match, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([][]model.Match, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				matches, err := e.ScanSymbol(src, symbols[idx], rng, p)
				if err != nil {
					log.Warn().Err(err).Str("ticker", symbols[idx]).Msg("skipping ticker")
					continue
				}
				results[idx] = matches
			}
		}()
	}

dispatch:
	for i := range symbols {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []model.Match
	for _, r := range results {
		all = append(all, r...)
	}
	log.Debug().Int("tickers", len(symbols)).Int("matches", len(all)).Msg("universe scan finished")
	return all, nil
}
