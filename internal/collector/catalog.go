package collector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrUnknownUniverse is returned by Resolve for names not in the stock list.
var ErrUnknownUniverse = errors.New("unknown universe")

// Catalog caches the ticker list and universes read from disk.
type Catalog struct {
	source    BarSource
	stockList string

	mu        sync.RWMutex
	tickers   []string
	universes map[string][]string
}

// NewCatalog creates a catalog over source and the stock list at stockList.
// Call Refresh before use.
func NewCatalog(source BarSource, stockList string) *Catalog {
	return &Catalog{
		source:    source,
		stockList: stockList,
		universes: map[string][]string{AllTickers: {}},
	}
}

// Refresh re-reads the symbol directory and stock list.
func (c *Catalog) Refresh() error {
	tickers, err := c.source.Symbols()
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}
	universes, err := LoadUniverses(c.stockList)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tickers = tickers
	c.universes = universes
	c.mu.Unlock()

	log.Info().Int("tickers", len(tickers)).Int("universes", len(universes)).Msg("catalog refreshed")
	return nil
}

// Tickers returns a copy of the known symbols.
func (c *Catalog) Tickers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.tickers...)
}

// Universes returns a copy of the universe map.
func (c *Catalog) Universes() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.universes))
	for k, v := range c.universes {
		out[k] = append([]string{}, v...)
	}
	return out
}

// ListTickers re-lists the symbol directory, updates the cached tickers and
// returns a copy.
func (c *Catalog) ListTickers() ([]string, error) {
	tickers, err := c.source.Symbols()
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	c.mu.Lock()
	c.tickers = tickers
	c.mu.Unlock()
	return append([]string{}, tickers...), nil
}

// Resolve returns the symbols to scan for a universe. AllTickers expands to
// every ticker currently in the symbol directory.
func (c *Catalog) Resolve(universe string) ([]string, error) {
	if universe == AllTickers {
		return c.ListTickers()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	symbols, ok := c.universes[universe]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUniverse, universe)
	}
	return append([]string{}, symbols...), nil
}
