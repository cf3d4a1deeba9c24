package recorder

import (
	"context"
	"errors"

	"CamarillaBacktester/internal/model"
)

// ErrNotFound is returned when no stored backtest matches the lookup.
var ErrNotFound = errors.New("backtest not found")

// Recorder persists backtest runs for the history, share and export views.
type Recorder interface {
	Save(ctx context.Context, b *model.Backtest) (int64, error)
	Get(ctx context.Context, id int64) (*model.Backtest, error)
	GetByShareID(ctx context.Context, shareID string) (*model.Backtest, error)
	// List returns every run, newest first.
	List(ctx context.Context) ([]*model.Backtest, error)
	// Share returns the run's share id, creating one on first call.
	Share(ctx context.Context, id int64) (string, error)
	Close() error
}
