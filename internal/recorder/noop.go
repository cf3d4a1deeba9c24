package recorder

import (
	"context"

	"CamarillaBacktester/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
// Runs are not stored, so every lookup reports ErrNotFound.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Save(_ context.Context, _ *model.Backtest) (int64, error) { return 0, nil }
func (n *NoopRecorder) Get(_ context.Context, _ int64) (*model.Backtest, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) GetByShareID(_ context.Context, _ string) (*model.Backtest, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) List(_ context.Context) ([]*model.Backtest, error) { return nil, nil }
func (n *NoopRecorder) Share(_ context.Context, _ int64) (string, error) { return "", ErrNotFound }
func (n *NoopRecorder) Close() error                                      { return nil }
