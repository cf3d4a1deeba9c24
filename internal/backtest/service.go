// Package backtest runs pattern backtests over stored history and records them.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/aggregate"
	"CamarillaBacktester/internal/collector"
	"CamarillaBacktester/internal/model"
	"CamarillaBacktester/internal/pattern"
	"CamarillaBacktester/internal/recorder"
	"CamarillaBacktester/internal/scanner"
)

var (
	// ErrInvalidRequest wraps every problem with the caller's input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoMatches is returned when a scan finds no historical instance.
	ErrNoMatches = errors.New("no historical matches")
)

// SingleRequest runs a pattern against one ticker.
type SingleRequest struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Pattern   string `json:"pattern"`
	TestName  string `json:"test_name"`
	Notes     string `json:"notes"`
}

// MindRequest runs a pattern across every ticker of a universe.
type MindRequest struct {
	Universe  string `json:"universe"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Pattern   string `json:"pattern"`
	TestName  string `json:"test_name"`
	Notes     string `json:"notes"`
}

// Resolver expands a universe name into symbols.
type Resolver interface {
	Resolve(universe string) ([]string, error)
}

// Options tunes a Service.
type Options struct {
	Workers int
	// Timeout bounds a universe scan. Zero means no bound.
	Timeout time.Duration
}

// Service orchestrates parse, scan, aggregate and persist.
type Service struct {
	engine   *scanner.Engine
	source   scanner.BarSource
	universe Resolver
	recorder recorder.Recorder
	opts     Options
	now      func() time.Time
}

// NewService creates a Service.
func NewService(engine *scanner.Engine, source scanner.BarSource, universe Resolver, rec recorder.Recorder, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Service{
		engine:   engine,
		source:   source,
		universe: universe,
		recorder: rec,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Service) prepare(start, end, text string) (model.DateRange, model.Pattern, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return model.DateRange{}, model.Pattern{}, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidRequest)
	}
	rng, err := model.ParseDateRange(start, end, s.engine.Location)
	if err != nil {
		return model.DateRange{}, model.Pattern{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if rng.End.Before(rng.Start) {
		return model.DateRange{}, model.Pattern{}, fmt.Errorf("%w: end_date before start_date", ErrInvalidRequest)
	}
	p, err := pattern.Parse(text)
	if err != nil {
		return model.DateRange{}, model.Pattern{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return rng, p, nil
}

// RunSingle scans one ticker, records the run and returns its report and id.
func (s *Service) RunSingle(ctx context.Context, req SingleRequest) (*model.Report, int64, error) {
	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		return nil, 0, fmt.Errorf("%w: ticker is required", ErrInvalidRequest)
	}
	rng, p, err := s.prepare(req.StartDate, req.EndDate, req.Pattern)
	if err != nil {
		return nil, 0, err
	}

	matches, err := s.engine.ScanSymbol(s.source, ticker, rng, p)
	if errors.Is(err, collector.ErrInvalidSymbol) {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err != nil {
		return nil, 0, err
	}
	report := aggregate.Aggregate(matches, model.TestSingle, ticker)
	if report == nil {
		return nil, 0, fmt.Errorf("%w for %s", ErrNoMatches, ticker)
	}

	name := req.TestName
	if name == "" {
		name = "Untitled Single Test"
	}
	id, err := s.record(ctx, &model.Backtest{
		TestType: model.TestSingle,
		TestName: name,
		Pattern:  req.Pattern,
		Parameters: model.BacktestParams{
			Ticker:    ticker,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		},
		Results: report,
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, 0, err
	}
	report.TestID = id
	return report, id, nil
}

// RunMind scans every ticker of a universe, records the run and returns its
// report and id.
func (s *Service) RunMind(ctx context.Context, req MindRequest) (*model.Report, int64, error) {
	if strings.TrimSpace(req.Universe) == "" {
		return nil, 0, fmt.Errorf("%w: universe is required", ErrInvalidRequest)
	}
	rng, p, err := s.prepare(req.StartDate, req.EndDate, req.Pattern)
	if err != nil {
		return nil, 0, err
	}
	symbols, err := s.universe.Resolve(req.Universe)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	start := s.now()
	matches, err := s.engine.ScanUniverse(ctx, s.source, symbols, rng, p, s.opts.Workers)
	if err != nil {
		return nil, 0, fmt.Errorf("scan universe %q: %w", req.Universe, err)
	}
	log.Info().Str("universe", req.Universe).Int("tickers", len(symbols)).
		Int("matches", len(matches)).Dur("elapsed", s.now().Sub(start)).Msg("universe scanned")

	report := aggregate.Aggregate(matches, model.TestMind, "")
	if report == nil {
		return nil, 0, fmt.Errorf("%w in the %q universe", ErrNoMatches, req.Universe)
	}

	name := req.TestName
	if name == "" {
		name = "Untitled Mind Test"
	}
	// Record outside the scan deadline.
	id, err := s.record(context.WithoutCancel(ctx), &model.Backtest{
		TestType: model.TestMind,
		TestName: name,
		Pattern:  req.Pattern,
		Parameters: model.BacktestParams{
			Universe:  req.Universe,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		},
		Results: report,
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, 0, err
	}
	report.TestID = id
	return report, id, nil
}

func (s *Service) record(ctx context.Context, b *model.Backtest) (int64, error) {
	b.Timestamp = s.now()
	id, err := s.recorder.Save(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("record backtest: %w", err)
	}
	log.Info().Int64("id", id).Str("type", string(b.TestType)).Str("name", b.TestName).
		Int("matches", b.Results.Totals.All).Msg("backtest recorded")
	return id, nil
}

// Get returns a stored run with its report's test id filled in.
func (s *Service) Get(ctx context.Context, id int64) (*model.Backtest, error) {
	b, err := s.recorder.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Results != nil {
		b.Results.TestID = b.ID
	}
	return b, nil
}

// History lists stored runs, newest first.
func (s *Service) History(ctx context.Context) ([]*model.Backtest, error) {
	return s.recorder.List(ctx)
}

// Share returns the share id of a stored run, creating it on first use.
func (s *Service) Share(ctx context.Context, id int64) (string, error) {
	return s.recorder.Share(ctx, id)
}

// Shared returns the run published under shareID.
func (s *Service) Shared(ctx context.Context, shareID string) (*model.Backtest, error) {
	return s.recorder.GetByShareID(ctx, shareID)
}
