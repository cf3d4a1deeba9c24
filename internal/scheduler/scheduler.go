package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/collector"
)

// Refresher reloads cached ticker and universe lists.
type Refresher interface {
	Refresh() error
}

// Syncer downloads history for symbols.
type Syncer interface {
	Sync(ctx context.Context, symbols []string) (*collector.SyncResult, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Catalog Refresher
	Syncer  Syncer
	Symbols func() []string
	Ctx     context.Context

	syncMu sync.Mutex
}

// NewScheduler creates a new Scheduler. syncer may be nil when syncing is
// disabled. symbols supplies the list to sync on each run.
func NewScheduler(ctx context.Context, catalog Refresher, syncer Syncer, symbols func() []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Catalog: catalog,
		Syncer:  syncer,
		Symbols: symbols,
		Ctx:     ctx,
	}
}

// RegisterAll registers the catalog refresh task and, when a syncer is set,
// the sync task.
func (s *Scheduler) RegisterAll(catalogCron, syncCron string) error {
	if _, err := s.Cron.AddFunc(catalogCron, s.refreshTask); err != nil {
		return fmt.Errorf("register catalog task: %w", err)
	}
	if s.Syncer != nil {
		if _, err := s.Cron.AddFunc(syncCron, s.syncTask); err != nil {
			return fmt.Errorf("register sync task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunSyncNow executes the sync task immediately (for RUN_ON_START).
func (s *Scheduler) RunSyncNow() {
	s.syncTask()
}

func (s *Scheduler) refreshTask() {
	if err := s.Catalog.Refresh(); err != nil {
		log.Error().Err(err).Msg("catalog refresh")
	}
}

func (s *Scheduler) syncTask() {
	if s.Syncer == nil {
		return
	}
	if !s.syncMu.TryLock() {
		log.Warn().Msg("sync already running, skipped")
		return
	}
	defer s.syncMu.Unlock()

	var symbols []string
	if s.Symbols != nil {
		symbols = s.Symbols()
	}
	if len(symbols) == 0 {
		log.Warn().Msg("sync has no symbols")
		return
	}
	log.Info().Int("symbols", len(symbols)).Msg("running sync task")
	res, err := s.Syncer.Sync(s.Ctx, symbols)
	if err != nil {
		log.Error().Err(err).Msg("sync")
		return
	}
	if len(res.Updated) > 0 {
		s.refreshTask()
	}
}
