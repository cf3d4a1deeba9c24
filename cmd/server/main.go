package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/api"
	"CamarillaBacktester/internal/backtest"
	"CamarillaBacktester/internal/collector"
	"CamarillaBacktester/internal/config"
	"CamarillaBacktester/internal/logging"
	"CamarillaBacktester/internal/platform/httpclient"
	"CamarillaBacktester/internal/recorder"
	"CamarillaBacktester/internal/scanner"
	"CamarillaBacktester/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.JSON)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}
	log.Info().Str("data_dir", cfg.Data.Dir).Str("timezone", loc.String()).Msg("backtester starting")

	// Data catalog
	source := collector.NewCSVSource(cfg.Data.Dir, loc)
	catalog := collector.NewCatalog(source, cfg.Data.StockList)
	if err := catalog.Refresh(); err != nil {
		log.Error().Err(err).Msg("initial catalog refresh")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional market data sync
	var syncer scheduler.Syncer
	if cfg.Sync.Enabled {
		client := httpclient.New(httpclient.Options{
			RequestsPerSec: cfg.Sync.RequestsPerSec,
			Proxy:          cfg.Proxy,
		})
		fetcher := collector.NewYahooFetcher(client, cfg.Sync.Suffix)
		syncer = collector.NewCollector(fetcher, source, cfg.Sync.Range)
		log.Info().Str("source", fetcher.Name()).Msg("market data sync enabled")
	}
	symbols := func() []string {
		if len(cfg.Sync.Symbols) > 0 {
			return cfg.Sync.Symbols
		}
		return catalog.Tickers()
	}

	sched := scheduler.NewScheduler(ctx, catalog, syncer, symbols)
	if err := sched.RegisterAll(cfg.Schedule.CatalogCron, cfg.Schedule.SyncCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if syncer != nil && os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, syncing now")
		go sched.RunSyncNow()
	}

	// HTTP server
	svc := backtest.NewService(scanner.NewEngine(loc), source, catalog, rec, backtest.Options{
		Workers: cfg.Scan.Workers,
		Timeout: cfg.Scan.Timeout,
	})
	srv := api.NewServer(api.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ProductionMode: cfg.Server.Production,
		CORSOrigins:    cfg.Server.CORSOrigins,
		PublicURL:      cfg.Server.PublicURL,
	}, svc, catalog)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server")
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("backtester stopped")
}
