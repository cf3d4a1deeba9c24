package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"CamarillaBacktester/internal/backtest"
	"CamarillaBacktester/internal/collector"
	"CamarillaBacktester/internal/config"
	"CamarillaBacktester/internal/logging"
	"CamarillaBacktester/internal/recorder"
	"CamarillaBacktester/internal/scanner"
)

func main() {
	ticker := flag.String("ticker", "", "ticker to backtest")
	universe := flag.String("universe", "", "universe to backtest (e.g. \"All Tickers\")")
	patternText := flag.String("pattern", "", "pattern, e.g. \"Month 0: High touched R3\"")
	start := flag.String("start", "", "start date YYYY-MM-DD")
	end := flag.String("end", "", "end date YYYY-MM-DD")
	save := flag.Bool("save", false, "record the run in the configured database")
	cfgPath := flag.String("config", config.DefaultPath, "config file")
	flag.Parse()

	if (*ticker == "") == (*universe == "") || *patternText == "" || *start == "" || *end == "" {
		fmt.Fprintln(os.Stderr, "usage: backtest (-ticker T | -universe U) -pattern P -start YYYY-MM-DD -end YYYY-MM-DD")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.JSON)
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}

	source := collector.NewCSVSource(cfg.Data.Dir, loc)
	catalog := collector.NewCatalog(source, cfg.Data.StockList)
	if err := catalog.Refresh(); err != nil {
		log.Fatal().Err(err).Msg("load catalog")
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if *save {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer sr.Close()
		rec = sr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := backtest.NewService(scanner.NewEngine(loc), source, catalog, rec, backtest.Options{
		Workers: cfg.Scan.Workers,
		Timeout: cfg.Scan.Timeout,
	})

	var report any
	if *ticker != "" {
		report, _, err = svc.RunSingle(ctx, backtest.SingleRequest{
			Ticker: *ticker, StartDate: *start, EndDate: *end, Pattern: *patternText,
		})
	} else {
		report, _, err = svc.RunMind(ctx, backtest.MindRequest{
			Universe: *universe, StartDate: *start, EndDate: *end, Pattern: *patternText,
		})
	}
	if errors.Is(err, backtest.ErrNoMatches) {
		fmt.Println(err)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("backtest")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("encode report")
	}
}
