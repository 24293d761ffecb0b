package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alias1177/fxsignal/internal/app"
	"github.com/Alias1177/fxsignal/internal/config"
	"github.com/Alias1177/fxsignal/models"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	days := flag.Int("days", cfg.BacktestDays, "number of days to replay")
	flag.Parse()

	app.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backtest")
	}
	if !a.Persistent() {
		a.Close()
		log.Fatal().Msg("DB_HOST not set: backtest replays stored signals and needs the Postgres store")
	}
	defer a.Close()

	log.Info().Int("days", *days).Msg("Running backtest...")
	summary, err := a.Generator.Backtest(ctx, *days)
	if err != nil {
		log.Error().Err(err).Msg("Backtest failed")
		return
	}
	printSummary(summary)

	stats, err := a.Generator.PerformanceStats(ctx, *days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute performance stats")
		return
	}
	printStats(stats)
}

func printSummary(s models.BacktestSummary) {
	fmt.Printf("\n=== BACKTEST (%d days) ===\n", s.PeriodDays)
	fmt.Printf("Signals:        %d (%d evaluated)\n", s.TotalSignals, s.Evaluated)
	fmt.Printf("Successful:     %d\n", s.SuccessfulSignals)
	fmt.Printf("TP / SL hits:   %d / %d\n", s.TPHits, s.SLHits)
	fmt.Printf("Accuracy:       %.2f%%\n", s.Accuracy)
	fmt.Printf("Avg return:     %.2f%%\n", s.AvgReturn)
	fmt.Printf("Best / worst:   %.2f%% (%s) / %.2f%% (%s)\n", s.BestSignal, s.BestSignalID, s.WorstSignal, s.WorstSignalID)
	fmt.Printf("Profit factor:  %.2f\n", s.ProfitFactor)
	fmt.Printf("Max drawdown:   %.2f%%\n", s.MaxDrawdown)
	fmt.Printf("Sharpe:         %.2f\n", s.SharpeRatio)
}

func printStats(s models.PerformanceStats) {
	fmt.Printf("\n=== SIGNAL STATS (%d days) ===\n", s.PeriodDays)
	fmt.Printf("Total signals:  %d\n", s.TotalSignals)
	fmt.Printf("Avg confidence: %.2f\n", s.AvgConfidence)
	fmt.Printf("By direction:   %v\n", s.DirectionBreakdown)
	fmt.Printf("By timeframe:   %v\n", s.TimeframeBreakdown)
	fmt.Printf("By symbol:      %v\n", s.SymbolBreakdown)
}
