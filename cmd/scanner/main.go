package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alias1177/fxsignal/internal/app"
	"github.com/Alias1177/fxsignal/internal/config"
	"github.com/Alias1177/fxsignal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	once := flag.Bool("once", false, "run a single scan and exit")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Setup logging
	app.SetupLogger(cfg.LogLevel)
	log.Info().Msg("Starting market scanner")
	printConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 4. Wire the generator
	a, err := app.New(ctx, cfg, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scanner")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Error during shutdown")
		}
	}()

	if *once {
		report(a.Generator.ScanAllMarkets(ctx, nil, nil))
		return
	}

	srv := serveMetrics(cfg.MetricsAddr, registry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// 5. Scan loop
	runScanner(ctx, a, cfg.ScanInterval)
	log.Info().Msg("Scanner stopped")
}

// runScanner scans immediately and then on every tick until ctx is done
func runScanner(ctx context.Context, a *app.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.ExpireStale(ctx)
		report(a.Generator.ScanAllMarkets(ctx, nil, nil))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return srv
}

func report(res models.ScanResult) {
	log.Info().
		Int("forex", res.ForexCount).
		Int("crypto", res.CryptoCount).
		Int("high_confidence", res.HighConfidenceCount).
		Int("scanned", res.TotalScanned).
		Int("failed", res.Failed).
		Bool("timed_out", res.TimedOut).
		Msg("Scan summary")

	for i, s := range res.TopSignals {
		log.Info().Int("rank", i+1).Msg(s.Text())
	}
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Strs("ForexPairs", cfg.ForexPairs).
		Strs("CryptoPairs", cfg.CryptoPairs).
		Strs("ScanTimeframes", cfg.ScanTimeframes).
		Strs("AuxTimeframes", cfg.AuxTimeframes).
		Int("CandleCount", cfg.CandleCount).
		Int("ScanConcurrency", cfg.ScanConcurrency).
		Dur("ScanInterval", cfg.ScanInterval).
		Dur("ScanTimeout", cfg.ScanTimeout).
		Dur("DedupWindow", cfg.DedupWindow).
		Int("MinConfidence", cfg.MinConfidence).
		Bool("ModelConfigured", cfg.ModelPath != "").
		Bool("RedisConfigured", cfg.RedisAddr != "").
		Bool("DatabaseConfigured", cfg.DBHost != "").
		Msg("Configuration loaded")
}
