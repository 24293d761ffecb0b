// Package app wires configuration into a ready signal generator.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Alias1177/fxsignal/internal/analysis/prediction"
	"github.com/Alias1177/fxsignal/internal/analyze"
	"github.com/Alias1177/fxsignal/internal/api/news"
	"github.com/Alias1177/fxsignal/internal/api/sentiment"
	"github.com/Alias1177/fxsignal/internal/api/twelvedata"
	"github.com/Alias1177/fxsignal/internal/config"
	"github.com/Alias1177/fxsignal/internal/database"
	"github.com/Alias1177/fxsignal/internal/dedup"
	"github.com/Alias1177/fxsignal/internal/fusion"
	"github.com/Alias1177/fxsignal/internal/metrics"
	"github.com/Alias1177/fxsignal/internal/notify"
	"github.com/Alias1177/fxsignal/internal/session"
	"github.com/Alias1177/fxsignal/internal/signal"
	"github.com/Alias1177/fxsignal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is a signal store that can also expire stale signals
type Store interface {
	models.SignalStore
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// App owns the generator and everything it holds open
type App struct {
	Config    *config.Config
	Generator *signal.Generator
	Store     Store
	Metrics   *metrics.Recorder

	closers []func() error
}

// SetupLogger configures the global console logger
func SetupLogger(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// New builds the generator from cfg. Optional backends (Postgres, Redis,
// Telegram) are used when configured and replaced by in-process versions
// otherwise. reg may be nil to disable metrics.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	scoring, err := config.LoadScoring(cfg.ScoringConfig)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	store, err := a.store(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	cache, err := a.dedup(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	predictor := prediction.NewService(cfg.ModelPath, cfg.InferenceWorkers)
	a.closers = append(a.closers, func() error { predictor.Close(); return nil })

	deps := signal.Dependencies{
		Candles: twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.TwelveAPIKey,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
		}),
		Predictor: predictor,
		Sentiment: sentiment.NewClient(cfg.SentimentURL, cfg.RequestTimeout, cfg.RequestsPerSec),
		News:      news.NewClient(cfg.AlphaVantageKey, cfg.NewsURL, cfg.RequestTimeout, cfg.RequestsPerSec),
		Store:     store,
		Notifier:  notifier,
		Dedup:     cache,
		Metrics:   a.Metrics,
		Analyzer:  analyze.NewAnalyzer(scoring.Technical),
		Engine:    fusion.NewEngine(scoring.Fusion),
		Gate:      session.NewGate(scoring.Sessions...),
	}

	a.Generator = signal.New(deps, signal.Options{
		ForexPairs:       cfg.ForexPairs,
		CryptoPairs:      cfg.CryptoPairs,
		Timeframes:       cfg.Timeframes,
		ScanTimeframes:   cfg.ScanTimeframes,
		AuxTimeframes:    cfg.AuxTimeframes,
		CandleCount:      cfg.CandleCount,
		MinConfidence:    cfg.MinConfidence,
		HighConfidence:   cfg.HighConfidence,
		TopSignals:       cfg.TopSignals,
		Concurrency:      cfg.ScanConcurrency,
		ScanTimeout:      cfg.ScanTimeout,
		BacktestInterval: cfg.BacktestInterval,
	})
	return a, nil
}

// Persistent reports whether signals outlive the process. Backtests
// replay stored signals and need this.
func (a *App) Persistent() bool {
	_, mem := a.Store.(*database.Memory)
	return !mem
}

func (a *App) store(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.DBHost == "" {
		log.Warn().Msg("DB_HOST not set, signals are kept in memory only")
		return database.NewMemory(), nil
	}

	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return db, nil
}

func (a *App) dedup(ctx context.Context, cfg *config.Config) (dedup.Cache, error) {
	if cfg.RedisAddr == "" {
		return dedup.NewMemory(cfg.DedupWindow), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)
	log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis for deduplication")
	return dedup.NewRedis(client, cfg.DedupWindow), nil
}

func newNotifier(cfg *config.Config) (models.Notifier, error) {
	if cfg.TelegramToken == "" || len(cfg.TelegramChatIDs) == 0 {
		return notify.NewLog(), nil
	}
	t, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return t, nil
}

// ExpireStale marks active signals older than the configured TTL as expired
func (a *App) ExpireStale(ctx context.Context) {
	if a.Config.SignalTTL <= 0 {
		return
	}
	n, err := a.Store.ExpireBefore(ctx, time.Now().UTC().Add(-a.Config.SignalTTL))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to expire stale signals")
		return
	}
	if n > 0 {
		log.Info().Int64("expired", n).Msg("Expired stale signals")
	}
}

// Close releases everything in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
