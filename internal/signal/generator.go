// Package signal runs the per-(symbol, timeframe) pipeline: session gate,
// candle retrieval, technical analysis, evidence gathering, fusion,
// deduplication, persistence and delivery.
package signal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Alias1177/fxsignal/internal/analysis/prediction"
	"github.com/Alias1177/fxsignal/internal/analyze"
	"github.com/Alias1177/fxsignal/internal/dedup"
	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/internal/fusion"
	"github.com/Alias1177/fxsignal/internal/metrics"
	"github.com/Alias1177/fxsignal/internal/session"
	"github.com/Alias1177/fxsignal/internal/trading/risk"
	"github.com/Alias1177/fxsignal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// releaseTimeout bounds the dedup release after a failed save
const releaseTimeout = 2 * time.Second

// Dependencies are the collaborators of the generator. Notifier, Metrics
// and Clock are optional.
type Dependencies struct {
	Candles   models.CandleClient
	Predictor models.Predictor
	Sentiment models.SentimentProvider
	News      models.NewsProvider
	Store     models.SignalStore
	Notifier  models.Notifier
	Dedup     dedup.Cache
	Metrics   *metrics.Recorder

	Analyzer *analyze.Analyzer
	Engine   *fusion.Engine
	Gate     *session.Gate

	Clock func() time.Time
}

// Options bound what the generator accepts and how it scans
type Options struct {
	ForexPairs     []string
	CryptoPairs    []string
	Timeframes     []string
	ScanTimeframes []string
	AuxTimeframes  []string

	CandleCount      int
	MinConfidence    int
	HighConfidence   int
	TopSignals       int
	Concurrency      int
	ScanTimeout      time.Duration
	BacktestInterval string
}

// Generator produces trading signals
type Generator struct {
	deps   Dependencies
	opts   Options
	now    func() time.Time
	logger zerolog.Logger

	symbols    map[string]bool
	crypto     map[string]bool
	timeframes map[string]bool
}

// New creates a generator. Nil analysis components get their defaults.
func New(deps Dependencies, opts Options) *Generator {
	if deps.Analyzer == nil {
		deps.Analyzer = analyze.NewAnalyzer(analyze.DefaultRules())
	}
	if deps.Engine == nil {
		deps.Engine = fusion.NewEngine(fusion.DefaultWeights())
	}
	if deps.Gate == nil {
		deps.Gate = session.NewGate()
	}
	if deps.Dedup == nil {
		deps.Dedup = dedup.NewMemory(dedup.DefaultWindow)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.TopSignals <= 0 {
		opts.TopSignals = 10
	}
	if opts.HighConfidence <= 0 {
		opts.HighConfidence = 80
	}
	if opts.BacktestInterval == "" {
		opts.BacktestInterval = "1h"
	}
	if need := deps.Analyzer.MinCandles() + 1; opts.CandleCount < need {
		opts.CandleCount = need
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	g := &Generator{
		deps:       deps,
		opts:       opts,
		now:        func() time.Time { return now().UTC() },
		logger:     log.With().Str("component", "signal_generator").Logger(),
		symbols:    make(map[string]bool),
		crypto:     make(map[string]bool),
		timeframes: make(map[string]bool),
	}
	for _, s := range opts.ForexPairs {
		g.symbols[normalize(s)] = true
	}
	for _, s := range opts.CryptoPairs {
		g.symbols[normalize(s)] = true
		g.crypto[normalize(s)] = true
	}
	for _, tf := range opts.Timeframes {
		g.timeframes[tf] = true
	}
	return g
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", ""))
}

// ValidateSymbol checks the symbol against the configured pairs. With no
// pairs configured any non-empty symbol is accepted.
func (g *Generator) ValidateSymbol(symbol string) error {
	s := normalize(symbol)
	if s == "" {
		return fault.E(fault.Validation, "signal.ValidateSymbol", errors.New("empty symbol"))
	}
	if len(g.symbols) > 0 && !g.symbols[s] {
		return fault.E(fault.Validation, "signal.ValidateSymbol", fmt.Errorf("unsupported symbol %q", symbol))
	}
	return nil
}

// ValidateTimeframe checks the timeframe against the configured list
func (g *Generator) ValidateTimeframe(timeframe string) error {
	if models.TimeframeDuration(timeframe) == 0 {
		return fault.E(fault.Validation, "signal.ValidateTimeframe", fmt.Errorf("unknown timeframe %q", timeframe))
	}
	if len(g.timeframes) > 0 && !g.timeframes[timeframe] {
		return fault.E(fault.Validation, "signal.ValidateTimeframe", fmt.Errorf("unsupported timeframe %q", timeframe))
	}
	return nil
}

// MarketType classifies a symbol; configured crypto pairs win over the suffix rule
func (g *Generator) MarketType(symbol string) models.MarketType {
	if g.crypto[normalize(symbol)] {
		return models.MarketCrypto
	}
	return models.MarketTypeOf(symbol)
}

// GenerateSignal runs the pipeline for one (symbol, timeframe). A nil
// signal with a nil error means no signal this cycle: session closed,
// evidence rejected, below the confidence floor or a duplicate.
func (g *Generator) GenerateSignal(ctx context.Context, symbol, timeframe string) (*models.TradingSignal, error) {
	start := time.Now()
	defer func() { g.deps.Metrics.ObserveUnit(time.Since(start)) }()

	if err := g.ValidateSymbol(symbol); err != nil {
		g.deps.Metrics.UnitSkipped(metrics.SkipInvalid)
		return nil, err
	}
	if err := g.ValidateTimeframe(timeframe); err != nil {
		g.deps.Metrics.UnitSkipped(metrics.SkipInvalid)
		return nil, err
	}

	symbol = normalize(symbol)
	market := g.MarketType(symbol)
	now := g.now()
	logger := g.logger.With().Str("symbol", symbol).Str("timeframe", timeframe).Logger()

	if !g.deps.Gate.IsActive(symbol, market, now) {
		logger.Debug().Msg("Session closed")
		g.deps.Metrics.UnitSkipped(metrics.SkipSessionClosed)
		return nil, nil
	}

	if ok, err := g.deps.Dedup.ShouldGenerate(ctx, symbol, timeframe, now); err != nil {
		logger.Warn().Err(err).Msg("Dedup check failed")
	} else if !ok {
		logger.Debug().Msg("Signal generated recently, skipping")
		g.deps.Metrics.UnitSkipped(metrics.SkipDuplicate)
		return nil, nil
	}

	candles, err := g.deps.Candles.FetchCandles(ctx, symbol, timeframe, g.opts.CandleCount)
	if err != nil {
		logger.Warn().Err(err).Msg("Primary candles unavailable")
		g.deps.Metrics.UnitSkipped(metrics.SkipDataUnavailable)
		return nil, fault.E(fault.DataUnavailable, "signal.GenerateSignal", err)
	}

	primary := g.deps.Analyzer.Run(candles)
	if !primary.Sufficient {
		logger.Warn().Int("candles", len(candles)).Msg("Insufficient candles")
		g.deps.Metrics.UnitSkipped(metrics.SkipDataUnavailable)
		return nil, fault.E(fault.DataUnavailable, "signal.GenerateSignal",
			fmt.Errorf("got %d candles, need %d", len(candles), g.deps.Analyzer.MinCandles()))
	}

	auxiliary := g.auxiliary(ctx, symbol, timeframe, logger)
	ev := g.evidence(ctx, symbol, prediction.Features(primary.Indicators, prediction.PrevClose(candles)), logger)

	sig, err := g.deps.Engine.Fuse(fusion.Input{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Timeframe:    timeframe,
		MarketType:   market,
		Timestamp:    now,
		Primary:      primary.Signal,
		Auxiliary:    auxiliary,
		ML:           ev.ml,
		Sentiment:    ev.sentiment,
		News:         ev.news,
		CurrentPrice: primary.Indicators.Close,
		ATR:          primary.Indicators.ATR,
	})
	if errors.Is(err, fusion.ErrRejected) {
		logger.Debug().Str("primary", string(primary.Signal.Direction)).Msg("Evidence rejected")
		g.deps.Metrics.UnitSkipped(metrics.SkipRejected)
		return nil, nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("Fusion failed")
		g.deps.Metrics.UnitSkipped(metrics.SkipError)
		return nil, err
	}

	if sig.Confidence < g.opts.MinConfidence {
		logger.Debug().Int("confidence", sig.Confidence).Msg("Below minimum confidence")
		g.deps.Metrics.UnitSkipped(metrics.SkipLowConfidence)
		return nil, nil
	}

	reserved, err := g.deps.Dedup.Reserve(ctx, symbol, timeframe, now)
	if err != nil {
		logger.Error().Err(err).Msg("Dedup reservation failed")
		g.deps.Metrics.UnitSkipped(metrics.SkipError)
		return nil, err
	}
	if !reserved {
		logger.Debug().Msg("Concurrent signal already emitted")
		g.deps.Metrics.UnitSkipped(metrics.SkipDuplicate)
		return nil, nil
	}

	if err := g.deps.Store.Save(ctx, &sig); err != nil {
		logger.Error().Err(err).Msg("Failed to save signal")
		// ctx may already be cancelled; the claim must still go
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		if relErr := g.deps.Dedup.Release(relCtx, symbol, timeframe); relErr != nil {
			logger.Warn().Err(relErr).Msg("Failed to release dedup key")
		}
		cancel()
		g.deps.Metrics.UnitSkipped(metrics.SkipError)
		return nil, fmt.Errorf("save signal: %w", err)
	}

	if err := g.deps.Dedup.Remember(ctx, symbol, timeframe, sig, now); err != nil {
		logger.Warn().Err(err).Msg("Failed to remember signal")
	}
	if g.deps.Notifier != nil {
		if err := g.deps.Notifier.Notify(ctx, sig); err != nil {
			logger.Warn().Err(err).Msg("Notification failed")
		}
	}
	g.deps.Metrics.SignalEmitted(sig)

	logger.Info().
		Str("signal_id", sig.ID).
		Str("direction", string(sig.Direction)).
		Int("confidence", sig.Confidence).
		Float64("entry", sig.EntryPrice).
		Float64("risk_reward", risk.RiskRewardRatio(sig.EntryPrice, sig.TPPrice, sig.SLPrice)).
		Strs("sessions", g.deps.Gate.ActiveSessions(now)).
		Msg("Signal generated")

	return &sig, nil
}

// auxiliary analyzes the confirmation timeframes. Timeframes that fail or
// lack data are left out.
func (g *Generator) auxiliary(ctx context.Context, symbol, primary string, logger zerolog.Logger) map[string]models.TechnicalSubSignal {
	var (
		mu  sync.Mutex
		out = make(map[string]models.TechnicalSubSignal)
		eg  errgroup.Group
	)

	for _, tf := range g.opts.AuxTimeframes {
		if tf == primary {
			continue
		}
		tf := tf
		eg.Go(func() error {
			candles, err := g.deps.Candles.FetchCandles(ctx, symbol, tf, g.opts.CandleCount)
			if err != nil {
				logger.Debug().Err(err).Str("aux_timeframe", tf).Msg("Auxiliary candles unavailable")
				return nil
			}
			res := g.deps.Analyzer.Run(candles)
			if !res.Sufficient {
				return nil
			}
			mu.Lock()
			out[tf] = res.Signal
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

type evidence struct {
	ml        models.MLPrediction
	sentiment models.SentimentScore
	news      models.NewsImpactScore
}

// evidence queries the predictor, sentiment and news concurrently. Each
// source degrades to its neutral value on failure.
func (g *Generator) evidence(ctx context.Context, symbol string, features []float64, logger zerolog.Logger) evidence {
	ev := evidence{
		ml:        models.NeutralPrediction(),
		sentiment: models.NeutralSentiment(),
		news:      models.NeutralNews(),
	}

	var eg errgroup.Group
	if g.deps.Predictor != nil {
		eg.Go(func() error {
			pred, err := g.deps.Predictor.Predict(ctx, symbol, features)
			if err != nil {
				logger.Warn().Err(err).Msg("Prediction unavailable, using neutral")
				g.deps.Metrics.Degraded("ml")
				return nil
			}
			ev.ml = pred
			return nil
		})
	}
	if g.deps.Sentiment != nil {
		eg.Go(func() error {
			s, err := g.deps.Sentiment.Sentiment(ctx, symbol)
			if err != nil {
				logger.Warn().Err(err).Msg("Sentiment unavailable, using neutral")
				g.deps.Metrics.Degraded("sentiment")
				return nil
			}
			ev.sentiment = s
			return nil
		})
	}
	if g.deps.News != nil {
		eg.Go(func() error {
			n, err := g.deps.News.NewsImpact(ctx, []string{symbol})
			if err != nil {
				logger.Warn().Err(err).Msg("News unavailable, using neutral")
				g.deps.Metrics.Degraded("news")
				return nil
			}
			ev.news = n
			return nil
		})
	}
	_ = eg.Wait()
	return ev
}
