package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/internal/trading/backtest"
	"github.com/Alias1177/fxsignal/models"
)

// Backtest replays the signals of the last days against the candles that
// followed them. Resolved outcomes of still-active signals are written
// back to the store; a signal with no later candles is not evaluated.
func (g *Generator) Backtest(ctx context.Context, days int) (models.BacktestSummary, error) {
	if days <= 0 {
		return models.BacktestSummary{}, fault.E(fault.Validation, "signal.Backtest", fmt.Errorf("days must be positive, got %d", days))
	}

	end := g.now()
	start := end.AddDate(0, 0, -days)

	signals, err := g.deps.Store.InRange(ctx, start, end)
	if err != nil {
		return models.BacktestSummary{}, fmt.Errorf("load signals: %w", err)
	}

	// one candle fetch per symbol, covering its earliest signal
	earliest := make(map[string]time.Time)
	for _, s := range signals {
		if t, ok := earliest[s.Symbol]; !ok || s.Timestamp.Before(t) {
			earliest[s.Symbol] = s.Timestamp
		}
	}

	history := make(map[string][]models.Candle, len(earliest))
	for symbol, first := range earliest {
		count := models.CandlesForSpan(g.opts.BacktestInterval, end.Sub(first))
		if count == 0 {
			continue
		}
		candles, err := g.deps.Candles.FetchCandles(ctx, symbol, g.opts.BacktestInterval, count)
		if err != nil {
			g.logger.Warn().Err(err).Str("symbol", symbol).Msg("Backtest candles unavailable")
			continue
		}
		history[symbol] = candles
	}

	results := make([]models.BacktestResult, 0, len(signals))
	for _, s := range signals {
		future := backtest.FutureCandles(s, history[s.Symbol])
		if len(future) == 0 {
			continue
		}

		res := backtest.Evaluate(s, future)
		results = append(results, res)

		result, resolved := backtest.Outcome(res)
		if !resolved || s.Status != models.StatusActive {
			continue
		}
		if err := g.deps.Store.UpdateResult(ctx, s.ID, result, res.OutcomeReturn*100); err != nil {
			g.logger.Warn().Err(err).Str("signal_id", s.ID).Msg("Failed to record backtest result")
		}
	}

	summary := backtest.Summarize(results, len(signals), days)
	g.deps.Metrics.Backtest(summary)

	g.logger.Info().
		Int("signals", summary.TotalSignals).
		Int("evaluated", summary.Evaluated).
		Float64("accuracy", summary.Accuracy).
		Float64("avg_return", summary.AvgReturn).
		Msg("Backtest completed")

	return summary, nil
}

// PerformanceStats summarizes the signals emitted over the last days
func (g *Generator) PerformanceStats(ctx context.Context, days int) (models.PerformanceStats, error) {
	end := g.now()
	signals, err := g.deps.Store.InRange(ctx, end.AddDate(0, 0, -days), end)
	if err != nil {
		return models.PerformanceStats{}, fmt.Errorf("load signals: %w", err)
	}
	return backtest.Stats(signals, days), nil
}

// RecentSignals returns the latest stored signals, newest first
func (g *Generator) RecentSignals(ctx context.Context, limit int) ([]models.TradingSignal, error) {
	return g.deps.Store.Recent(ctx, limit)
}
