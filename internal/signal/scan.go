package signal

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Alias1177/fxsignal/models"
	"golang.org/x/sync/errgroup"
)

// pruner is implemented by dedup caches that do not expire keys on their own
type pruner interface {
	Prune(now time.Time) int
}

// ScanAllMarkets runs GenerateSignal for every (symbol, timeframe) pair
// with bounded concurrency. A failing unit never aborts the others. When
// the scan deadline passes, unstarted units are dropped and the partial
// result is returned with TimedOut set. Empty arguments fall back to the
// configured pairs and scan timeframes.
func (g *Generator) ScanAllMarkets(ctx context.Context, symbols, timeframes []string) models.ScanResult {
	started := time.Now()
	defer func() { g.deps.Metrics.ObserveScan(time.Since(started)) }()

	if p, ok := g.deps.Dedup.(pruner); ok {
		if n := p.Prune(g.now()); n > 0 {
			g.logger.Debug().Int("pruned", n).Msg("Dropped expired dedup entries")
		}
	}

	if len(symbols) == 0 {
		symbols = append(append([]string{}, g.opts.ForexPairs...), g.opts.CryptoPairs...)
	}
	if len(timeframes) == 0 {
		timeframes = g.opts.ScanTimeframes
	}

	scanCtx := ctx
	if g.opts.ScanTimeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, g.opts.ScanTimeout)
		defer cancel()
	}

	var (
		mu      sync.Mutex
		signals []models.TradingSignal
		scanned int
		failed  int
	)

	eg := new(errgroup.Group)
	eg.SetLimit(g.opts.Concurrency)

schedule:
	for _, symbol := range symbols {
		for _, tf := range timeframes {
			if scanCtx.Err() != nil {
				break schedule
			}
			symbol, tf := symbol, tf
			eg.Go(func() error {
				if scanCtx.Err() != nil {
					return nil
				}
				sig, err := g.GenerateSignal(scanCtx, symbol, tf)

				mu.Lock()
				defer mu.Unlock()
				scanned++
				if err != nil {
					failed++
					g.logger.Warn().Err(err).Str("symbol", symbol).Str("timeframe", tf).Msg("Scan unit failed")
					return nil
				}
				if sig != nil {
					signals = append(signals, *sig)
				}
				return nil
			})
		}
	}
	_ = eg.Wait()

	res := g.aggregate(signals)
	res.TotalScanned = scanned
	res.Failed = failed
	res.TimedOut = errors.Is(scanCtx.Err(), context.DeadlineExceeded)

	g.logger.Info().
		Int("scanned", res.TotalScanned).
		Int("signals", len(signals)).
		Int("failed", res.Failed).
		Bool("timed_out", res.TimedOut).
		Dur("elapsed", time.Since(started)).
		Msg("Market scan completed")

	return res
}

// aggregate counts the signals by market and confidence and keeps the
// strongest ones, highest confidence first
func (g *Generator) aggregate(signals []models.TradingSignal) models.ScanResult {
	res := models.ScanResult{ScannedAt: g.now()}

	for _, s := range signals {
		switch s.MarketType {
		case models.MarketForex:
			res.ForexCount++
		case models.MarketCrypto:
			res.CryptoCount++
		}
		if s.Confidence >= g.opts.HighConfidence {
			res.HighConfidenceCount++
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		a, b := signals[i], signals[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Timeframe < b.Timeframe
	})
	if len(signals) > g.opts.TopSignals {
		signals = signals[:g.opts.TopSignals]
	}
	res.TopSignals = signals
	return res
}
