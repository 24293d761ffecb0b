package backtest

import (
	"github.com/Alias1177/fxsignal/models"
)

// Evaluate replays a signal over the candles that followed it. Bars are
// walked in order; a bar whose favorable extreme reaches TP counts as a TP
// hit even if the same bar also touched SL. Without a hit the return is the
// unrealized move to the last close.
func Evaluate(signal models.TradingSignal, future []models.Candle) models.BacktestResult {
	res := models.BacktestResult{SignalID: signal.ID, Hit: models.HitNeither}
	if len(future) == 0 || signal.EntryPrice == 0 {
		return res
	}

	buy := signal.Direction == models.DirectionBuy

	for _, c := range future {
		favorable, adverse := c.High, c.Low
		if !buy {
			favorable, adverse = c.Low, c.High
		}

		if reached(favorable, signal.TPPrice, buy) {
			res.Hit = models.HitTP
			res.OutcomeReturn = directionalReturn(signal.EntryPrice, signal.TPPrice, buy)
			return res
		}
		if reached(adverse, signal.SLPrice, !buy) {
			res.Hit = models.HitSL
			res.OutcomeReturn = directionalReturn(signal.EntryPrice, signal.SLPrice, buy)
			return res
		}
	}

	last := future[len(future)-1].Close
	res.OutcomeReturn = directionalReturn(signal.EntryPrice, last, buy)
	return res
}

// reached reports whether price is at or beyond level, upward when up is set
func reached(price, level float64, up bool) bool {
	if up {
		return price >= level
	}
	return price <= level
}

// directionalReturn is the fractional move from entry to exit, positive
// when it favors the signal
func directionalReturn(entry, exit float64, buy bool) float64 {
	if buy {
		return (exit - entry) / entry
	}
	return (entry - exit) / entry
}

// Outcome maps a replay to the stored signal result. Only resolved
// replays produce one.
func Outcome(res models.BacktestResult) (result string, resolved bool) {
	switch res.Hit {
	case models.HitTP:
		return models.ResultWin, true
	case models.HitSL:
		return models.ResultLoss, true
	default:
		return "", false
	}
}

// FutureCandles returns the candles strictly after the signal timestamp
func FutureCandles(signal models.TradingSignal, candles []models.Candle) []models.Candle {
	for i, c := range candles {
		if c.Timestamp.After(signal.Timestamp) {
			return candles[i:]
		}
	}
	return nil
}
