package backtest

import (
	"math"

	"github.com/Alias1177/fxsignal/models"
)

// Summarize reduces a batch of replays. total is the number of signals in
// the period, evaluated or not; results should be in signal time order for
// the drawdown to be meaningful. Percent fields are rounded to 2 places.
func Summarize(results []models.BacktestResult, total, days int) models.BacktestSummary {
	sum := models.BacktestSummary{
		TotalSignals: total,
		Evaluated:    len(results),
		PeriodDays:   days,
	}
	if len(results) == 0 {
		return sum
	}

	var totalReturn, gains, losses float64
	best, worst := math.Inf(-1), math.Inf(1)
	returns := make([]float64, 0, len(results))

	for _, r := range results {
		returns = append(returns, r.OutcomeReturn)
		totalReturn += r.OutcomeReturn

		if r.OutcomeReturn > 0 {
			sum.SuccessfulSignals++
			gains += r.OutcomeReturn
		} else {
			losses -= r.OutcomeReturn
		}

		switch r.Hit {
		case models.HitTP:
			sum.TPHits++
		case models.HitSL:
			sum.SLHits++
		}

		if r.OutcomeReturn > best {
			best = r.OutcomeReturn
			sum.BestSignalID = r.SignalID
		}
		if r.OutcomeReturn < worst {
			worst = r.OutcomeReturn
			sum.WorstSignalID = r.SignalID
		}
	}

	denominator := total
	if denominator < len(results) {
		denominator = len(results)
	}
	sum.Accuracy = round2(float64(sum.SuccessfulSignals) / float64(denominator) * 100)
	sum.AvgReturn = round2(totalReturn / float64(len(results)) * 100)
	sum.BestSignal = round2(best * 100)
	sum.WorstSignal = round2(worst * 100)

	if losses > 0 {
		sum.ProfitFactor = round2(gains / losses)
	}
	sum.MaxDrawdown = round2(maxDrawdown(returns) * 100)
	sum.SharpeRatio = round2(sharpe(returns))

	return sum
}

// maxDrawdown is the deepest fall of the cumulative return from its peak
func maxDrawdown(returns []float64) float64 {
	var cumulative, peak, dd float64
	for _, r := range returns {
		cumulative += r
		if cumulative > peak {
			peak = cumulative
		}
		if peak-cumulative > dd {
			dd = peak - cumulative
		}
	}
	return dd
}

func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	sd := stdDev(returns, m)
	if sd == 0 {
		return 0
	}
	return m / sd
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

// stdDev is the sample standard deviation
func stdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var variance float64
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Stats summarizes the signals emitted over a period
func Stats(signals []models.TradingSignal, days int) models.PerformanceStats {
	st := models.PerformanceStats{
		TotalSignals:       len(signals),
		SymbolBreakdown:    make(map[string]int),
		TimeframeBreakdown: make(map[string]int),
		DirectionBreakdown: make(map[string]int),
		PeriodDays:         days,
	}
	if len(signals) == 0 {
		return st
	}

	var confidence int
	for _, s := range signals {
		confidence += s.Confidence
		st.SymbolBreakdown[s.Symbol]++
		st.TimeframeBreakdown[s.Timeframe]++
		st.DirectionBreakdown[string(s.Direction)]++
	}
	st.AvgConfidence = round2(float64(confidence) / float64(len(signals)))
	return st
}
