package calculate

import (
	"math"

	"github.com/Alias1177/fxsignal/models"
	"github.com/markcheno/go-talib"
)

// Periods configures the indicator windows
type Periods struct {
	RSI        int     `yaml:"rsi" default:"14"`
	MACDFast   int     `yaml:"macd_fast" default:"12"`
	MACDSlow   int     `yaml:"macd_slow" default:"26"`
	MACDSignal int     `yaml:"macd_signal" default:"9"`
	ATR        int     `yaml:"atr" default:"14"`
	SMAFast    int     `yaml:"sma_fast" default:"20"`
	SMASlow    int     `yaml:"sma_slow" default:"50"`
	BB         int     `yaml:"bb" default:"20"`
	BBStdDev   float64 `yaml:"bb_std_dev" default:"2"`
}

// Lookback is the minimum number of candles needed for every indicator
// to be defined: the longest window plus one bar for the true range.
func (p Periods) Lookback() int {
	n := p.SMASlow
	for _, w := range []int{p.RSI + 1, p.MACDSlow + p.MACDSignal, p.ATR + 1, p.SMAFast, p.BB} {
		if w > n {
			n = w
		}
	}
	return n
}

// CalculateIndicators computes the indicator set on the latest bar.
// Callers must ensure len(candles) >= p.Lookback().
func CalculateIndicators(candles []models.Candle, p Periods) models.IndicatorSet {
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	last := closes[len(closes)-1]

	macd, macdSignal, macdHist := talib.Macd(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	bbUpper, bbMiddle, bbLower := talib.BBands(closes, p.BB, p.BBStdDev, p.BBStdDev, talib.SMA)

	return models.IndicatorSet{
		Close:      last,
		RSI:        rsi(closes, p.RSI),
		MACD:       lastOf(macd),
		MACDSignal: lastOf(macdSignal),
		MACDHist:   lastOf(macdHist),
		ATR:        ATR(candles, p.ATR),
		SMA20:      lastOf(talib.Sma(closes, p.SMAFast)),
		SMA50:      lastOf(talib.Sma(closes, p.SMASlow)),
		BBUpper:    lastOf(bbUpper),
		BBMiddle:   lastOf(bbMiddle),
		BBLower:    lastOf(bbLower),
		Patterns:   PatternNames(DetectPatterns(candles)),
	}
}

// rsi wraps talib.Rsi; a window without any price movement reads as
// neutral 50 instead of talib's 0.
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	window := closes[len(closes)-period-1:]
	moved := false
	for i := 1; i < len(window); i++ {
		if window[i] != window[0] {
			moved = true
			break
		}
	}
	if !moved {
		return 50
	}

	v := lastOf(talib.Rsi(closes, period))
	if math.IsNaN(v) {
		return 50
	}
	return v
}

// ATR returns the average true range of the latest bar. When the value is
// undefined (too few bars, zero range, NaN) it falls back to 1% of the
// last close so downstream level computation never divides by zero.
func ATR(candles []models.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	fallback := candles[len(candles)-1].Close * 0.01

	if len(candles) < period+1 {
		return fallback
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	v := lastOf(talib.Atr(highs, lows, closes, period))
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fallback
	}
	return v
}

func lastOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
