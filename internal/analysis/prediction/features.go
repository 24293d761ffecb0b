package prediction

import (
	"github.com/Alias1177/fxsignal/models"
)

// FeatureNames lists the model inputs in the order Features emits them
var FeatureNames = []string{
	"rsi",
	"macd_hist_rel",
	"atr_rel",
	"sma_ratio",
	"bb_position",
	"last_return",
}

// Features derives the model input vector from an indicator set and the
// close before the latest one. Ratios are guarded against zero divisors.
func Features(ind models.IndicatorSet, prevClose float64) []float64 {
	f := make([]float64, len(FeatureNames))

	f[0] = ind.RSI / 100
	if ind.Close != 0 {
		f[1] = ind.MACDHist / ind.Close
		f[2] = ind.ATR / ind.Close
	}
	if ind.SMA50 != 0 {
		f[3] = ind.SMA20/ind.SMA50 - 1
	}
	f[4] = 0.5
	if width := ind.BBUpper - ind.BBLower; width > 0 {
		f[4] = (ind.Close - ind.BBLower) / width
	}
	if prevClose != 0 {
		f[5] = ind.Close/prevClose - 1
	}
	return f
}

// PrevClose returns the second-to-last close, or 0 when there is none
func PrevClose(candles []models.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	return candles[len(candles)-2].Close
}
