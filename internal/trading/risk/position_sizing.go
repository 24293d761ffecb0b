package risk

import (
	"math"

	"github.com/Alias1177/fxsignal/models"
)

// Levels holds the take-profit and stop-loss prices of a signal
type Levels struct {
	Entry       float64 `json:"entry"`
	TakeProfit  float64 `json:"take_profit"`
	StopLoss    float64 `json:"stop_loss"`
	RiskPercent float64 `json:"risk_percent"`
	ATR         float64 `json:"atr"` // the ATR actually used, after fallback
}

// EffectiveATR returns atr, or 1% of the entry when atr is undefined
func EffectiveATR(entry, atr float64) float64 {
	if math.IsNaN(atr) || math.IsInf(atr, 0) || atr <= 0 {
		return entry * 0.01
	}
	return atr
}

// ComputeLevels places TP and SL at ATR multiples from the entry.
// BUY: tp = entry + tpMult*ATR, sl = entry - slMult*ATR; SELL mirrored.
func ComputeLevels(direction models.Direction, entry, atr, tpMult, slMult float64) Levels {
	atr = EffectiveATR(entry, atr)

	lv := Levels{Entry: entry, ATR: atr}
	if direction == models.DirectionBuy {
		lv.TakeProfit = entry + atr*tpMult
		lv.StopLoss = entry - atr*slMult
	} else {
		lv.TakeProfit = entry - atr*tpMult
		lv.StopLoss = entry + atr*slMult
	}

	lv.RiskPercent = RiskPercent(entry, lv.StopLoss)
	return lv
}

// RiskPercent is the stop distance as a percentage of the entry
func RiskPercent(entry, stopLoss float64) float64 {
	if entry == 0 {
		return 0
	}
	return math.Abs(entry-stopLoss) / entry * 100
}

// RiskRewardRatio is the TP distance over the SL distance
func RiskRewardRatio(entry, takeProfit, stopLoss float64) float64 {
	stop := math.Abs(entry - stopLoss)
	if stop == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / stop
}
