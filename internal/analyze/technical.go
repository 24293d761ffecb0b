package analyze

import (
	"fmt"
	"sort"

	"github.com/Alias1177/fxsignal/internal/calculate"
	"github.com/Alias1177/fxsignal/models"
	"github.com/creasty/defaults"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Rules holds the point values and thresholds of the technical scoring
type Rules struct {
	Periods calculate.Periods `yaml:"periods"`

	RSIOversold   float64 `yaml:"rsi_oversold" default:"30"`
	RSIOverbought float64 `yaml:"rsi_overbought" default:"70"`
	RSIPoints     int     `yaml:"rsi_points" default:"2"`
	MACDPoints    int     `yaml:"macd_points" default:"1"`
	TrendPoints   int     `yaml:"trend_points" default:"1"`
	PatternPoints int     `yaml:"pattern_points" default:"1"`

	// A side needs at least MinScore points to produce BUY/SELL
	MinScore int `yaml:"min_score" default:"2"`

	BaseConfidence     int `yaml:"base_confidence" default:"50"`
	ConfidencePerPoint int `yaml:"confidence_per_point" default:"10"`
	MaxConfidence      int `yaml:"max_confidence" default:"85"`
	HoldConfidence     int `yaml:"hold_confidence" default:"30"`
}

// DefaultRules returns the canonical rule set
func DefaultRules() Rules {
	var r Rules
	_ = defaults.Set(&r)
	return r
}

// Analysis is the per-timeframe output: the indicators and the verdict
type Analysis struct {
	Indicators models.IndicatorSet
	Signal     models.TechnicalSubSignal
	Sufficient bool
}

// Analyzer derives a directional sub-signal from a candle series
type Analyzer struct {
	rules  Rules
	logger zerolog.Logger
}

// NewAnalyzer creates a technical analyzer
func NewAnalyzer(rules Rules) *Analyzer {
	return &Analyzer{
		rules:  rules,
		logger: log.With().Str("component", "technical_analyzer").Logger(),
	}
}

// MinCandles is the shortest series Analyze can score
func (a *Analyzer) MinCandles() int {
	return a.rules.Periods.Lookback()
}

// Analyze returns the sub-signal for the series. With fewer candles than
// the longest indicator window it returns HOLD with zero confidence.
func (a *Analyzer) Analyze(candles []models.Candle) models.TechnicalSubSignal {
	return a.Run(candles).Signal
}

// Run computes indicators and scores them
func (a *Analyzer) Run(candles []models.Candle) Analysis {
	if len(candles) < a.MinCandles() {
		a.logger.Debug().
			Int("candles", len(candles)).
			Int("required", a.MinCandles()).
			Msg("Insufficient candles for technical analysis")
		return Analysis{
			Signal: models.TechnicalSubSignal{Direction: models.DirectionHold, Reasons: []string{}},
		}
	}

	ind := calculate.CalculateIndicators(candles, a.rules.Periods)
	return Analysis{
		Indicators: ind,
		Signal:     Score(ind, a.rules),
		Sufficient: true,
	}
}

type reason struct {
	text   string
	points int
}

// Score turns an indicator set into a sub-signal
func Score(ind models.IndicatorSet, r Rules) models.TechnicalSubSignal {
	var bullish, bearish int
	var reasons []reason

	// RSI
	if ind.RSI < r.RSIOversold {
		bullish += r.RSIPoints
		reasons = append(reasons, reason{fmt.Sprintf("RSI oversold (%.1f)", ind.RSI), r.RSIPoints})
	} else if ind.RSI > r.RSIOverbought {
		bearish += r.RSIPoints
		reasons = append(reasons, reason{fmt.Sprintf("RSI overbought (%.1f)", ind.RSI), r.RSIPoints})
	}

	// MACD
	if ind.MACD > ind.MACDSignal {
		bullish += r.MACDPoints
		reasons = append(reasons, reason{"MACD above signal line", r.MACDPoints})
	} else if ind.MACD < ind.MACDSignal {
		bearish += r.MACDPoints
		reasons = append(reasons, reason{"MACD below signal line", r.MACDPoints})
	}

	// Moving average ordering
	if ind.Close > ind.SMA20 && ind.SMA20 > ind.SMA50 {
		bullish += r.TrendPoints
		reasons = append(reasons, reason{"Price above SMA20 above SMA50 (uptrend)", r.TrendPoints})
	} else if ind.Close < ind.SMA20 && ind.SMA20 < ind.SMA50 {
		bearish += r.TrendPoints
		reasons = append(reasons, reason{"Price below SMA20 below SMA50 (downtrend)", r.TrendPoints})
	}

	// Candle patterns
	for _, p := range ind.Patterns {
		if calculate.IsBullishPattern(p) {
			bullish += r.PatternPoints
			reasons = append(reasons, reason{p + " pattern (bullish)", r.PatternPoints})
		} else {
			bearish += r.PatternPoints
			reasons = append(reasons, reason{p + " pattern (bearish)", r.PatternPoints})
		}
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].points > reasons[j].points
	})
	texts := make([]string, len(reasons))
	for i, rs := range reasons {
		texts[i] = rs.text
	}

	sub := models.TechnicalSubSignal{
		Direction:  models.DirectionHold,
		Confidence: r.HoldConfidence,
		Reasons:    texts,
	}

	switch {
	case bullish > bearish && bullish >= r.MinScore:
		sub.Direction = models.DirectionBuy
		sub.Strength = bullish
	case bearish > bullish && bearish >= r.MinScore:
		sub.Direction = models.DirectionSell
		sub.Strength = bearish
	default:
		return sub
	}

	sub.Confidence = r.BaseConfidence + sub.Strength*r.ConfidencePerPoint
	if sub.Confidence > r.MaxConfidence {
		sub.Confidence = r.MaxConfidence
	}
	return sub
}
