// Package fusion combines the technical, multi-timeframe, ML, sentiment and
// news evidence for one symbol into a single trading signal.
package fusion

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/internal/trading/risk"
	"github.com/Alias1177/fxsignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrRejected is returned when the evidence is too weak or evenly split
var ErrRejected = errors.New("fusion: insufficient evidence")

// Input is everything known about one (symbol, timeframe) at fusion time
type Input struct {
	ID         string
	Symbol     string
	Timeframe  string
	MarketType models.MarketType
	Timestamp  time.Time

	Primary   models.TechnicalSubSignal
	Auxiliary map[string]models.TechnicalSubSignal

	ML        models.MLPrediction
	Sentiment models.SentimentScore
	News      models.NewsImpactScore

	CurrentPrice float64
	ATR          float64
}

type contribution struct {
	side   models.Direction
	weight float64
	reason string
}

// Engine is stateless; a single instance is safe for concurrent use
type Engine struct {
	weights Weights
	logger  zerolog.Logger
}

// NewEngine creates a fusion engine
func NewEngine(weights Weights) *Engine {
	return &Engine{
		weights: weights,
		logger:  log.With().Str("component", "fusion").Logger(),
	}
}

// Weights returns the engine's weight set
func (e *Engine) Weights() Weights {
	return e.weights
}

// Fuse scores the input and, when one side wins with enough evidence,
// returns a risk-managed signal. Weak or tied evidence yields ErrRejected.
func (e *Engine) Fuse(in Input) (models.TradingSignal, error) {
	w := e.weights

	if in.CurrentPrice <= 0 || math.IsNaN(in.CurrentPrice) || math.IsInf(in.CurrentPrice, 0) {
		return models.TradingSignal{}, fault.E(fault.Computation, "fusion.Fuse", errors.New("current price is not positive"))
	}

	var bullish, bearish float64
	var factors []float64
	var contribs []contribution

	add := func(side models.Direction, weight float64, reason string) {
		switch side {
		case models.DirectionBuy:
			bullish += weight
		case models.DirectionSell:
			bearish += weight
		default:
			return
		}
		if reason != "" {
			contribs = append(contribs, contribution{side: side, weight: weight, reason: reason})
		}
	}

	// Primary timeframe
	primaryWeight := float64(in.Primary.Strength) * w.PrimaryStrength
	if in.Primary.Direction == models.DirectionBuy || in.Primary.Direction == models.DirectionSell {
		add(in.Primary.Direction, primaryWeight, "")
		for _, r := range in.Primary.Reasons {
			contribs = append(contribs, contribution{side: in.Primary.Direction, weight: primaryWeight, reason: r})
		}
	}
	factors = append(factors, float64(in.Primary.Confidence))

	// Multi-timeframe agreement
	if len(in.Auxiliary) > 0 {
		var buys, sells int
		for _, sub := range in.Auxiliary {
			switch sub.Direction {
			case models.DirectionBuy:
				buys++
			case models.DirectionSell:
				sells++
			}
		}
		majority := len(in.Auxiliary)/2 + 1
		switch {
		case buys >= majority:
			add(models.DirectionBuy, w.TimeframeConfirmation, "Multi-timeframe bullish confirmation")
		case sells >= majority:
			add(models.DirectionSell, w.TimeframeConfirmation, "Multi-timeframe bearish confirmation")
		}
	}

	// ML classifier
	switch {
	case in.ML.Direction > 0:
		add(models.DirectionBuy, w.ML, "ML model predicts upward movement")
	case in.ML.Direction < 0:
		add(models.DirectionSell, w.ML, "ML model predicts downward movement")
	}
	factors = append(factors, in.ML.Confidence)

	// Social sentiment
	switch {
	case in.Sentiment.Score > w.SentimentThreshold:
		add(models.DirectionBuy, w.Sentiment, "Positive market sentiment")
	case in.Sentiment.Score < -w.SentimentThreshold:
		add(models.DirectionSell, w.Sentiment, "Negative market sentiment")
	}

	// News
	switch {
	case in.News.OverallSentiment > w.NewsThreshold:
		add(models.DirectionBuy, w.News, "Positive news impact")
	case in.News.OverallSentiment < -w.NewsThreshold:
		add(models.DirectionSell, w.News, "Negative news impact")
	}

	var direction models.Direction
	var strength float64
	switch {
	case bullish > bearish:
		direction, strength = models.DirectionBuy, bullish
	case bearish > bullish:
		direction, strength = models.DirectionSell, bearish
	default:
		e.logger.Debug().
			Str("symbol", in.Symbol).
			Float64("bullish", bullish).
			Float64("bearish", bearish).
			Msg("Evidence tied")
		return models.TradingSignal{}, ErrRejected
	}

	if bullish+bearish < w.MinEvidence {
		e.logger.Debug().
			Str("symbol", in.Symbol).
			Float64("total", bullish+bearish).
			Msg("Evidence below threshold")
		return models.TradingSignal{}, ErrRejected
	}

	confidence := e.confidence(strength, factors)
	levels := risk.ComputeLevels(direction, in.CurrentPrice, in.ATR, w.TakeProfitATR, w.StopLossATR)

	signal := models.TradingSignal{
		ID:             in.ID,
		Symbol:         in.Symbol,
		Direction:      direction,
		EntryPrice:     in.CurrentPrice,
		TPPrice:        levels.TakeProfit,
		SLPrice:        levels.StopLoss,
		Confidence:     confidence,
		Timeframe:      in.Timeframe,
		RiskPercent:    levels.RiskPercent,
		Strength:       strength,
		Analysis:       topReasons(contribs, direction, w.MaxReasons),
		Timestamp:      in.Timestamp,
		MarketType:     in.MarketType,
		Status:         models.StatusActive,
		SentimentScore: in.Sentiment.Score,
		NewsImpact:     in.News.OverallSentiment,
	}
	if signal.MarketType == "" {
		signal.MarketType = models.MarketTypeOf(in.Symbol)
	}

	if err := Validate(&signal); err != nil {
		return models.TradingSignal{}, err
	}
	return signal, nil
}

// confidence blends the winning side's strength with the mean of the
// recorded factor confidences, rounded and clamped
func (e *Engine) confidence(strength float64, factors []float64) int {
	w := e.weights

	var mean float64
	if len(factors) > 0 {
		var sum float64
		for _, f := range factors {
			sum += f
		}
		mean = sum / float64(len(factors))
	}

	c := int(math.Round(strength*w.BaseConfidenceShare + mean*w.FactorConfidenceShare))
	if c < w.MinConfidence {
		c = w.MinConfidence
	}
	if c > w.MaxConfidence {
		c = w.MaxConfidence
	}
	return c
}

// topReasons picks the highest-weight reasons that argued for the chosen side
func topReasons(contribs []contribution, side models.Direction, limit int) []string {
	var winning []contribution
	for _, c := range contribs {
		if c.side == side {
			winning = append(winning, c)
		}
	}
	sort.SliceStable(winning, func(i, j int) bool {
		return winning[i].weight > winning[j].weight
	})

	out := make([]string, 0, limit)
	for _, c := range winning {
		if len(out) == limit {
			break
		}
		out = append(out, c.reason)
	}
	return out
}
