package models

import (
	"strings"
	"time"
)

// Direction is the side of a signal or sub-signal
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// MarketType classifies an instrument
type MarketType string

const (
	MarketForex  MarketType = "forex"
	MarketCrypto MarketType = "crypto"
)

// Signal lifecycle status
const (
	StatusActive    = "active"
	StatusClosed    = "closed"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Signal outcome
const (
	ResultWin       = "win"
	ResultLoss      = "loss"
	ResultBreakeven = "breakeven"
	ResultPending   = "pending"
)

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IndicatorSet holds the indicator values computed for one timeframe.
// Recomputed on every scan, never persisted.
type IndicatorSet struct {
	Close      float64  `json:"close"`
	RSI        float64  `json:"rsi"`
	MACD       float64  `json:"macd"`
	MACDSignal float64  `json:"macd_signal"`
	MACDHist   float64  `json:"macd_hist"`
	ATR        float64  `json:"atr"`
	SMA20      float64  `json:"sma20"`
	SMA50      float64  `json:"sma50"`
	BBUpper    float64  `json:"bb_upper"`
	BBMiddle   float64  `json:"bb_middle"`
	BBLower    float64  `json:"bb_lower"`
	Patterns   []string `json:"patterns"`
}

// TechnicalSubSignal is the directional verdict of the technical analyzer
// for a single timeframe
type TechnicalSubSignal struct {
	Direction  Direction `json:"direction"`
	Strength   int       `json:"strength"`
	Confidence int       `json:"confidence"` // 0-100
	Reasons    []string  `json:"reasons"`
}

// MLPrediction is the opaque output of the classifier.
// Direction is -1, 0 or 1.
type MLPrediction struct {
	Direction  int     `json:"direction"`
	Confidence float64 `json:"confidence"` // 0-100
}

// NeutralPrediction is returned when no model is available
func NeutralPrediction() MLPrediction {
	return MLPrediction{Direction: 0, Confidence: 0}
}

// SentimentScore is a normalized social sentiment reading
type SentimentScore struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
	Score    float64 `json:"score"` // positive - negative
}

// NeutralSentiment is substituted when the sentiment provider fails
func NeutralSentiment() SentimentScore {
	return SentimentScore{Positive: 0.33, Neutral: 0.34, Negative: 0.33, Score: 0}
}

// NewsImpactScore summarizes recent news for a set of symbols
type NewsImpactScore struct {
	OverallSentiment float64 `json:"overall_sentiment"`
	HighImpactCount  int     `json:"high_impact_count"`
}

// NeutralNews is substituted when the news provider fails
func NeutralNews() NewsImpactScore {
	return NewsImpactScore{}
}

// TradingSignal is an accepted, risk-managed trade idea
type TradingSignal struct {
	ID             string     `json:"id" validate:"required"`
	Symbol         string     `json:"symbol" validate:"required"`
	Direction      Direction  `json:"direction" validate:"oneof=BUY SELL"`
	EntryPrice     float64    `json:"entry_price" validate:"gt=0"`
	TPPrice        float64    `json:"tp_price" validate:"gt=0"`
	SLPrice        float64    `json:"sl_price" validate:"gt=0"`
	Confidence     int        `json:"confidence" validate:"min=30,max=95"`
	Timeframe      string     `json:"timeframe" validate:"required"`
	RiskPercent    float64    `json:"risk_percent" validate:"gt=0"`
	Strength       float64    `json:"strength" validate:"gte=0"`
	Analysis       []string   `json:"analysis" validate:"max=3"`
	Timestamp      time.Time  `json:"timestamp"`
	MarketType     MarketType `json:"market_type" validate:"oneof=forex crypto"`
	Status         string     `json:"status" validate:"oneof=active closed expired cancelled"`
	Result         *string    `json:"result,omitempty"`
	PnL            *float64   `json:"pnl,omitempty"`
	SentimentScore float64    `json:"sentiment_score"`
	NewsImpact     float64    `json:"news_impact"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// Hit names which level a backtested signal reached first
type Hit string

const (
	HitTP      Hit = "tp"
	HitSL      Hit = "sl"
	HitNeither Hit = "neither"
)

// BacktestResult is the outcome of replaying one signal. Derived, never persisted.
type BacktestResult struct {
	SignalID      string  `json:"signal_id"`
	OutcomeReturn float64 `json:"outcome_return"` // fraction, e.g. 0.0045
	Hit           Hit     `json:"hit"`
}

// BacktestSummary aggregates a batch of backtest results
type BacktestSummary struct {
	TotalSignals      int     `json:"total_signals"`
	SuccessfulSignals int     `json:"successful_signals"`
	Evaluated         int     `json:"evaluated"`
	Accuracy          float64 `json:"accuracy"`   // percent
	AvgReturn         float64 `json:"avg_return"` // percent
	BestSignal        float64 `json:"best_signal"`
	WorstSignal       float64 `json:"worst_signal"`
	BestSignalID      string  `json:"best_signal_id,omitempty"`
	WorstSignalID     string  `json:"worst_signal_id,omitempty"`
	TPHits            int     `json:"tp_hits"`
	SLHits            int     `json:"sl_hits"`
	ProfitFactor      float64 `json:"profit_factor"`
	MaxDrawdown       float64 `json:"max_drawdown"` // percent of cumulative return
	SharpeRatio       float64 `json:"sharpe_ratio"` // per signal, not annualized
	PeriodDays        int     `json:"backtest_period_days"`
}

// PerformanceStats describes the signals emitted over a period
type PerformanceStats struct {
	TotalSignals       int            `json:"total_signals"`
	AvgConfidence      float64        `json:"avg_confidence"`
	SymbolBreakdown    map[string]int `json:"symbol_breakdown"`
	TimeframeBreakdown map[string]int `json:"timeframe_breakdown"`
	DirectionBreakdown map[string]int `json:"direction_breakdown"`
	PeriodDays         int            `json:"period_days"`
}

// ScanResult is the aggregate of a bulk market scan
type ScanResult struct {
	ForexCount          int             `json:"forex_count"`
	CryptoCount         int             `json:"crypto_count"`
	HighConfidenceCount int             `json:"high_confidence"`
	TotalScanned        int             `json:"total_scanned"`
	Failed              int             `json:"failed"`
	TimedOut            bool            `json:"timed_out"`
	TopSignals          []TradingSignal `json:"top_signals"`
	ScannedAt           time.Time       `json:"scan_timestamp"`
}

// MarketTypeOf derives the market type from the symbol. USDT-quoted
// pairs are crypto, everything else is treated as forex.
func MarketTypeOf(symbol string) MarketType {
	s := strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
	if strings.HasSuffix(s, "USDT") {
		return MarketCrypto
	}
	return MarketForex
}
