package models

import (
	"context"
	"time"
)

// CandleClient retrieves market data
type CandleClient interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, count int) ([]Candle, error)
}

// Predictor runs classifier inference. Implementations must return a
// neutral prediction rather than an error when no model is loaded.
type Predictor interface {
	Predict(ctx context.Context, symbol string, features []float64) (MLPrediction, error)
}

// SentimentProvider returns social sentiment for a symbol
type SentimentProvider interface {
	Sentiment(ctx context.Context, symbol string) (SentimentScore, error)
}

// NewsProvider returns the news impact for a set of symbols
type NewsProvider interface {
	NewsImpact(ctx context.Context, symbols []string) (NewsImpactScore, error)
}

// SignalStore is the durable record of emitted signals
type SignalStore interface {
	Save(ctx context.Context, signal *TradingSignal) error
	Recent(ctx context.Context, limit int) ([]TradingSignal, error)
	InRange(ctx context.Context, start, end time.Time) ([]TradingSignal, error)
	UpdateResult(ctx context.Context, id string, result string, pnl float64) error
}

// Notifier delivers accepted signals to an external channel
type Notifier interface {
	Notify(ctx context.Context, signal TradingSignal) error
}
