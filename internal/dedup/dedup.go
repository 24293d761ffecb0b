// Package dedup suppresses repeated signals for the same (symbol, timeframe)
// within a time window.
package dedup

import (
	"context"
	"strings"
	"time"

	"github.com/Alias1177/fxsignal/models"
)

// DefaultWindow is the suppression window when none is configured
const DefaultWindow = 5 * time.Minute

// Cache is the contract shared by the in-process and Redis implementations.
// Reserve is the atomic check-then-set used by the signal pipeline; a
// successful reservation that does not end in an emitted signal is undone
// with Release.
type Cache interface {
	ShouldGenerate(ctx context.Context, symbol, timeframe string, now time.Time) (bool, error)
	Remember(ctx context.Context, symbol, timeframe string, signal models.TradingSignal, now time.Time) error
	Reserve(ctx context.Context, symbol, timeframe string, now time.Time) (bool, error)
	Release(ctx context.Context, symbol, timeframe string) error
}

// Key normalizes a (symbol, timeframe) pair
func Key(symbol, timeframe string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", "")) + ":" + strings.ToLower(timeframe)
}
