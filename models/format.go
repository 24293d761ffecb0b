package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// pricePlaces picks display precision from the magnitude of the price:
// JPY crosses and large crypto prices need fewer digits than EUR/USD.
func pricePlaces(price float64) int32 {
	switch {
	case price >= 1000:
		return 2
	case price >= 20:
		return 3
	default:
		return 5
	}
}

// FormatPrice renders a price with instrument-appropriate precision
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(pricePlaces(price))
}

// Text renders the signal as a single human-readable line for notification channels
func (s TradingSignal) Text() string {
	reasons := "-"
	if len(s.Analysis) > 0 {
		reasons = strings.Join(s.Analysis, "; ")
	}

	return fmt.Sprintf("%s %s [%s] conf %d%% | entry %s | TP %s | SL %s | risk %s%% | %s",
		s.Symbol,
		s.Direction,
		s.Timeframe,
		s.Confidence,
		FormatPrice(s.EntryPrice),
		FormatPrice(s.TPPrice),
		FormatPrice(s.SLPrice),
		decimal.NewFromFloat(s.RiskPercent).StringFixed(2),
		reasons,
	)
}
