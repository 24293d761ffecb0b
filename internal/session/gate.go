// Package session decides whether an instrument is currently tradable.
package session

import (
	"time"

	"github.com/Alias1177/fxsignal/models"
)

// Window is a half-open UTC hour range [Open, Close)
type Window struct {
	Name  string `yaml:"name"`
	Open  int    `yaml:"open"`
	Close int    `yaml:"close"`
}

// Contains reports whether hour falls inside the window
func (w Window) Contains(hour int) bool {
	return hour >= w.Open && hour < w.Close
}

// DefaultWindows are the London and New York forex sessions
func DefaultWindows() []Window {
	return []Window{
		{Name: "london", Open: 8, Close: 17},
		{Name: "new_york", Open: 13, Close: 22},
	}
}

// Gate holds the forex session windows. Crypto ignores them.
type Gate struct {
	windows []Window
}

// NewGate creates a session gate; with no windows the defaults apply
func NewGate(windows ...Window) *Gate {
	if len(windows) == 0 {
		windows = DefaultWindows()
	}
	return &Gate{windows: windows}
}

// IsActive reports whether signals may be generated for the symbol at now
func (g *Gate) IsActive(symbol string, market models.MarketType, now time.Time) bool {
	if market == "" {
		market = models.MarketTypeOf(symbol)
	}
	if market == models.MarketCrypto {
		return true
	}

	now = now.UTC()
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	hour := now.Hour()
	for _, w := range g.windows {
		if w.Contains(hour) {
			return true
		}
	}
	return false
}

// ActiveSessions names the windows open at now, for logging
func (g *Gate) ActiveSessions(now time.Time) []string {
	now = now.UTC()
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return nil
	}
	var names []string
	for _, w := range g.windows {
		if w.Contains(now.Hour()) {
			names = append(names, w.Name)
		}
	}
	return names
}
