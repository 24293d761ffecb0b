package calculate

import (
	"math"

	"github.com/Alias1177/fxsignal/models"
)

// Pattern is a candlestick formation detected on the latest bars
type Pattern struct {
	Name    string
	Bullish bool
}

const (
	PatternHammer           = "Hammer"
	PatternShootingStar     = "Shooting Star"
	PatternBullishEngulfing = "Bullish Engulfing"
	PatternBearishEngulfing = "Bearish Engulfing"
	PatternMorningStar      = "Morning Star"
	PatternEveningStar      = "Evening Star"
	PatternDarkCloudCover   = "Dark Cloud Cover"
)

// DetectPatterns identifies reversal formations ending on the last candle.
// Bullish patterns are listed before bearish ones.
func DetectPatterns(candles []models.Candle) []Pattern {
	if len(candles) < 5 {
		return nil
	}

	c1 := candles[len(candles)-5]
	c2 := candles[len(candles)-4]
	c3 := candles[len(candles)-3]
	c4 := candles[len(candles)-2]
	c5 := candles[len(candles)-1] // Most recent

	avgBody := (body(c1) + body(c2) + body(c3) + body(c4) + body(c5)) / 5
	if avgBody == 0 {
		return nil
	}

	var bullish, bearish []Pattern

	// Pin bars
	b5 := body(c5)
	upper5 := c5.High - math.Max(c5.Open, c5.Close)
	lower5 := math.Min(c5.Open, c5.Close) - c5.Low
	if b5 > 0 && lower5 > b5*2 && upper5 < b5*0.5 {
		bullish = append(bullish, Pattern{Name: PatternHammer, Bullish: true})
	}
	if b5 > 0 && upper5 > b5*2 && lower5 < b5*0.5 {
		bearish = append(bearish, Pattern{Name: PatternShootingStar})
	}

	// Engulfing
	if isBull(c5) && isBear(c4) && c5.Open <= c4.Close && c5.Close >= c4.Open && b5 > body(c4) {
		bullish = append(bullish, Pattern{Name: PatternBullishEngulfing, Bullish: true})
	}
	if isBear(c5) && isBull(c4) && c5.Open >= c4.Close && c5.Close <= c4.Open && b5 > body(c4) {
		bearish = append(bearish, Pattern{Name: PatternBearishEngulfing})
	}

	// Three-candle stars: large body, small middle body, large opposite body
	// closing past the midpoint of the first
	mid3 := c3.Open + (c3.Close-c3.Open)/2
	if isBear(c3) && body(c3) > avgBody && body(c4) < avgBody*0.3 &&
		isBull(c5) && b5 > avgBody && c5.Close > mid3 {
		bullish = append(bullish, Pattern{Name: PatternMorningStar, Bullish: true})
	}
	if isBull(c3) && body(c3) > avgBody && body(c4) < avgBody*0.3 &&
		isBear(c5) && b5 > avgBody && c5.Close < mid3 {
		bearish = append(bearish, Pattern{Name: PatternEveningStar})
	}

	// Dark cloud: opens above prior high, closes below prior midpoint
	mid4 := c4.Open + (c4.Close-c4.Open)/2
	if isBull(c4) && isBear(c5) && c5.Open > c4.High && c5.Close < mid4 && c5.Close > c4.Open {
		bearish = append(bearish, Pattern{Name: PatternDarkCloudCover})
	}

	return append(bullish, bearish...)
}

// PatternNames flattens patterns to their names
func PatternNames(patterns []Pattern) []string {
	if len(patterns) == 0 {
		return nil
	}
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.Name
	}
	return names
}

// IsBullishPattern reports whether name is one of the bullish formations
func IsBullishPattern(name string) bool {
	switch name {
	case PatternHammer, PatternBullishEngulfing, PatternMorningStar:
		return true
	}
	return false
}

func body(c models.Candle) float64 { return math.Abs(c.Close - c.Open) }
func isBull(c models.Candle) bool  { return c.Close > c.Open }
func isBear(c models.Candle) bool  { return c.Close < c.Open }
