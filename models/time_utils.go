package models

import "time"

// TimeframeDuration returns the bar length of a Twelve Data interval.
// Unknown intervals return 0.
func TimeframeDuration(interval string) time.Duration {
	switch interval {
	case "1min":
		return time.Minute
	case "5min":
		return 5 * time.Minute
	case "15min":
		return 15 * time.Minute
	case "30min":
		return 30 * time.Minute
	case "45min":
		return 45 * time.Minute
	case "1h":
		return time.Hour
	case "2h":
		return 2 * time.Hour
	case "4h":
		return 4 * time.Hour
	case "8h":
		return 8 * time.Hour
	case "1day":
		return 24 * time.Hour
	case "1week":
		return 7 * 24 * time.Hour
	}
	return 0
}

// CandlesForSpan estimates how many bars of the interval cover span,
// with a 10% buffer for gaps (weekends, maintenance)
func CandlesForSpan(interval string, span time.Duration) int {
	bar := TimeframeDuration(interval)
	if bar == 0 || span <= 0 {
		return 0
	}

	n := int(float64(span/bar) * 1.1)
	if n < 1 {
		n = 1
	}
	return n
}
