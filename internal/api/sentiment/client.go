// Package sentiment reads normalized social sentiment for a symbol from an
// HTTP scoring service.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/Alias1177/fxsignal/internal/fault"
	httpClient "github.com/Alias1177/fxsignal/internal/platform/http"
	"github.com/Alias1177/fxsignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client queries {baseURL}?symbol=EURUSD and expects
// {"positive": p, "neutral": n, "negative": q}
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// NewClient creates a sentiment client. An empty baseURL disables it.
func NewClient(baseURL string, timeout time.Duration, requestsPerSec int) *Client {
	return &Client{
		baseURL: strings.TrimSpace(baseURL),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Name:           "sentiment_http",
			Timeout:        timeout,
			RequestsPerSec: requestsPerSec,
			MaxRetries:     2,
		}),
		logger: log.With().Str("component", "sentiment_client").Logger(),
	}
}

type response struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sentiment returns the symbol's sentiment. Failures yield the neutral
// score together with an external service error.
func (c *Client) Sentiment(ctx context.Context, symbol string) (models.SentimentScore, error) {
	if c.baseURL == "" {
		return models.NeutralSentiment(), nil
	}

	endpoint := c.baseURL + "?" + url.Values{"symbol": {symbol}}.Encode()

	var r response
	if err := c.httpClient.GetJSON(ctx, endpoint, &r); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Sentiment unavailable, using neutral")
		return models.NeutralSentiment(), fault.E(fault.ExternalService, "sentiment.Sentiment", err)
	}

	score, err := Normalize(r.Positive, r.Neutral, r.Negative)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Malformed sentiment, using neutral")
		return models.NeutralSentiment(), fault.E(fault.ExternalService, "sentiment.Sentiment", err)
	}
	return score, nil
}

// Normalize rescales the three shares to sum to 1 and derives the score
func Normalize(positive, neutral, negative float64) (models.SentimentScore, error) {
	for _, v := range []float64{positive, neutral, negative} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.SentimentScore{}, fmt.Errorf("invalid share %v", v)
		}
	}
	total := positive + neutral + negative
	if total == 0 {
		return models.NeutralSentiment(), nil
	}

	s := models.SentimentScore{
		Positive: positive / total,
		Neutral:  neutral / total,
		Negative: negative / total,
	}
	s.Score = s.Positive - s.Negative
	return s, nil
}
