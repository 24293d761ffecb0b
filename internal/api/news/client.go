// Package news scores recent news for a set of symbols using the Alpha
// Vantage NEWS_SENTIMENT feed.
package news

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/fxsignal/internal/fault"
	httpClient "github.com/Alias1177/fxsignal/internal/platform/http"
	"github.com/Alias1177/fxsignal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"
	maxTickers     = 10
	feedLimit      = 50
)

// impactKeywords mark an article as high impact
var impactKeywords = []string{
	"federal reserve", "interest rate", "inflation", "gdp", "unemployment",
	"central bank", "monetary policy", "economic data", "recession",
	"crisis", "emergency", "meeting", "announcement", "decision",
}

// Client fetches and scores the news feed
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// NewClient creates a news client. Without an API key it always reports neutral.
func NewClient(apiKey, baseURL string, timeout time.Duration, requestsPerSec int) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Name:           "news_http",
			Timeout:        timeout,
			RequestsPerSec: requestsPerSec,
			MaxRetries:     2,
		}),
		logger: log.With().Str("component", "news_client").Logger(),
	}
}

type feed struct {
	Feed []struct {
		Title          string  `json:"title"`
		Summary        string  `json:"summary"`
		SentimentScore float64 `json:"overall_sentiment_score"`
	} `json:"feed"`
}

// NewsImpact scores the feed for the symbols. Failures yield the neutral
// score together with an external service error.
func (c *Client) NewsImpact(ctx context.Context, symbols []string) (models.NewsImpactScore, error) {
	if c.apiKey == "" {
		return models.NeutralNews(), nil
	}

	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("apikey", c.apiKey)
	q.Set("limit", strconv.Itoa(feedLimit))
	if len(symbols) > 0 {
		if len(symbols) > maxTickers {
			symbols = symbols[:maxTickers]
		}
		q.Set("tickers", strings.Join(symbols, ","))
	}

	var f feed
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"?"+q.Encode(), &f); err != nil {
		c.logger.Warn().Err(err).Strs("symbols", symbols).Msg("News unavailable, using neutral")
		return models.NeutralNews(), fault.E(fault.ExternalService, "news.NewsImpact", err)
	}

	articles := make([]ScoredArticle, 0, len(f.Feed))
	for _, item := range f.Feed {
		articles = append(articles, ScoredArticle{
			Text:  item.Title + " " + item.Summary,
			Score: item.SentimentScore,
		})
	}
	return Score(articles), nil
}

// ScoredArticle is an article text with its sentiment in [-1, 1]
type ScoredArticle struct {
	Text  string
	Score float64
}

// Score averages article sentiment and counts high-impact articles
func Score(articles []ScoredArticle) models.NewsImpactScore {
	if len(articles) == 0 {
		return models.NeutralNews()
	}

	var res models.NewsImpactScore
	var sum float64
	for _, a := range articles {
		sum += a.Score
		if isHighImpact(a.Text) {
			res.HighImpactCount++
		}
	}
	res.OverallSentiment = sum / float64(len(articles))
	return res
}

func isHighImpact(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range impactKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
