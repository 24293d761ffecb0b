package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
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
	defaultBaseURL = "https://api.twelvedata.com"
	maxOutputSize  = 5000
)

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Name:            "twelvedata_http",
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// APISymbol converts EURUSD / BTCUSDT into the slash form Twelve Data expects
func APISymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	if strings.Contains(s, "/") {
		return s
	}
	if strings.HasSuffix(s, "USDT") && len(s) > 4 {
		return s[:len(s)-4] + "/USDT"
	}
	if len(s) == 6 {
		return s[:3] + "/" + s[3:]
	}
	return s
}

// FetchCandles returns up to count candles, oldest first
func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.Candle, error) {
	if count > maxOutputSize {
		count = maxOutputSize
	}

	q := url.Values{}
	q.Set("symbol", APISymbol(symbol))
	q.Set("interval", timeframe)
	q.Set("outputsize", strconv.Itoa(count))
	q.Set("timezone", "UTC")
	q.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/time_series?" + q.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("interval", timeframe).Int("count", count).Msg("Fetching candles")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fault.E(fault.DataUnavailable, "twelvedata.FetchCandles", fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.E(fault.DataUnavailable, "twelvedata.FetchCandles", fmt.Errorf("reading response body: %w", err))
	}

	var data models.TwelveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Error parsing JSON")
		return nil, fault.E(fault.DataUnavailable, "twelvedata.FetchCandles", fmt.Errorf("parsing JSON: %w", err))
	}

	if data.Status == "error" {
		c.logger.Error().Str("symbol", symbol).Str("message", data.Message).Msg("Twelve Data API error")
		return nil, fault.E(fault.DataUnavailable, "twelvedata.FetchCandles", fmt.Errorf("api error: %s", data.Message))
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, fault.E(fault.DataUnavailable, "twelvedata.FetchCandles", fmt.Errorf("empty data returned"))
	}

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			c.logger.Warn().Err(err).Str("datetime", v.Datetime).Msg("Skipping candle")
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      v.Open,
			High:      v.High,
			Low:       v.Low,
			Close:     v.Close,
			Volume:    v.Volume,
		})
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}
