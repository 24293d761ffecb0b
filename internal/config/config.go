package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	TwelveAPIKey string

	ForexPairs     []string
	CryptoPairs    []string
	Timeframes     []string // accepted by GenerateSignal
	ScanTimeframes []string // scanned by ScanAllMarkets
	AuxTimeframes  []string // confirmation timeframes

	CandleCount      int
	ScanConcurrency  int
	ScanTimeout      time.Duration
	ScanInterval     time.Duration
	DedupWindow      time.Duration
	MinConfidence    int
	HighConfidence   int
	TopSignals       int
	BacktestDays     int
	BacktestInterval string
	SignalTTL        time.Duration

	RequestTimeout time.Duration
	RequestsPerSec int

	ModelPath        string
	InferenceWorkers int

	SentimentURL    string
	NewsURL         string
	AlphaVantageKey string
	ScoringConfig   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TelegramToken   string
	TelegramChatIDs []int64

	MetricsAddr string
	LogLevel    string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")

	cfg.ForexPairs = getEnvListWithDefault("FOREX_PAIRS", []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "USDCAD", "USDCHF", "NZDUSD", "EURGBP"})
	cfg.CryptoPairs = getEnvListWithDefault("CRYPTO_PAIRS", []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT"})
	cfg.Timeframes = getEnvListWithDefault("TIMEFRAMES", []string{"5min", "15min", "30min", "1h", "4h", "1day"})
	cfg.ScanTimeframes = getEnvListWithDefault("SCAN_TIMEFRAMES", []string{"1h", "4h"})
	cfg.AuxTimeframes = getEnvListWithDefault("AUX_TIMEFRAMES", []string{"15min", "4h", "1day"})

	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 200)
	cfg.ScanConcurrency = getEnvIntWithDefault("SCAN_CONCURRENCY", 4)
	cfg.ScanTimeout = getEnvDurationWithDefault("SCAN_TIMEOUT", 2*time.Minute)
	cfg.ScanInterval = getEnvDurationWithDefault("SCAN_INTERVAL", 300*time.Second)
	cfg.DedupWindow = getEnvDurationWithDefault("DEDUP_WINDOW", 5*time.Minute)
	cfg.MinConfidence = getEnvIntWithDefault("MIN_SIGNAL_CONFIDENCE", 30)
	cfg.HighConfidence = getEnvIntWithDefault("HIGH_CONFIDENCE", 80)
	cfg.TopSignals = getEnvIntWithDefault("TOP_SIGNALS", 10)
	cfg.BacktestDays = getEnvIntWithDefault("BACKTEST_DAYS", 30)
	cfg.BacktestInterval = getEnvWithDefault("BACKTEST_INTERVAL", "1h")
	cfg.SignalTTL = getEnvDurationWithDefault("SIGNAL_TTL", 24*time.Hour)

	cfg.RequestTimeout = getEnvDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)

	cfg.ModelPath = os.Getenv("MODEL_PATH")
	cfg.InferenceWorkers = getEnvIntWithDefault("INFERENCE_WORKERS", 2)

	cfg.SentimentURL = os.Getenv("SENTIMENT_URL")
	cfg.NewsURL = os.Getenv("NEWS_URL")
	cfg.AlphaVantageKey = os.Getenv("ALPHA_VANTAGE_API_KEY")
	cfg.ScoringConfig = os.Getenv("SCORING_CONFIG")

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "fxsignal")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatIDs = getEnvInt64ListWithDefault("TELEGRAM_CHAT_IDS", nil)

	cfg.MetricsAddr = getEnvWithDefault("METRICS_ADDR", ":9090")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	return &cfg, nil
}

// Symbols returns the forex pairs followed by the crypto pairs
func (c *Config) Symbols() []string {
	out := make([]string, 0, len(c.ForexPairs)+len(c.CryptoPairs))
	out = append(out, c.ForexPairs...)
	return append(out, c.CryptoPairs...)
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationWithDefault accepts Go durations ("90s") or bare seconds ("300")
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvInt64ListWithDefault(key string, defaultValue []int64) []int64 {
	parts := getEnvListWithDefault(key, nil)
	if parts == nil {
		return defaultValue
	}
	var out []int64
	for _, p := range parts {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			out = append(out, id)
		} else {
			log.Warn().Str("key", key).Str("value", p).Msg("Ignoring malformed integer")
		}
	}
	return out
}
