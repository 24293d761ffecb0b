package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fxsignal:dedup:"

// Redis shares suppression state between scanner replicas. Expiry follows
// the Redis server clock, so the now arguments only matter for the value.
type Redis struct {
	client *redis.Client
	window time.Duration
}

// NewRedis wraps a connected client
func NewRedis(client *redis.Client, window time.Duration) *Redis {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{client: client, window: window}
}

func redisKey(symbol, timeframe string) string {
	return keyPrefix + Key(symbol, timeframe)
}

// ShouldGenerate reports whether the key is unclaimed
func (r *Redis) ShouldGenerate(ctx context.Context, symbol, timeframe string, _ time.Time) (bool, error) {
	n, err := r.client.Exists(ctx, redisKey(symbol, timeframe)).Result()
	if err != nil {
		return false, fault.E(fault.ExternalService, "dedup.ShouldGenerate", err)
	}
	return n == 0, nil
}

// Remember stores the signal under the key for the window
func (r *Redis) Remember(ctx context.Context, symbol, timeframe string, signal models.TradingSignal, _ time.Time) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(symbol, timeframe), data, r.window).Err(); err != nil {
		return fault.E(fault.ExternalService, "dedup.Remember", err)
	}
	return nil
}

// Reserve claims the key with SET NX
func (r *Redis) Reserve(ctx context.Context, symbol, timeframe string, now time.Time) (bool, error) {
	ok, err := r.client.SetNX(ctx, redisKey(symbol, timeframe), now.UTC().Format(time.RFC3339), r.window).Result()
	if err != nil {
		return false, fault.E(fault.ExternalService, "dedup.Reserve", err)
	}
	return ok, nil
}

// Release deletes the key
func (r *Redis) Release(ctx context.Context, symbol, timeframe string) error {
	if err := r.client.Del(ctx, redisKey(symbol, timeframe)).Err(); err != nil {
		return fault.E(fault.ExternalService, "dedup.Release", err)
	}
	return nil
}
