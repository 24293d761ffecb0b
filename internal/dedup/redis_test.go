package dedup

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Alias1177/fxsignal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, 5*time.Minute), mr
}

func TestRedisReserve(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	ok, err := r.Reserve(ctx, "EURUSD", "1h", t0)
	if err != nil || !ok {
		t.Fatalf("Reserve() = %v, %v, want true", ok, err)
	}
	ok, err = r.Reserve(ctx, "EURUSD", "1h", t0)
	if err != nil || ok {
		t.Fatalf("second Reserve() = %v, %v, want false", ok, err)
	}

	should, err := r.ShouldGenerate(ctx, "EUR/USD", "1h", t0)
	if err != nil || should {
		t.Errorf("ShouldGenerate() = %v, %v, want false", should, err)
	}

	mr.FastForward(5 * time.Minute)

	ok, err = r.Reserve(ctx, "EURUSD", "1h", t0)
	if err != nil || !ok {
		t.Errorf("Reserve() after expiry = %v, %v, want true", ok, err)
	}
}

func TestRedisRememberAndRelease(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	sig := models.TradingSignal{ID: "abc", Symbol: "BTCUSDT", Timeframe: "15min", Direction: models.DirectionBuy}
	if err := r.Remember(ctx, "BTCUSDT", "15min", sig, t0); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}
	if ttl := mr.TTL(keyPrefix + Key("BTCUSDT", "15min")); ttl != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", ttl)
	}

	raw, err := mr.Get(keyPrefix + Key("BTCUSDT", "15min"))
	if err != nil {
		t.Fatalf("stored value: %v", err)
	}
	var got models.TradingSignal
	if err := json.Unmarshal([]byte(raw), &got); err != nil || got.ID != "abc" {
		t.Errorf("stored signal = %q, %v, want abc", got.ID, err)
	}

	if err := r.Release(ctx, "BTCUSDT", "15min"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	should, err := r.ShouldGenerate(ctx, "BTCUSDT", "15min", t0)
	if err != nil || !should {
		t.Errorf("ShouldGenerate() after Release = %v, %v, want true", should, err)
	}
}

func TestRedisReserveConcurrent(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := r.Reserve(ctx, "ETHUSDT", "1h", t0); err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("concurrent Reserve() succeeded %d times, want 1", wins)
	}
}
