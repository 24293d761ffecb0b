package dedup

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Alias1177/fxsignal/models"
)

var t0 = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

func TestMemoryWindow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(5 * time.Minute)

	ok, _ := m.ShouldGenerate(ctx, "EURUSD", "1h", t0)
	if !ok {
		t.Fatal("ShouldGenerate() = false on empty cache")
	}

	sig := models.TradingSignal{ID: "a", Symbol: "EURUSD", Timeframe: "1h"}
	if err := m.Remember(ctx, "EURUSD", "1h", sig, t0); err != nil {
		t.Fatalf("Remember() error = %v", err)
	}

	tests := []struct {
		name      string
		symbol    string
		timeframe string
		now       time.Time
		want      bool
	}{
		{"same key inside window", "EURUSD", "1h", t0.Add(4 * time.Minute), false},
		{"symbol spelled with slash", "EUR/USD", "1h", t0.Add(time.Minute), false},
		{"other timeframe", "EURUSD", "4h", t0.Add(time.Minute), true},
		{"other symbol", "GBPUSD", "1h", t0.Add(time.Minute), true},
		{"window elapsed", "EURUSD", "1h", t0.Add(5 * time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ShouldGenerate(ctx, tt.symbol, tt.timeframe, tt.now)
			if err != nil {
				t.Fatalf("ShouldGenerate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldGenerate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryReserveRelease(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	if ok, _ := m.Reserve(ctx, "BTCUSDT", "15min", t0); !ok {
		t.Fatal("first Reserve() = false")
	}
	if ok, _ := m.Reserve(ctx, "BTCUSDT", "15min", t0.Add(time.Second)); ok {
		t.Fatal("second Reserve() = true inside window")
	}
	if err := m.Release(ctx, "BTCUSDT", "15min"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if ok, _ := m.Reserve(ctx, "BTCUSDT", "15min", t0.Add(2*time.Second)); !ok {
		t.Fatal("Reserve() after Release = false")
	}
	if ok, _ := m.Reserve(ctx, "BTCUSDT", "15min", t0.Add(2*time.Second+DefaultWindow)); !ok {
		t.Fatal("Reserve() after window = false")
	}
}

func TestMemoryReserveConcurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := m.Reserve(ctx, "EURUSD", "1h", t0); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("concurrent Reserve() succeeded %d times, want 1", wins)
	}
}

func TestMemoryPrune(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	m.Reserve(ctx, "EURUSD", "1h", t0)
	m.Reserve(ctx, "GBPUSD", "1h", t0.Add(30*time.Second))

	if n := m.Prune(t0.Add(time.Minute)); n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
}
