package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/Alias1177/fxsignal/models"
)

type entry struct {
	at time.Time
}

// Memory is an in-process cache with one lock per key
type Memory struct {
	window time.Duration

	mu      sync.Mutex // guards locks and entries maps, not the per-key sections
	locks   map[string]*sync.Mutex
	entries map[string]entry
}

// NewMemory creates an in-process dedup cache
func NewMemory(window time.Duration) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		window:  window,
		locks:   make(map[string]*sync.Mutex),
		entries: make(map[string]entry),
	}
}

func (m *Memory) lock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func (m *Memory) get(key string) (entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *Memory) set(key string, e entry) {
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

func (m *Memory) fresh(key string, now time.Time) bool {
	e, ok := m.get(key)
	return ok && now.Sub(e.at) < m.window
}

// ShouldGenerate reports whether no signal was recorded for the key within the window
func (m *Memory) ShouldGenerate(_ context.Context, symbol, timeframe string, now time.Time) (bool, error) {
	key := Key(symbol, timeframe)
	l := m.lock(key)
	l.Lock()
	defer l.Unlock()
	return !m.fresh(key, now), nil
}

// Remember records an emitted signal for the key
func (m *Memory) Remember(_ context.Context, symbol, timeframe string, _ models.TradingSignal, now time.Time) error {
	key := Key(symbol, timeframe)
	l := m.lock(key)
	l.Lock()
	defer l.Unlock()
	m.set(key, entry{at: now})
	return nil
}

// Reserve claims the key for the window. It returns false when the key was
// already claimed.
func (m *Memory) Reserve(_ context.Context, symbol, timeframe string, now time.Time) (bool, error) {
	key := Key(symbol, timeframe)
	l := m.lock(key)
	l.Lock()
	defer l.Unlock()
	if m.fresh(key, now) {
		return false, nil
	}
	m.set(key, entry{at: now})
	return true, nil
}

// Release drops the key's claim
func (m *Memory) Release(_ context.Context, symbol, timeframe string) error {
	key := Key(symbol, timeframe)
	l := m.lock(key)
	l.Lock()
	defer l.Unlock()
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Prune removes entries older than the window
func (m *Memory) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for k, e := range m.entries {
		if now.Sub(e.at) >= m.window {
			delete(m.entries, k)
			n++
		}
	}
	return n
}
