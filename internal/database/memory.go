package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Alias1177/fxsignal/models"
)

// Memory is a process-local signal store used when no database is configured
type Memory struct {
	mu      sync.RWMutex
	signals map[string]models.TradingSignal
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{signals: make(map[string]models.TradingSignal)}
}

// Save inserts a signal
func (m *Memory) Save(_ context.Context, s *models.TradingSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[s.ID] = *s
	return nil
}

// Recent returns the newest signals first
func (m *Memory) Recent(_ context.Context, limit int) ([]models.TradingSignal, error) {
	out := m.filter(func(models.TradingSignal) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InRange returns signals created in [start, end), oldest first
func (m *Memory) InRange(_ context.Context, start, end time.Time) ([]models.TradingSignal, error) {
	out := m.filter(func(s models.TradingSignal) bool {
		return !s.Timestamp.Before(start) && s.Timestamp.Before(end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// UpdateResult records the outcome and closes the signal
func (m *Memory) UpdateResult(_ context.Context, id, result string, pnl float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.signals[id]
	if !ok {
		return ErrNotFound
	}
	closedAt := time.Now().UTC()
	s.Result, s.PnL, s.ClosedAt = &result, &pnl, &closedAt
	s.Status = models.StatusClosed
	m.signals[id] = s
	return nil
}

// ExpireBefore marks active signals created before cutoff as expired
func (m *Memory) ExpireBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for id, s := range m.signals {
		if s.Status == models.StatusActive && s.Timestamp.Before(cutoff) {
			s.Status = models.StatusExpired
			s.ClosedAt = &now
			m.signals[id] = s
			n++
		}
	}
	return n, nil
}

func (m *Memory) filter(keep func(models.TradingSignal) bool) []models.TradingSignal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.TradingSignal, 0, len(m.signals))
	for _, s := range m.signals {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
