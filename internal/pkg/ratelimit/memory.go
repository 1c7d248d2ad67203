package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count       int
	lastRequest time.Time
}

// Memory is a per-process sliding single-window counter: the window restarts
// once the identifier has been quiet for the full window, not on a calendar
// boundary. State is lost on restart and is not shared across instances.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory limiter allowing max requests per window.
func NewMemory(max int, window time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
	go m.cleanup()
	return m
}

// Allow consumes one request slot for the identifier. The error return is
// always nil; it exists to satisfy Limiter alongside the Redis backend.
func (m *Memory) Allow(_ context.Context, identifier string) (bool, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[identifier]
	if !ok || now.Sub(e.lastRequest) > m.window {
		m.entries[identifier] = &entry{count: 1, lastRequest: now}
		return true, nil
	}
	if e.count >= m.max {
		// Denied requests do not touch lastRequest: the window is measured
		// from the last accepted request.
		return false, nil
	}
	e.count++
	e.lastRequest = now
	return true, nil
}

// cleanup drops stale identifiers every 5 minutes so the map does not grow
// without bound.
func (m *Memory) cleanup() {
	for {
		time.Sleep(5 * time.Minute)
		m.mu.Lock()
		for k, e := range m.entries {
			if m.now().Sub(e.lastRequest) > 2*m.window {
				delete(m.entries, k)
			}
		}
		m.mu.Unlock()
	}
}
