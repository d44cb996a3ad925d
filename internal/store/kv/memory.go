// Package kv provides an embedded TTL key-value store used as the refresh
// token revocation store when no external cache is configured.
package kv

import (
	"context"
	"sync"
	"time"

	"dhamen.org/internal/auth"
)

const defaultReapInterval = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process auth.RevocationStore. Expired entries are invisible
// to Get immediately and physically removed by a background reaper.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

var _ auth.RevocationStore = (*Memory)(nil)

// Option configures a Memory store.
type Option func(*Memory)

// WithClock overrides the time source for expiry checks.
func WithClock(fn func() time.Time) Option {
	return func(m *Memory) {
		if fn != nil {
			m.now = fn
		}
	}
}

// NewMemory builds the store and starts its reaper.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.reap(defaultReapInterval)
	return m
}

// Put records value under key, replacing any previous value.
func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Get returns the live value for key or auth.ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", auth.ErrNotFound
	}
	if !e.expiresAt.After(m.now()) {
		delete(m.entries, key)
		return "", auth.ErrNotFound
	}
	return e.value, nil
}

// Delete removes key; absent keys are a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close stops the reaper.
func (m *Memory) Close() {
	m.stopped.Do(func() { close(m.stop) })
}

func (m *Memory) reap(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := m.now()
			for key, e := range m.entries {
				if !e.expiresAt.After(now) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
