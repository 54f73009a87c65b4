package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"log/slog"
	"sync"

	"tableflip.dev/agenda/pkg/cache"
)

// Decoder turns a stored document back into the typed cache value for key.
type Decoder func(key cache.Key, data []byte) (any, error)

// Mirror keeps a Persistence in step with a cache. Restored values are
// seeded stale so they are shown but refetched on first use.
type Mirror struct {
	cache  *cache.Cache
	p      Persistence
	decode Decoder
	logger *slog.Logger

	mu      sync.Mutex
	written map[cache.Key][sha256.Size]byte
}

type MirrorOption func(*Mirror)

func WithLogger(l *slog.Logger) MirrorOption {
	return func(m *Mirror) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMirror(c *cache.Cache, p Persistence, decode Decoder, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		cache:   c,
		p:       p,
		decode:  decode,
		logger:  slog.Default(),
		written: make(map[cache.Key][sha256.Size]byte),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore seeds the cache from disk and returns how many keys it loaded.
// Keys already in the cache are left alone.
func (m *Mirror) Restore(ctx context.Context) (int, error) {
	n := 0
	for _, key := range m.p.Keys(ctx) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if m.load(key, false) {
			n++
		}
	}
	return n, nil
}

func (m *Mirror) load(key cache.Key, invalidate bool) bool {
	data, err := m.p.Read(key)
	if err != nil {
		m.logger.Debug("mirror read failed", "key", key, "error", err)
		return false
	}
	sum := sha256.Sum256(data)
	m.mu.Lock()
	prev, seen := m.written[key]
	m.written[key] = sum
	m.mu.Unlock()
	if seen && prev == sum {
		return false
	}
	v, err := m.decode(key, data)
	if err != nil {
		m.logger.Warn("mirror decode failed", "key", key, "error", err)
		return false
	}
	if _, ok := m.cache.Get(key); ok {
		if invalidate {
			m.cache.Invalidate(key)
		}
		return false
	}
	m.cache.Seed(key, v)
	return true
}

// Persist writes the cached value for key, or erases it when the key is
// gone. Unchanged documents are not rewritten.
func (m *Mirror) Persist(key cache.Key) error {
	v, ok := m.cache.Get(key)
	if !ok {
		m.mu.Lock()
		delete(m.written, key)
		m.mu.Unlock()
		return m.p.Erase(key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	m.mu.Lock()
	if prev, seen := m.written[key]; seen && prev == sum {
		m.mu.Unlock()
		return nil
	}
	m.written[key] = sum
	m.mu.Unlock()
	return m.p.Write(key, data)
}

// Sync persists every cached key. Events the mirror missed are caught up
// here.
func (m *Mirror) Sync() error {
	var first error
	for _, key := range m.cache.Keys() {
		if err := m.Persist(key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run persists cache changes and picks up documents written by other
// processes until ctx is done. It syncs once more before returning.
func (m *Mirror) Run(ctx context.Context) error {
	watch, err := m.p.Watch(ctx)
	if err != nil {
		return err
	}
	events := m.cache.Events()
	for {
		select {
		case <-ctx.Done():
			return m.Sync()
		case ev := <-events:
			if ev.Action == cache.ActionInvalidate {
				continue
			}
			if err := m.Persist(ev.Key); err != nil {
				m.logger.Warn("mirror write failed", "key", ev.Key, "error", err)
			}
		case ev, ok := <-watch:
			if !ok {
				watch = nil
				continue
			}
			if ev.Key == "" {
				for _, key := range m.p.Keys(ctx) {
					m.load(key, true)
				}
				continue
			}
			m.load(ev.Key, true)
		}
	}
}
