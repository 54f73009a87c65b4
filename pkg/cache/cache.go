// Package cache is the client-side store of server data. It behaves like an
// informer cache: values live locally keyed by query, readers get copies,
// every write bumps a version and emits an event, and stale entries are
// refetched on demand by a Loader.
package cache

import (
	"sort"
	"sync"
	"time"
)

// Action describes what happened to a key.
type Action int

const (
	ActionSet Action = iota
	ActionRemove
	ActionInvalidate
)

func (a Action) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionRemove:
		return "remove"
	case ActionInvalidate:
		return "invalidate"
	}
	return "unknown"
}

// Event is emitted after every change to a key.
type Event struct {
	Key     Key
	Action  Action
	Version uint64
}

type entry struct {
	value   any
	stale   bool
	version uint64
	updated time.Time
}

// Cache holds one value per key. Stored values are treated as immutable;
// writers always install a fresh value.
type Cache struct {
	mu sync.RWMutex

	entries map[Key]*entry
	fetches map[Key]uint64
	version uint64

	eventCh chan Event
	closed  bool
	now     func() time.Time
}

// New creates an empty cache with a buffered event channel.
func New() *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		fetches: make(map[Key]uint64),
		eventCh: make(chan Event, 64),
		now:     time.Now,
	}
}

// Events exposes change notifications. Events are dropped when nobody keeps
// up with the channel.
func (c *Cache) Events() <-chan Event {
	return c.eventCh
}

// Close stops event delivery.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
}

// Get returns the raw value stored under key. Callers must not modify it.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set installs a fresh value and clears the stale flag.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value, false)
}

// Seed installs a value restored from disk. It is marked stale and emits no
// event so a mirror does not write it straight back.
func (c *Cache) Seed(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.version++
	c.entries[key] = &entry{value: value, stale: true, version: c.version, updated: c.now()}
}

// Update runs fn against the current value under the write lock. fn returns
// the replacement and whether anything changed.
func (c *Cache) Update(key Key, fn func(current any, ok bool) (any, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var (
		current any
		stale   bool
	)
	e, ok := c.entries[key]
	if ok {
		current, stale = e.value, e.stale
	}
	next, changed := fn(current, ok)
	if !changed {
		return false
	}
	c.setLocked(key, next, stale)
	return true
}

// Remove drops key.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.version++
	c.emit(Event{Key: key, Action: ActionRemove, Version: c.version})
}

// Invalidate marks keys stale so the next Ensure refetches them. Absent keys
// still emit an event for listeners that track them.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.version++
		if e, ok := c.entries[key]; ok {
			e.stale = true
			e.version = c.version
		}
		c.emit(Event{Key: key, Action: ActionInvalidate, Version: c.version})
	}
}

// IsStale reports whether key is missing or marked stale.
func (c *Cache) IsStale(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return !ok || e.stale
}

// Version returns the change counter recorded for key, 0 when absent.
func (c *Cache) Version(key Key) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.version
	}
	return 0
}

// UpdatedAt returns when key last changed.
func (c *Cache) UpdatedAt(key Key) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.updated, true
	}
	return time.Time{}, false
}

// Keys lists stored keys in order.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// StaleKeys lists keys currently marked stale.
func (c *Cache) StaleKeys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var keys []Key
	for k, e := range c.entries {
		if e.stale {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (c *Cache) setLocked(key Key, value any, stale bool) {
	c.version++
	c.entries[key] = &entry{value: value, stale: stale, version: c.version, updated: c.now()}
	c.emit(Event{Key: key, Action: ActionSet, Version: c.version})
}

func (c *Cache) emit(ev Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- ev:
	default:
	}
}
