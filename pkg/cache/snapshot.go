package cache

import (
	"reflect"

	"tableflip.dev/agenda/pkg/entity"
)

// Snapshot captures a set of keys so they can be put back exactly.
type Snapshot struct {
	entries map[Key]saved
}

type saved struct {
	value   any
	stale   bool
	present bool
}

// Keys lists the keys held by the snapshot.
func (s Snapshot) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot records the current state of keys. Absent keys are remembered as
// absent.
func (c *Cache) Snapshot(keys ...Key) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{entries: make(map[Key]saved, len(keys))}
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			s.entries[k] = saved{value: e.value, stale: e.stale, present: true}
		} else {
			s.entries[k] = saved{}
		}
	}
	return s
}

// Restore puts every key in s back to its recorded state.
func (c *Cache) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range s.entries {
		if !v.present {
			if _, ok := c.entries[k]; ok {
				delete(c.entries, k)
				c.version++
				c.emit(Event{Key: k, Action: ActionRemove, Version: c.version})
			}
			continue
		}
		c.setLocked(k, v.value, v.stale)
	}
}

// Without returns a copy of s that leaves keys out.
func (s Snapshot) Without(keys ...Key) Snapshot {
	out := Snapshot{entries: make(map[Key]saved, len(s.entries))}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	for _, k := range keys {
		delete(out.entries, k)
	}
	return out
}

// Revert undoes, item by item, what changed under key between before and
// after. An item is only put back while it still holds the value recorded in
// after, so writes made to it since then are kept. Values that are not lists
// of identified items are left alone and report false.
func (c *Cache) Revert(key Key, before, after Snapshot) bool {
	b, a := before.entries[key], after.entries[key]
	if !b.present || !a.present {
		return false
	}
	return c.Update(key, func(current any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		switch cur := current.(type) {
		case []entity.Task:
			return revertItems(b.value, a.value, cur)
		case []entity.Subtask:
			return revertItems(b.value, a.value, cur)
		case []entity.Appointment:
			return revertItems(b.value, a.value, cur)
		case []entity.Meeting:
			return revertItems(b.value, a.value, cur)
		}
		return nil, false
	})
}

func revertItems[T Identified](before, after any, current []T) (any, bool) {
	prev, ok := before.([]T)
	if !ok {
		return nil, false
	}
	applied, ok := after.([]T)
	if !ok {
		return nil, false
	}
	was := make(map[entity.ID]T, len(prev))
	for _, it := range prev {
		was[it.ItemID()] = it
	}
	left := make(map[entity.ID]T, len(applied))
	for _, it := range applied {
		left[it.ItemID()] = it
	}

	changed := false
	present := make(map[entity.ID]bool, len(current))
	next := make([]T, 0, len(current))
	for _, it := range current {
		id := it.ItemID()
		present[id] = true
		mine, touched := left[id]
		if !touched || !reflect.DeepEqual(it, mine) {
			next = append(next, it)
			continue
		}
		old, existed := was[id]
		switch {
		case !existed:
			changed = true
		case !reflect.DeepEqual(old, mine):
			next = append(next, old)
			changed = true
		default:
			next = append(next, it)
		}
	}
	// Items removed between before and after come back at their old index.
	for i, it := range prev {
		id := it.ItemID()
		if _, kept := left[id]; kept || present[id] {
			continue
		}
		at := i
		if at > len(next) {
			at = len(next)
		}
		next = append(next[:at], append([]T{it}, next[at:]...)...)
		changed = true
	}
	return next, changed
}
