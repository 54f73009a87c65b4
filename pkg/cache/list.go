package cache

import "tableflip.dev/agenda/pkg/entity"

// Identified is a list element addressable by id.
type Identified interface {
	ItemID() entity.ID
}

// Value returns a single cached value of type T.
func Value[T any](c *Cache, key Key) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// List returns a copy of the list stored under key.
func List[T any](c *Cache, key Key) ([]T, bool) {
	items, ok := Value[[]T](c, key)
	if !ok {
		return nil, false
	}
	return append([]T(nil), items...), true
}

// SetList stores a copy of items under key.
func SetList[T any](c *Cache, key Key, items []T) {
	c.Set(key, append(make([]T, 0, len(items)), items...))
}

// PatchItem replaces the element with id by fn(element). Missing keys and ids
// are left alone and report false.
func PatchItem[T Identified](c *Cache, key Key, id entity.ID, fn func(T) T) bool {
	return c.Update(key, func(current any, ok bool) (any, bool) {
		items, isList := current.([]T)
		if !ok || !isList {
			return nil, false
		}
		for i := range items {
			if items[i].ItemID() != id {
				continue
			}
			next := append([]T(nil), items...)
			next[i] = fn(items[i])
			return next, true
		}
		return nil, false
	})
}

// ReplaceItem swaps in item for the element with the same id.
func ReplaceItem[T Identified](c *Cache, key Key, item T) bool {
	return PatchItem(c, key, item.ItemID(), func(T) T { return item })
}

// RemoveItem drops the element with id.
func RemoveItem[T Identified](c *Cache, key Key, id entity.ID) bool {
	return c.Update(key, func(current any, ok bool) (any, bool) {
		items, isList := current.([]T)
		if !ok || !isList {
			return nil, false
		}
		for i := range items {
			if items[i].ItemID() != id {
				continue
			}
			next := make([]T, 0, len(items)-1)
			next = append(next, items[:i]...)
			next = append(next, items[i+1:]...)
			return next, true
		}
		return nil, false
	})
}

// UpsertItem replaces the element with item's id or appends item. Nothing is
// stored when the list itself is not cached yet.
func UpsertItem[T Identified](c *Cache, key Key, item T) bool {
	return c.Update(key, func(current any, ok bool) (any, bool) {
		items, isList := current.([]T)
		if !ok || !isList {
			return nil, false
		}
		next := append([]T(nil), items...)
		for i := range next {
			if next[i].ItemID() == item.ItemID() {
				next[i] = item
				return next, true
			}
		}
		return append(next, item), true
	})
}

// Find returns the element with id from the list under key.
func Find[T Identified](c *Cache, key Key, id entity.ID) (T, bool) {
	items, _ := Value[[]T](c, key)
	for _, it := range items {
		if it.ItemID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
