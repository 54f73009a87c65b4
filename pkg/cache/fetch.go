package cache

// FetchToken identifies one in-flight read of a key.
type FetchToken struct {
	key Key
	gen uint64
}

func (t FetchToken) Key() Key { return t.key }

// BeginFetch registers a read of key. The result only lands if no write
// cancelled the key in the meantime.
func (c *Cache) BeginFetch(key Key) FetchToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FetchToken{key: key, gen: c.fetches[key]}
}

// CompleteFetch stores value if tok is still current and reports whether it
// did.
func (c *Cache) CompleteFetch(tok FetchToken, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetches[tok.key] != tok.gen {
		return false
	}
	c.setLocked(tok.key, value, false)
	return true
}

// CancelFetches discards the results of reads of keys that are still in
// flight.
func (c *Cache) CancelFetches(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.fetches[k]++
	}
}
