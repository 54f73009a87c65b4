package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc reads the authoritative value for one key.
type FetchFunc func(ctx context.Context) (any, error)

// Resolver supplies fetchers for keys that carry identifiers.
type Resolver func(key Key) (FetchFunc, bool)

// Loader fills the cache from the server. Concurrent loads of one key share
// a single request.
type Loader struct {
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger

	mu        sync.RWMutex
	fetchers  map[Key]FetchFunc
	resolvers []Resolver
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used for fetch diagnostics.
func WithLoaderLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

func NewLoader(c *Cache, opts ...LoaderOption) *Loader {
	l := &Loader{
		cache:    c,
		logger:   slog.Default(),
		fetchers: make(map[Key]FetchFunc),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register binds a fetcher to an exact key.
func (l *Loader) Register(key Key, fn FetchFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetchers[key] = fn
}

// RegisterResolver adds a fallback for keys with no exact fetcher.
func (l *Loader) RegisterResolver(r Resolver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resolvers = append(l.resolvers, r)
}

func (l *Loader) fetcher(key Key) (FetchFunc, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if fn, ok := l.fetchers[key]; ok {
		return fn, true
	}
	for _, r := range l.resolvers {
		if fn, ok := r(key); ok {
			return fn, true
		}
	}
	return nil, false
}

// Ensure returns the cached value for key, fetching it when missing or stale.
func (l *Loader) Ensure(ctx context.Context, key Key) (any, error) {
	if !l.cache.IsStale(key) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
	}
	v, err := l.Refresh(ctx, key)
	if err != nil && retryable(err) {
		if stale, ok := l.cache.Get(key); ok {
			l.logger.Warn("serving stale value", "key", key, "err", err)
			return stale, nil
		}
	}
	return v, err
}

func retryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// Refresh fetches key unconditionally. When a write cancelled the read while
// it was in flight the cached value wins over the response.
func (l *Loader) Refresh(ctx context.Context, key Key) (any, error) {
	fn, ok := l.fetcher(key)
	if !ok {
		return nil, fmt.Errorf("cache: no fetcher registered for %q", key)
	}
	v, err, _ := l.group.Do(string(key), func() (any, error) {
		tok := l.cache.BeginFetch(key)
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if !l.cache.CompleteFetch(tok, value) {
			l.logger.Debug("discarded superseded fetch", "key", key)
			if current, ok := l.cache.Get(key); ok {
				return current, nil
			}
		}
		return value, nil
	})
	if err != nil {
		l.logger.Warn("fetch failed", "key", key, "err", err)
		return nil, err
	}
	return v, nil
}

// Known reports whether a fetcher exists for key.
func (l *Loader) Known(key Key) bool {
	_, ok := l.fetcher(key)
	return ok
}

// EnsureList loads key and returns a copy of its list.
func EnsureList[T any](ctx context.Context, l *Loader, key Key) ([]T, error) {
	v, err := l.Ensure(ctx, key)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]T)
	if !ok {
		return nil, fmt.Errorf("cache: %q holds %T", key, v)
	}
	return append([]T(nil), items...), nil
}

// EnsureValue loads key and returns its value as T.
func EnsureValue[T any](ctx context.Context, l *Loader, key Key) (T, error) {
	var zero T
	v, err := l.Ensure(ctx, key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: %q holds %T", key, v)
	}
	return t, nil
}
