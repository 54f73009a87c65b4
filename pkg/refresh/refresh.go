// Package refresh refetches stale cache keys on a schedule.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tableflip.dev/agenda/pkg/cache"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 5 * time.Minute

// Result is the outcome of one scheduled pass.
type Result struct {
	Key cache.Key
	Err error
}

// Refresher runs cron jobs against a cache loader.
type Refresher struct {
	loader *cache.Loader
	cache  *cache.Cache
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	onPass  func([]Result)
}

type Option func(*Refresher)

func WithLogger(l *slog.Logger) Option {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnPass is called after every scheduled pass.
func OnPass(fn func([]Result)) Option {
	return func(r *Refresher) { r.onPass = fn }
}

func New(loader *cache.Loader, c *cache.Cache, loc *time.Location, opts ...Option) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	r := &Refresher{
		loader: loader,
		cache:  c,
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Every schedules a refresh of stale keys at a fixed interval.
func (r *Refresher) Every(interval time.Duration) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("refresh: interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return r.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), r.pass)
}

// Schedule adds a refresh using a cron expression with a seconds field, for
// example "0 0 6 * * *" to warm the cache every morning.
func (r *Refresher) Schedule(spec string) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, r.pass)
}

func (r *Refresher) pass() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Debug("refresh pass skipped, previous still running")
		return
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	results := r.RefreshStale(context.Background())
	if r.onPass != nil {
		r.onPass(results)
	}
}

// RefreshStale refetches every stale key the loader knows how to fetch.
// Absent keys are left for readers to load on demand.
func (r *Refresher) RefreshStale(ctx context.Context) []Result {
	var out []Result
	for _, key := range r.cache.StaleKeys() {
		if !r.loader.Known(key) {
			continue
		}
		_, err := r.loader.Refresh(ctx, key)
		if err != nil {
			r.logger.Warn("scheduled refresh failed", "key", key, "err", err)
		}
		out = append(out, Result{Key: key, Err: err})
	}
	if len(out) > 0 {
		r.logger.Debug("refreshed stale keys", "count", len(out))
	}
	return out
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running pass to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
