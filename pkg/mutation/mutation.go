// Package mutation applies writes to the cache optimistically and settles
// them once the server answers: the authoritative payload is committed on
// success and the pre-write snapshot is restored on failure.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/agenda/pkg/cache"
)

// Failure describes a mutation that was rolled back.
type Failure struct {
	MutationID string
	Name       string
	Keys       []cache.Key
	Err        error
	Retryable  bool
	At         time.Time
}

// Recorder keeps rolled-back mutations for later inspection.
type Recorder interface {
	Record(ctx context.Context, f Failure) error
}

// Coordinator runs mutations against one cache.
type Coordinator struct {
	cache    *cache.Cache
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	// apply serializes cache writes made by Begin, Commit and Fail.
	apply sync.Mutex

	mu    sync.Mutex
	begun map[cache.Key]uint64
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(co *Coordinator) {
		if l != nil {
			co.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(co *Coordinator) { co.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(co *Coordinator) {
		if now != nil {
			co.now = now
		}
	}
}

func New(c *cache.Cache, opts ...Option) *Coordinator {
	co := &Coordinator{cache: c, logger: slog.Default(), now: time.Now, begun: make(map[cache.Key]uint64)}
	for _, opt := range opts {
		opt(co)
	}
	return co
}

func (co *Coordinator) Cache() *cache.Cache { return co.cache }

// Mutation describes one server write and its effect on the cache.
type Mutation[T any] struct {
	// Name identifies the mutation in logs and the failure journal.
	Name string
	// Keys are snapshotted before Optimistic runs and restored on failure.
	Keys []cache.Key
	// Optimistic projects the expected result into the cache. Optional.
	Optimistic func(c *cache.Cache)
	// Remote performs the write.
	Remote func(ctx context.Context) (T, error)
	// Commit stores the server's result. Optional.
	Commit func(c *cache.Cache, result T)
	// Invalidate lists keys whose server-derived data changes as a side effect.
	Invalidate []cache.Key
	// OnNotFound runs after rollback when the target no longer exists.
	OnNotFound func(c *cache.Cache)
}

// Inflight is a started mutation waiting for its server answer. Exactly one
// of Commit or Fail takes effect.
type Inflight[T any] struct {
	co      *Coordinator
	m       Mutation[T]
	id      string
	snap    cache.Snapshot
	applied cache.Snapshot
	seq     map[cache.Key]uint64
	started time.Time
	settled atomic.Bool
}

// Begin cancels reads of the affected keys, snapshots them and applies the
// optimistic projection.
func Begin[T any](co *Coordinator, m Mutation[T]) *Inflight[T] {
	c := co.cache
	co.apply.Lock()
	defer co.apply.Unlock()
	c.CancelFetches(m.Keys...)
	f := &Inflight[T]{
		co:      co,
		m:       m,
		id:      uuid.NewString(),
		snap:    c.Snapshot(m.Keys...),
		seq:     co.mark(m.Keys),
		started: co.now(),
	}
	if m.Optimistic != nil {
		m.Optimistic(c)
	}
	f.applied = c.Snapshot(m.Keys...)
	co.logger.Debug("mutation started", "mutation", m.Name, "id", f.id, "keys", m.Keys)
	return f
}

func (f *Inflight[T]) ID() string { return f.id }

// Settled reports whether Commit or Fail already ran.
func (f *Inflight[T]) Settled() bool { return f.settled.Load() }

// Commit stores result and invalidates side-effect keys. It reports false
// when the mutation was already settled.
func (f *Inflight[T]) Commit(result T) bool {
	if !f.settled.CompareAndSwap(false, true) {
		return false
	}
	c := f.co.cache
	f.co.apply.Lock()
	c.CancelFetches(f.m.Keys...)
	f.co.mark(f.m.Keys)
	if f.m.Commit != nil {
		f.m.Commit(c, result)
	}
	if len(f.m.Invalidate) > 0 {
		c.Invalidate(f.m.Invalidate...)
	}
	f.co.apply.Unlock()
	f.co.logger.Debug("mutation committed", "mutation", f.m.Name, "id", f.id, "took", f.co.now().Sub(f.started))
	return true
}

// Fail rolls the cache back and records the failure. Keys nobody else
// touched since Begin get the snapshot back. On keys another mutation began
// or settled on meanwhile only this mutation's own items are undone, so the
// other result is kept, and the key is marked stale. It reports false when
// the mutation was already settled.
func (f *Inflight[T]) Fail(ctx context.Context, err error) bool {
	if !f.settled.CompareAndSwap(false, true) {
		return false
	}
	c := f.co.cache
	f.co.apply.Lock()
	overlapped := f.co.overlapped(f.seq)
	c.Restore(f.snap.Without(overlapped...))
	for _, k := range overlapped {
		c.Revert(k, f.snap, f.applied)
	}
	if len(overlapped) > 0 {
		c.Invalidate(overlapped...)
	}
	f.co.mark(f.m.Keys)
	notFound := IsNotFound(err)
	if notFound && f.m.OnNotFound != nil {
		f.m.OnNotFound(c)
	}
	f.co.apply.Unlock()
	f.co.logger.Warn("mutation rolled back", "mutation", f.m.Name, "id", f.id, "err", err, "not_found", notFound)
	if f.co.recorder != nil {
		rec := Failure{
			MutationID: f.id,
			Name:       f.m.Name,
			Keys:       f.m.Keys,
			Err:        err,
			Retryable:  IsRetryable(err),
			At:         f.co.now(),
		}
		if rerr := f.co.recorder.Record(context.WithoutCancel(ctx), rec); rerr != nil {
			f.co.logger.Error("failed to record mutation failure", "id", f.id, "err", rerr)
		}
	}
	return true
}

// mark records that a mutation began or settled on keys and returns the
// sequence seen.
func (co *Coordinator) mark(keys []cache.Key) map[cache.Key]uint64 {
	co.mu.Lock()
	defer co.mu.Unlock()
	seq := make(map[cache.Key]uint64, len(keys))
	for _, k := range keys {
		co.begun[k]++
		seq[k] = co.begun[k]
	}
	return seq
}

// overlapped lists the keys another mutation began or settled on after seq
// was taken.
func (co *Coordinator) overlapped(seq map[cache.Key]uint64) []cache.Key {
	co.mu.Lock()
	defer co.mu.Unlock()
	var out []cache.Key
	for k, n := range seq {
		if co.begun[k] != n {
			out = append(out, k)
		}
	}
	return out
}

// Perform runs m to completion and returns the server's result.
func Perform[T any](ctx context.Context, co *Coordinator, m Mutation[T]) (T, error) {
	var zero T
	if m.Remote == nil {
		return zero, errors.New("mutation: remote call required")
	}
	f := Begin(co, m)
	result, err := m.Remote(ctx)
	if err != nil {
		f.Fail(ctx, err)
		return zero, fmt.Errorf("%s: %w", m.Name, err)
	}
	f.Commit(result)
	return result, nil
}

// IsNotFound reports whether err says the target no longer exists.
func IsNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}

// IsRetryable reports whether retrying err might succeed.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}
