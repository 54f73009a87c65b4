// Package app ties the cache, the mutation coordinator and the remote API
// together into the operations the CLI and MCP surfaces call.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/agenda/pkg/api"
	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/cascade"
	"tableflip.dev/agenda/pkg/conflict"
	"tableflip.dev/agenda/pkg/entity"
	"tableflip.dev/agenda/pkg/mutation"
)

// Service provides high-level operations over tasks, subtasks, appointments
// and settings. Reads come from the cache; writes go through the mutation
// coordinator.
type Service struct {
	Remote api.Remote

	cache     *cache.Cache
	loader    *cache.Loader
	co        *mutation.Coordinator
	cascade   *cascade.Engine
	debouncer *mutation.Debouncer
	debounce  time.Duration
	logger    *slog.Logger
	recorder  mutation.Recorder
	now       func() time.Time

	mu  sync.RWMutex
	loc *time.Location

	posMu     sync.Mutex
	positions map[entity.ID]*positionQueue
}

var ErrNoRemote = errors.New("app: no remote configured")

// Option configures a Service.
type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder journals rolled-back mutations.
func WithRecorder(r mutation.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithDebounce sets the quiet period for coalesced title edits.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// NewService wires a Service around remote and c. A nil cache gets a fresh
// one.
func NewService(remote api.Remote, c *cache.Cache, opts ...Option) *Service {
	if c == nil {
		c = cache.New()
	}
	s := &Service{
		Remote:    remote,
		cache:     c,
		debouncer: mutation.NewDebouncer(),
		debounce:  mutation.DefaultDebounce,
		logger:    slog.Default(),
		now:       time.Now,
		loc:       time.Local,
		positions: make(map[entity.ID]*positionQueue),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loader = cache.NewLoader(c, cache.WithLoaderLogger(s.logger))
	s.co = mutation.New(c,
		mutation.WithLogger(s.logger),
		mutation.WithRecorder(s.recorder),
		mutation.WithClock(s.now),
	)
	s.cascade = cascade.NewEngine(s, s.logger)
	s.registerFetchers()
	return s
}

func (s *Service) registerFetchers() {
	s.loader.Register(cache.KeyTasks, func(ctx context.Context) (any, error) {
		return s.Remote.ListTasks(ctx)
	})
	s.loader.Register(cache.KeyTasksWithSubtasks, func(ctx context.Context) (any, error) {
		return s.Remote.TasksWithSubtasks(ctx)
	})
	s.loader.Register(cache.KeyAppointments, func(ctx context.Context) (any, error) {
		return s.Remote.ListAppointments(ctx)
	})
	s.loader.Register(cache.KeyMeetings, func(ctx context.Context) (any, error) {
		return s.Remote.ListMeetings(ctx)
	})
	s.loader.Register(cache.KeySettings, func(ctx context.Context) (any, error) {
		return s.Remote.GetSettings(ctx)
	})
	s.loader.RegisterResolver(func(key cache.Key) (cache.FetchFunc, bool) {
		taskID, ok := cache.ParseSubtasksKey(key)
		if !ok {
			return nil, false
		}
		return func(ctx context.Context) (any, error) {
			subs, err := s.Remote.ListSubtasks(ctx, taskID)
			if err != nil {
				return nil, err
			}
			sortByPosition(subs)
			return subs, nil
		}, true
	})
}

func (s *Service) Cache() *cache.Cache { return s.cache }

func (s *Service) Loader() *cache.Loader { return s.loader }

// Location is the timezone used for calendar-date comparisons.
func (s *Service) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

func (s *Service) setLocation(loc *time.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = loc
}

func (s *Service) detector() conflict.Detector {
	return conflict.Detector{Location: s.Location()}
}

func (s *Service) ready() error {
	if s.Remote == nil {
		return ErrNoRemote
	}
	return nil
}

// RefreshResult reports the outcome of refetching one key.
type RefreshResult struct {
	Key cache.Key `json:"key"`
	Err error     `json:"-"`
}

// RefreshAll refetches every fixed key and every cached subtask list.
func (s *Service) RefreshAll(ctx context.Context) []RefreshResult {
	keys := append([]cache.Key(nil), cache.Fixed...)
	for _, k := range s.cache.Keys() {
		if _, ok := cache.ParseSubtasksKey(k); ok {
			keys = append(keys, k)
		}
	}
	out := make([]RefreshResult, 0, len(keys))
	for _, k := range keys {
		_, err := s.loader.Refresh(ctx, k)
		out = append(out, RefreshResult{Key: k, Err: err})
	}
	return out
}

// Close sends debounced edits still waiting out their quiet period and stops
// the debouncer.
func (s *Service) Close() {
	s.debouncer.FlushAll()
	s.debouncer.Stop()
}

func lookup[T cache.Identified](list []T, id entity.ID) (T, bool) {
	for _, it := range list {
		if it.ItemID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
