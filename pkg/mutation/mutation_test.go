package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/entity"
)

type notFound struct{}

func (notFound) Error() string  { return "gone" }
func (notFound) NotFound() bool { return true }

type flaky struct{}

func (flaky) Error() string   { return "timeout" }
func (flaky) Retryable() bool { return true }

type memoryRecorder struct {
	mu       sync.Mutex
	failures []Failure
}

func (m *memoryRecorder) Record(_ context.Context, f Failure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, f)
	return nil
}

func seed(c *cache.Cache) {
	cache.SetList(c, cache.KeyTasks, []entity.Task{
		{ID: 1, Title: "one"},
		{ID: 2, Title: "two"},
	})
}

func complete(id entity.ID) func(c *cache.Cache) {
	return func(c *cache.Cache) {
		cache.PatchItem(c, cache.KeyTasks, id, func(t entity.Task) entity.Task {
			t.Completed = true
			return t
		})
	}
}

func TestPerformCommitsServerResult(t *testing.T) {
	c := cache.New()
	seed(c)
	co := New(c)

	var sawOptimistic bool
	got, err := Perform(context.Background(), co, Mutation[entity.Task]{
		Name:       "complete-task",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(1),
		Remote: func(ctx context.Context) (entity.Task, error) {
			task, _ := cache.Find[entity.Task](c, cache.KeyTasks, 1)
			sawOptimistic = task.Completed
			return entity.Task{ID: 1, Title: "one (server)", Completed: true}, nil
		},
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.ReplaceItem(c, cache.KeyTasks, t)
		},
		Invalidate: []cache.Key{cache.KeyTasksWithSubtasks},
	})
	require.NoError(t, err)
	assert.True(t, sawOptimistic)
	assert.Equal(t, "one (server)", got.Title)

	task, _ := cache.Find[entity.Task](c, cache.KeyTasks, 1)
	assert.Equal(t, "one (server)", task.Title)
	assert.False(t, c.IsStale(cache.KeyTasks))
}

func TestPerformRollsBackAndRecords(t *testing.T) {
	c := cache.New()
	seed(c)
	rec := &memoryRecorder{}
	co := New(c, WithRecorder(rec))
	before, _ := cache.List[entity.Task](c, cache.KeyTasks)

	_, err := Perform(context.Background(), co, Mutation[entity.Task]{
		Name:       "complete-task",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(2),
		Remote: func(ctx context.Context) (entity.Task, error) {
			return entity.Task{}, flaky{}
		},
	})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	after, _ := cache.List[entity.Task](c, cache.KeyTasks)
	assert.Equal(t, before, after)

	require.Len(t, rec.failures, 1)
	assert.Equal(t, "complete-task", rec.failures[0].Name)
	assert.True(t, rec.failures[0].Retryable)
	assert.NotEmpty(t, rec.failures[0].MutationID)
}

func TestNotFoundRemovesStaleEntity(t *testing.T) {
	c := cache.New()
	seed(c)
	co := New(c)

	_, err := Perform(context.Background(), co, Mutation[entity.Task]{
		Name:       "complete-task",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(2),
		Remote: func(ctx context.Context) (entity.Task, error) {
			return entity.Task{}, notFound{}
		},
		OnNotFound: func(c *cache.Cache) {
			cache.RemoveItem[entity.Task](c, cache.KeyTasks, 2)
		},
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	list, _ := cache.List[entity.Task](c, cache.KeyTasks)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ID(1), list[0].ID)
}

func TestSettleHappensOnce(t *testing.T) {
	c := cache.New()
	seed(c)
	co := New(c)

	f := Begin(co, Mutation[entity.Task]{
		Name:       "complete-task",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(1),
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.ReplaceItem(c, cache.KeyTasks, t)
		},
	})
	assert.True(t, f.Commit(entity.Task{ID: 1, Title: "one", Completed: true}))
	assert.False(t, f.Fail(context.Background(), errors.New("late failure")))
	assert.False(t, f.Commit(entity.Task{ID: 1}))
	assert.True(t, f.Settled())

	task, _ := cache.Find[entity.Task](c, cache.KeyTasks, 1)
	assert.True(t, task.Completed)
}

func TestFetchStartedBeforeMutationIsDiscarded(t *testing.T) {
	c := cache.New()
	seed(c)
	co := New(c)

	tok := c.BeginFetch(cache.KeyTasks)
	_, err := Perform(context.Background(), co, Mutation[entity.Task]{
		Name:       "complete-task",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(1),
		Remote: func(ctx context.Context) (entity.Task, error) {
			return entity.Task{ID: 1, Title: "one", Completed: true}, nil
		},
		Commit: func(c *cache.Cache, t entity.Task) { cache.ReplaceItem(c, cache.KeyTasks, t) },
	})
	require.NoError(t, err)

	assert.False(t, c.CompleteFetch(tok, []entity.Task{{ID: 1, Title: "one"}}))
	task, _ := cache.Find[entity.Task](c, cache.KeyTasks, 1)
	assert.True(t, task.Completed)
}

func TestOverlappingRollbackMarksKeyStale(t *testing.T) {
	c := cache.New()
	seed(c)
	co := New(c)

	first := Begin(co, Mutation[entity.Task]{
		Name:       "complete-one",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(1),
		Remote:     func(context.Context) (entity.Task, error) { return entity.Task{}, nil },
	})
	second := Begin(co, Mutation[entity.Task]{
		Name:       "complete-two",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(2),
		Remote:     func(context.Context) (entity.Task, error) { return entity.Task{}, nil },
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.ReplaceItem(c, cache.KeyTasks, t)
		},
	})
	require.True(t, second.Commit(entity.Task{ID: 2, Title: "two", Completed: true}))
	require.False(t, c.IsStale(cache.KeyTasks))

	require.True(t, first.Fail(context.Background(), flaky{}))
	assert.True(t, c.IsStale(cache.KeyTasks))

	one, _ := cache.Find[entity.Task](c, cache.KeyTasks, 1)
	two, _ := cache.Find[entity.Task](c, cache.KeyTasks, 2)
	assert.False(t, one.Completed, "the failed change is undone")
	assert.True(t, two.Completed, "the committed server result is kept")
}

func TestRollbackAfterEarlierCommitKeepsIt(t *testing.T) {
	c := cache.New()
	seed(c)
	co := New(c)

	earlier := Begin(co, Mutation[entity.Task]{
		Name:       "complete-two",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(2),
		Commit: func(c *cache.Cache, t entity.Task) {
			cache.ReplaceItem(c, cache.KeyTasks, t)
		},
	})
	later := Begin(co, Mutation[entity.Task]{
		Name:       "complete-one",
		Keys:       []cache.Key{cache.KeyTasks},
		Optimistic: complete(1),
	})
	require.True(t, earlier.Commit(entity.Task{ID: 2, Title: "two (server)", Completed: true}))
	require.True(t, later.Fail(context.Background(), flaky{}))

	one, _ := cache.Find[entity.Task](c, cache.KeyTasks, 1)
	two, _ := cache.Find[entity.Task](c, cache.KeyTasks, 2)
	assert.False(t, one.Completed)
	assert.Equal(t, "two (server)", two.Title)
}

func TestConcurrentFailuresEachUndoOwnItem(t *testing.T) {
	c := cache.New()
	tasks := make([]entity.Task, 0, 8)
	for i := 1; i <= 8; i++ {
		tasks = append(tasks, entity.Task{ID: entity.ID(i)})
	}
	cache.SetList(c, cache.KeyTasks, tasks)
	co := New(c)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(id entity.ID) {
			defer wg.Done()
			_, _ = Perform(context.Background(), co, Mutation[entity.Task]{
				Name:       "complete-task",
				Keys:       []cache.Key{cache.KeyTasks},
				Optimistic: complete(id),
				Remote: func(context.Context) (entity.Task, error) {
					if id%2 == 0 {
						return entity.Task{}, flaky{}
					}
					return entity.Task{ID: id, Completed: true}, nil
				},
				Commit: func(c *cache.Cache, t entity.Task) {
					cache.ReplaceItem(c, cache.KeyTasks, t)
				},
			})
		}(entity.ID(i))
	}
	wg.Wait()

	list, _ := cache.List[entity.Task](c, cache.KeyTasks)
	require.Len(t, list, 8)
	for _, task := range list {
		assert.Equal(t, task.ID%2 == 1, task.Completed, "task %d", task.ID)
	}
}
