package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/entity"
)

func tasks(ids ...entity.ID) []entity.Task {
	out := make([]entity.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.Task{ID: id, Title: "task " + id.String()})
	}
	return out
}

func TestListReturnsCopies(t *testing.T) {
	c := New()
	SetList(c, KeyTasks, tasks(1, 2))

	got, ok := List[entity.Task](c, KeyTasks)
	require.True(t, ok)
	got[0].Title = "mutated"

	again, _ := List[entity.Task](c, KeyTasks)
	assert.Equal(t, "task 1", again[0].Title)
}

func TestPatchItemMissingIsNoop(t *testing.T) {
	c := New()
	assert.False(t, PatchItem(c, KeyTasks, 1, func(t entity.Task) entity.Task { return t }))

	SetList(c, KeyTasks, tasks(1))
	before := c.Version(KeyTasks)
	assert.False(t, PatchItem(c, KeyTasks, 99, func(t entity.Task) entity.Task { return t }))
	assert.Equal(t, before, c.Version(KeyTasks))

	assert.True(t, PatchItem(c, KeyTasks, 1, func(t entity.Task) entity.Task {
		t.Completed = true
		return t
	}))
	got, _ := Find[entity.Task](c, KeyTasks, 1)
	assert.True(t, got.Completed)
	assert.Greater(t, c.Version(KeyTasks), before)
}

func TestSnapshotRestoreIsExact(t *testing.T) {
	c := New()
	SetList(c, KeyTasks, tasks(1, 2, 3))
	c.Invalidate(KeyTasks)

	snap := c.Snapshot(KeyTasks, KeyAppointments)

	RemoveItem[entity.Task](c, KeyTasks, 2)
	UpsertItem(c, KeyTasks, entity.Task{ID: 4})
	SetList(c, KeyAppointments, []entity.Appointment{{ID: 1}})

	c.Restore(snap)

	got, ok := List[entity.Task](c, KeyTasks)
	require.True(t, ok)
	assert.Equal(t, tasks(1, 2, 3), got)
	assert.True(t, c.IsStale(KeyTasks))
	_, ok = c.Get(KeyAppointments)
	assert.False(t, ok)
}

func TestCancelledFetchIsDiscarded(t *testing.T) {
	c := New()
	tok := c.BeginFetch(KeyTasks)
	c.CancelFetches(KeyTasks)
	SetList(c, KeyTasks, tasks(1))

	assert.False(t, c.CompleteFetch(tok, tasks(7, 8)))
	got, _ := List[entity.Task](c, KeyTasks)
	assert.Equal(t, tasks(1), got)
}

func TestSubtasksKeyRoundTrip(t *testing.T) {
	key := SubtasksKey(42)
	assert.Equal(t, Key("tasks/42/subtasks"), key)
	id, ok := ParseSubtasksKey(key)
	require.True(t, ok)
	assert.Equal(t, entity.ID(42), id)

	_, ok = ParseSubtasksKey(KeyTasksWithSubtasks)
	assert.False(t, ok)
}

func TestEventsAreEmitted(t *testing.T) {
	c := New()
	SetList(c, KeyTasks, tasks(1))
	c.Invalidate(KeyTasks)
	c.Remove(KeyTasks)

	var actions []Action
	for i := 0; i < 3; i++ {
		select {
		case ev := <-c.Events():
			assert.Equal(t, KeyTasks, ev.Key)
			actions = append(actions, ev.Action)
		case <-time.After(time.Second):
			t.Fatalf("missing event %d", i)
		}
	}
	assert.Equal(t, []Action{ActionSet, ActionInvalidate, ActionRemove}, actions)

	c.Close()
	c.Set(KeyTasks, nil)
}

func TestLoaderEnsureDedupes(t *testing.T) {
	c := New()
	l := NewLoader(c)

	var calls atomic.Int32
	release := make(chan struct{})
	l.Register(KeyTasks, func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return tasks(1, 2), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := EnsureList[entity.Task](context.Background(), l, KeyTasks)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.IsStale(KeyTasks))

	_, err := l.Ensure(context.Background(), KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	c.Invalidate(KeyTasks)
	_, err = l.Ensure(context.Background(), KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoaderResolverAndErrors(t *testing.T) {
	c := New()
	l := NewLoader(c)
	l.RegisterResolver(func(key Key) (FetchFunc, bool) {
		id, ok := ParseSubtasksKey(key)
		if !ok {
			return nil, false
		}
		return func(ctx context.Context) (any, error) {
			return []entity.Subtask{{ID: 1, TaskID: id}}, nil
		}, true
	})

	subs, err := EnsureList[entity.Subtask](context.Background(), l, SubtasksKey(5))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, entity.ID(5), subs[0].TaskID)

	_, err = l.Ensure(context.Background(), KeyMeetings)
	assert.Error(t, err)

	boom := errors.New("boom")
	l.Register(KeyMeetings, func(ctx context.Context) (any, error) { return nil, boom })
	_, err = l.Ensure(context.Background(), KeyMeetings)
	assert.ErrorIs(t, err, boom)
}

type offlineErr struct{}

func (offlineErr) Error() string   { return "connection refused" }
func (offlineErr) Retryable() bool { return true }

func TestLoaderServesStaleWhenOffline(t *testing.T) {
	c := New()
	l := NewLoader(c)
	c.Seed(KeyTasks, tasks(1, 2))
	l.Register(KeyTasks, func(ctx context.Context) (any, error) { return nil, offlineErr{} })

	got, err := EnsureList[entity.Task](context.Background(), l, KeyTasks)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = l.Refresh(context.Background(), KeyTasks)
	assert.Error(t, err, "an explicit refresh still reports the failure")

	l.Register(KeyMeetings, func(ctx context.Context) (any, error) { return nil, offlineErr{} })
	_, err = l.Ensure(context.Background(), KeyMeetings)
	assert.Error(t, err, "nothing cached to fall back to")
}

func TestRevertUndoesOnlyUntouchedItems(t *testing.T) {
	c := New()
	SetList(c, KeyTasks, tasks(1, 2, 3))
	before := c.Snapshot(KeyTasks)

	PatchItem(c, KeyTasks, 1, func(t entity.Task) entity.Task {
		t.Completed = true
		return t
	})
	RemoveItem[entity.Task](c, KeyTasks, 2)
	UpsertItem(c, KeyTasks, entity.Task{ID: 9, Title: "draft"})
	after := c.Snapshot(KeyTasks)

	// Another writer lands on task 3 and on the draft.
	ReplaceItem(c, KeyTasks, entity.Task{ID: 3, Title: "server 3", Completed: true})
	ReplaceItem(c, KeyTasks, entity.Task{ID: 9, Title: "server 9"})

	require.True(t, c.Revert(KeyTasks, before, after))

	got, _ := List[entity.Task](c, KeyTasks)
	require.Len(t, got, 4)
	assert.Equal(t, entity.Task{ID: 1, Title: "task 1"}, got[0])
	assert.Equal(t, entity.Task{ID: 2, Title: "task 2"}, got[1])
	assert.Equal(t, "server 3", got[2].Title)
	assert.Equal(t, "server 9", got[3].Title)
}

func TestRevertDropsUntouchedInsert(t *testing.T) {
	c := New()
	SetList(c, KeyTasks, tasks(1))
	before := c.Snapshot(KeyTasks)
	UpsertItem(c, KeyTasks, entity.Task{ID: 5, Title: "draft"})
	after := c.Snapshot(KeyTasks)

	require.True(t, c.Revert(KeyTasks, before, after))
	got, _ := List[entity.Task](c, KeyTasks)
	assert.Equal(t, tasks(1), got)

	assert.False(t, c.Revert(KeyTasks, before, after), "nothing left to undo")
	assert.False(t, c.Revert(KeyAppointments, before, after))
}

func TestSnapshotWithoutLeavesKeysAlone(t *testing.T) {
	c := New()
	SetList(c, KeyTasks, tasks(1))
	SetList(c, KeyAppointments, []entity.Appointment{{ID: 1}})
	snap := c.Snapshot(KeyTasks, KeyAppointments)

	SetList(c, KeyTasks, tasks(1, 2))
	SetList(c, KeyAppointments, []entity.Appointment{{ID: 1}, {ID: 2}})
	c.Restore(snap.Without(KeyAppointments))

	gotTasks, _ := List[entity.Task](c, KeyTasks)
	gotAppts, _ := List[entity.Appointment](c, KeyAppointments)
	assert.Equal(t, tasks(1), gotTasks)
	assert.Len(t, gotAppts, 2)
	assert.ElementsMatch(t, []Key{KeyTasks, KeyAppointments}, snap.Keys())
}
