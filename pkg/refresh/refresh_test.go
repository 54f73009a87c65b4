package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/cache"
)

func TestRefreshStaleOnlyTouchesStaleKnownKeys(t *testing.T) {
	c := cache.New()
	l := cache.NewLoader(c)
	var fetches atomic.Int32
	l.Register(cache.KeyTasks, func(context.Context) (any, error) {
		fetches.Add(1)
		return []string{"fresh"}, nil
	})
	l.Register(cache.KeyMeetings, func(context.Context) (any, error) {
		return nil, errors.New("offline")
	})

	c.Set(cache.KeyTasks, []string{"old"})
	c.Set(cache.KeyMeetings, []string{"old"})
	c.Set("unregistered", 1)
	c.Invalidate(cache.KeyTasks, cache.KeyMeetings, "unregistered")

	r := New(l, c, time.UTC)
	results := r.RefreshStale(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, int32(1), fetches.Load())
	assert.False(t, c.IsStale(cache.KeyTasks))
	assert.True(t, c.IsStale(cache.KeyMeetings))

	for _, res := range results {
		if res.Key == cache.KeyMeetings {
			assert.Error(t, res.Err)
		}
	}
}

func TestEveryRejectsNonPositive(t *testing.T) {
	r := New(cache.NewLoader(cache.New()), cache.New(), nil)
	_, err := r.Every(0)
	assert.Error(t, err)
}

func TestScheduledPassRuns(t *testing.T) {
	c := cache.New()
	l := cache.NewLoader(c)
	l.Register(cache.KeySettings, func(context.Context) (any, error) { return "ok", nil })
	c.Set(cache.KeySettings, "stale")
	c.Invalidate(cache.KeySettings)

	done := make(chan []Result, 1)
	r := New(l, c, time.UTC, OnPass(func(res []Result) {
		select {
		case done <- res:
		default:
		}
	}))
	_, err := r.Every(time.Second)
	require.NoError(t, err)
	r.Start()
	defer r.Stop()

	select {
	case res := <-done:
		require.Len(t, res, 1)
		assert.Equal(t, cache.KeySettings, res[0].Key)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for scheduled refresh")
	}
}

func TestScheduleCronSpec(t *testing.T) {
	c := cache.New()
	l := cache.NewLoader(c)
	l.Register(cache.KeySettings, func(context.Context) (any, error) { return "ok", nil })
	c.Set(cache.KeySettings, "stale")
	c.Invalidate(cache.KeySettings)

	r := New(l, c, time.UTC, OnPass(func([]Result) {}))
	_, err := r.Schedule("not a schedule")
	assert.Error(t, err)

	_, err = r.Schedule("* * * * * *")
	require.NoError(t, err)
	r.Start()
	defer r.Stop()

	assert.Eventually(t, func() bool { return !c.IsStale(cache.KeySettings) }, 3*time.Second, 50*time.Millisecond)
}
