package mutation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerKeepsLastCall(t *testing.T) {
	d := NewDebouncer()
	var last atomic.Value
	done := make(chan struct{}, 4)

	for _, title := range []string{"B", "Bu", "Buy"} {
		title := title
		d.Schedule("subtask/1", 20*time.Millisecond, func() {
			last.Store(title)
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("debounced call never ran")
	}
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, "Buy", last.Load())
	assert.Len(t, done, 0)
}

func TestDebouncerFlushAndCancel(t *testing.T) {
	d := NewDebouncer()
	var calls atomic.Int32

	d.Schedule("a", time.Hour, func() { calls.Add(1) })
	assert.True(t, d.Pending("a"))
	assert.True(t, d.Flush("a"))
	assert.False(t, d.Flush("a"))
	assert.Equal(t, int32(1), calls.Load())

	d.Schedule("b", time.Hour, func() { calls.Add(1) })
	assert.True(t, d.Cancel("b"))
	assert.False(t, d.Pending("b"))

	d.Schedule("c", time.Hour, func() { calls.Add(1) })
	d.Schedule("d", time.Hour, func() { calls.Add(1) })
	d.FlushAll()
	assert.Equal(t, int32(3), calls.Load())

	d.Stop()
	d.Schedule("e", time.Millisecond, func() { calls.Add(1) })
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}
