package mutation

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a coalesced edit is sent.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces repeated calls per key so only the last one runs
// after a quiet period.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*debounced
	stopped bool
}

type debounced struct {
	timer *time.Timer
	fn    func()
}

func NewDebouncer() *Debouncer {
	return &Debouncer{pending: make(map[string]*debounced)}
}

// Schedule replaces any pending call for key with fn and restarts the timer.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	call := &debounced{fn: fn}
	call.timer = time.AfterFunc(delay, func() { d.fire(key, call) })
	d.pending[key] = call
}

func (d *Debouncer) fire(key string, call *debounced) {
	d.mu.Lock()
	if d.pending[key] != call {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	call.fn()
}

// Flush runs the pending call for key now. It reports whether one existed.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	call, ok := d.pending[key]
	if ok {
		call.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()
	if ok {
		call.fn()
	}
	return ok
}

// FlushAll runs every pending call.
func (d *Debouncer) FlushAll() {
	d.mu.Lock()
	calls := make([]*debounced, 0, len(d.pending))
	for key, call := range d.pending {
		call.timer.Stop()
		calls = append(calls, call)
		delete(d.pending, key)
	}
	d.mu.Unlock()
	for _, call := range calls {
		call.fn()
	}
}

// Cancel drops the pending call for key.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	call, ok := d.pending[key]
	if ok {
		call.timer.Stop()
		delete(d.pending, key)
	}
	return ok
}

// Pending reports whether a call is waiting for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop drops every pending call and refuses new ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
}
