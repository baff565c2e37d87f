package service

import (
	"sync"
	"time"
)

// Debouncer coalesces calls per key. Only the last function pushed for a key
// within the quiet window runs.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*debounced
}

type debounced struct {
	timer *time.Timer
	gen   uint64
	fn    func()
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*debounced),
	}
}

// Push schedules fn for key, replacing anything queued for it.
func (d *Debouncer) Push(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.pending[key]
	if !ok {
		entry = &debounced{}
		d.pending[key] = entry
	} else {
		entry.timer.Stop()
	}

	entry.gen++
	entry.fn = fn
	gen := entry.gen
	entry.timer = time.AfterFunc(d.delay, func() {
		d.fire(key, gen)
	})
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	entry, ok := d.pending[key]
	if !ok || entry.gen != gen {
		// Replaced or flushed after the timer fired.
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	fn := entry.fn
	d.mu.Unlock()

	fn()
}

// Cancel drops queued work for key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.pending[key]; ok {
		entry.timer.Stop()
		delete(d.pending, key)
	}
}

// Flush runs all queued work now, on the calling goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, entry := range d.pending {
		entry.timer.Stop()
		fns = append(fns, entry.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
