package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single callback after a quiescence
// window. Every Trigger supersedes the pending one, so at most one callback is
// in flight per debouncer. The generation token handed to the callback lets a
// slow completion prove whether it is still the current one before applying
// its result.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	gen    uint64
}

func New(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn to run once the quiescence window elapses without
// another Trigger or Cancel. fn receives the generation current at schedule
// time and runs on the timer goroutine.
func (d *Debouncer) Trigger(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		fn(gen)
	})

	return gen
}

// Cancel drops any pending run and invalidates every outstanding generation.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Live reports whether gen is still the most recently scheduled generation.
// A callback whose generation is no longer live must discard its result.
func (d *Debouncer) Live(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return gen == d.gen
}
