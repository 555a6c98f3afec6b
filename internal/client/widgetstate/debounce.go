package widgetstate

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock { return realClock{} }

// Debouncer delays a call until no new value has been scheduled for the
// wait period; only the latest value is delivered.
//
// Each scheduled value is delivered at most once, either by the timer, by
// Flush, or not at all after Cancel.
type Debouncer[T any] struct {
	mu      sync.Mutex
	clock   Clock
	wait    time.Duration
	fire    func(T)
	timer   Timer
	value   T
	pending bool
	gen     uint64
}

func NewDebouncer[T any](clock Clock, wait time.Duration, fire func(T)) *Debouncer[T] {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer[T]{clock: clock, wait: wait, fire: fire}
}

// Schedule replaces the pending value with v and restarts the wait.
func (d *Debouncer[T]) Schedule(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.value = v
	d.pending = true
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.expire(gen) })
}

// Flush delivers the pending value now, on the calling goroutine. It
// reports whether there was anything to deliver.
func (d *Debouncer[T]) Flush() bool {
	v, ok := d.take()
	if ok {
		d.fire(v)
	}
	return ok
}

// Cancel drops the pending value without delivering it.
func (d *Debouncer[T]) Cancel() {
	d.take()
}

// Pending returns the value waiting to be delivered.
func (d *Debouncer[T]) Pending() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.pending
}

func (d *Debouncer[T]) take() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.pending {
		return zero, false
	}
	d.stopLocked()
	v := d.value
	d.value = zero
	d.pending = false
	d.gen++
	return v, true
}

func (d *Debouncer[T]) expire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	var zero T
	v := d.value
	d.value = zero
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fire(v)
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
