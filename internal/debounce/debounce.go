// Package debounce coalesces bursts of calls into one trailing call.
package debounce

import (
	"sync"
	"time"
)

type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// Debouncer delays an action until calls stop arriving for the configured
// delay, then applies it once with the last value. At most one execution is
// pending at a time.
type Debouncer[T any] struct {
	delay  time.Duration
	action func(T)
	clock  Clock

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// New wraps action. A delay of zero or less makes Schedule call action
// synchronously on every call.
func New[T any](delay time.Duration, action func(T), opts ...Option) *Debouncer[T] {
	o := options{clock: realClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Debouncer[T]{delay: delay, action: action, clock: o.clock}
}

func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Schedule replaces any pending execution with one for v, due after the
// delay.
func (d *Debouncer[T]) Schedule(v T) {
	if d.delay <= 0 {
		d.action(v)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen, v) })
}

// Cancel drops the pending execution, if any. Call it on teardown.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// stopLocked stops the timer and bumps the generation so a callback that
// already started cannot apply its value.
func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.action(v)
}
