package loop

import "time"

// DefaultDebounce is how long trigger detection waits after the last editor
// event before reading derived state.
const DefaultDebounce = 10 * time.Millisecond

// Debouncer collapses a burst of Trigger calls into one run of the last
// function, delay after the final call.
type Debouncer struct {
	sched  *Scheduler
	delay  time.Duration
	cancel func()
	fn     func()
}

// NewDebouncer returns a debouncer on sched. A non-positive delay means
// DefaultDebounce.
func NewDebouncer(sched *Scheduler, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger (re)arms the debouncer with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.Cancel()
	d.fn = fn
	d.cancel = d.sched.After(d.delay, func() {
		d.cancel, d.fn = nil, nil
		fn()
	})
}

// Flush runs the pending function now instead of waiting out the delay. It
// reports whether there was one to run.
func (d *Debouncer) Flush() bool {
	fn := d.fn
	if fn == nil {
		return false
	}
	d.Cancel()
	fn()
	return true
}

// Cancel drops the pending run, if any.
func (d *Debouncer) Cancel() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.fn = nil
}

// Pending reports whether a run is armed.
func (d *Debouncer) Pending() bool {
	return d.cancel != nil
}

// Delay returns the debounce window.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
