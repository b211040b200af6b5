// Package loop is the cooperative scheduler the editor widgets run on.
//
// Everything an editor does happens on one goroutine, the host's UI loop.
// Work that must wait for the current transaction to settle is queued as a
// microtask with Defer; the editor drains that queue at the end of every
// entrypoint (key press, dispatch, pointer event). Work that needs wall-clock
// delay is a timer, which the host fires by calling RunDue from its own
// tick. Nothing here is safe for concurrent use.
package loop

import (
	"sort"
	"time"
)

// Clock reports the current time. Hosts use SystemClock; tests use a
// ManualClock so timers fire deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type timer struct {
	seq       uint64
	at        time.Time
	fn        func()
	cancelled bool
}

// Scheduler holds the microtask queue and pending timers of one editor.
type Scheduler struct {
	clock    Clock
	micro    []func()
	timers   []*timer
	seq      uint64
	draining bool
}

// New returns a scheduler reading time from clock. A nil clock means
// SystemClock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock
	}
	return &Scheduler{clock: clock}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Defer queues fn to run once the current entrypoint has finished.
func (s *Scheduler) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.micro = append(s.micro, fn)
}

// RunMicrotasks drains the microtask queue, including tasks queued while
// draining, and returns how many ran. Nested calls are no-ops so a task that
// re-enters the editor does not run its successors out of order.
func (s *Scheduler) RunMicrotasks() int {
	if s.draining {
		return 0
	}
	s.draining = true
	defer func() { s.draining = false }()
	n := 0
	for len(s.micro) > 0 {
		fn := s.micro[0]
		s.micro = s.micro[1:]
		fn()
		n++
	}
	return n
}

// After schedules fn to run d after now. The returned func cancels the
// timer; calling it after the timer fired does nothing.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	s.seq++
	t := &timer{seq: s.seq, at: s.clock.Now().Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

// RunDue fires every timer due at or before now, earliest first, draining
// microtasks after each one. It returns the number of timers fired.
func (s *Scheduler) RunDue(now time.Time) int {
	fired := 0
	for {
		t := s.popDue(now)
		if t == nil {
			break
		}
		t.fn()
		fired++
		s.RunMicrotasks()
	}
	return fired
}

func (s *Scheduler) popDue(now time.Time) *timer {
	s.compact()
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at.Equal(s.timers[j].at) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at.Before(s.timers[j].at)
	})
	first := s.timers[0]
	if first.at.After(now) {
		return nil
	}
	s.timers = s.timers[1:]
	return first
}

func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.timers = live
}

// Next reports when the earliest pending timer is due.
func (s *Scheduler) Next() (time.Time, bool) {
	s.compact()
	if len(s.timers) == 0 {
		return time.Time{}, false
	}
	next := s.timers[0].at
	for _, t := range s.timers[1:] {
		if t.at.Before(next) {
			next = t.at
		}
	}
	return next, true
}

// Pending returns the number of live timers plus queued microtasks.
func (s *Scheduler) Pending() int {
	s.compact()
	return len(s.timers) + len(s.micro)
}

// Stop drops every pending timer and microtask.
func (s *Scheduler) Stop() {
	for _, t := range s.timers {
		t.cancelled = true
	}
	s.timers = nil
	s.micro = nil
}
