// Package schedule provides cancellable periodic and delayed callbacks.
//
// Playback progress uses [Scheduler.Every]; staged reveal uses [Scheduler.After].
// Every registration returns a [Cancel] so owners can tear down deterministically.
// [Manual] is a deterministic implementation for tests.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// Scheduler registers callbacks on a clock.
type Scheduler interface {
	// Every calls fn every d until cancelled.
	Every(d time.Duration, fn func()) Cancel
	// After calls fn once after d unless cancelled first.
	After(d time.Duration, fn func()) Cancel
}

// Real schedules on the wall clock.
type Real struct{}

// New returns a wall-clock [Scheduler].
func New() Scheduler { return Real{} }

func (Real) Every(d time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (Real) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Manual is a [Scheduler] driven by [Manual.Advance]. Callbacks run on the caller's goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers map[int]*manualTimer
}

type manualTimer struct {
	id     int
	due    time.Duration
	period time.Duration // zero for one-shot
	fn     func()
}

func NewManual() *Manual {
	return &Manual{timers: make(map[int]*manualTimer)}
}

func (m *Manual) Every(d time.Duration, fn func()) Cancel {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) After(d time.Duration, fn func()) Cancel {
	return m.add(d, 0, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.timers[id] = &manualTimer{id: id, due: m.now + d, period: period, fn: fn}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.timers, id)
	}
}

// Advance moves the clock forward by d, firing due callbacks in due order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.period > 0 {
			next.due += next.period
		} else {
			delete(m.timers, next.id)
		}
		fn := next.fn
		m.mu.Unlock()

		fn()
	}
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})
	return due[0]
}

// Pending returns the number of registered callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Now returns the manual clock's elapsed time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
