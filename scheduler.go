package main

import (
	"sort"
	"time"
)

// TimerID identifies a scheduled event
type TimerID uint64

// Scheduler defers work to a later simulated time. Callbacks run on the
// goroutine that advances the scheduler, never concurrently.
type Scheduler interface {
	After(delay time.Duration, fn func()) TimerID
	Cancel(id TimerID) bool
}

type scheduledEvent struct {
	id  TimerID
	due time.Duration
	fn  func()
}

// TickScheduler is a Scheduler driven by explicit Advance calls from a game
// loop. Events fire in due order; ties fire in scheduling order.
type TickScheduler struct {
	now    time.Duration
	nextID TimerID
	events []scheduledEvent
}

// NewTickScheduler creates an empty scheduler at time zero
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Now returns the simulated time elapsed since creation
func (s *TickScheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of events not yet fired
func (s *TickScheduler) Pending() int {
	return len(s.events)
}

// After schedules fn to run once delay has elapsed
func (s *TickScheduler) After(delay time.Duration, fn func()) TimerID {
	if delay < 0 {
		delay = 0
	}
	s.nextID++
	ev := scheduledEvent{id: s.nextID, due: s.now + delay, fn: fn}
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].due > ev.due
	})
	s.events = append(s.events, scheduledEvent{})
	copy(s.events[i+1:], s.events[i:])
	s.events[i] = ev
	return ev.id
}

// Cancel removes a pending event. Returns false if it already fired.
func (s *TickScheduler) Cancel(id TimerID) bool {
	for i, ev := range s.events {
		if ev.id == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves time forward by dt and runs every event that became due.
// Returns the number of events fired.
func (s *TickScheduler) Advance(dt time.Duration) int {
	s.now += dt
	fired := 0
	for len(s.events) > 0 && s.events[0].due <= s.now {
		ev := s.events[0]
		s.events = s.events[1:]
		fired++
		if ev.fn != nil {
			ev.fn()
		}
	}
	return fired
}

// seconds converts float seconds from config into a Duration
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
