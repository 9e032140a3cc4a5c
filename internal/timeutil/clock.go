// Package timeutil paces the haptic loop against a replaceable time source.
package timeutil

import (
	"sync"
	"time"
)

// Clock is the time source of the haptic loop.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (RealClock) Sleep(d time.Duration)           { time.Sleep(d) }

// Pace sleeps for whatever is left of period after a tick that began at
// start. It returns the duration slept, zero when the tick overran or
// period is not positive.
func Pace(c Clock, start time.Time, period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	rest := period - c.Since(start)
	if rest <= 0 {
		return 0
	}
	c.Sleep(rest)
	return rest
}

// MockClock only moves when told to. Sleep does not block; it moves the
// clock forward, so a loop paced by a MockClock sees exact tick periods.
type MockClock struct {
	mu     sync.Mutex
	at     time.Time
	sleeps int
	slept  time.Duration
}

func NewMockClock(at time.Time) *MockClock {
	return &MockClock{at: at}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at
}

func (m *MockClock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Advance moves the clock forward by d without counting as a sleep. Tests
// use it to model time spent inside a tick.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.at = m.at.Add(d)
	m.mu.Unlock()
}

func (m *MockClock) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps++
	if d <= 0 {
		return
	}
	m.at = m.at.Add(d)
	m.slept += d
}

// Sleeps reports the number of Sleep calls and their total duration.
func (m *MockClock) Sleeps() (int, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeps, m.slept
}
