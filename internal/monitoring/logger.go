// Package monitoring holds the diagnostic logger shared by the haptic
// session, the recorder and the device adapters.
package monitoring

import (
	"log"
	"sync"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes logging.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Throttle forwards to Logf at most once per interval and counts the
// messages it swallowed in between. The haptic loop runs at ~1kHz, so a
// persistent device fault would otherwise emit a line per tick.
type Throttle struct {
	Interval time.Duration

	mu         sync.Mutex
	last       time.Time
	suppressed int
}

// Logf logs the message if the interval has elapsed since the last emitted
// line. It reports whether the message was emitted.
func (t *Throttle) Logf(now time.Time, format string, v ...interface{}) bool {
	t.mu.Lock()
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		t.suppressed++
		t.mu.Unlock()
		return false
	}
	suppressed := t.suppressed
	t.suppressed = 0
	t.last = now
	t.mu.Unlock()

	if suppressed > 0 {
		Logf(format+" (%d similar messages suppressed)", append(v, suppressed)...)
	} else {
		Logf(format, v...)
	}
	return true
}
