package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestRealClockSleepsAtLeast(t *testing.T) {
	var c RealClock
	start := c.Now()
	c.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, c.Since(start), 2*time.Millisecond)
}

func TestMockClock(t *testing.T) {
	c := NewMockClock(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(time.Second)
	assert.Equal(t, time.Second, c.Since(epoch))

	c.Sleep(250 * time.Millisecond)
	c.Sleep(0)
	n, total := c.Sleeps()
	assert.Equal(t, 2, n)
	assert.Equal(t, 250*time.Millisecond, total)
	assert.Equal(t, 1250*time.Millisecond, c.Since(epoch))
}

func TestPace(t *testing.T) {
	tests := []struct {
		name   string
		work   time.Duration
		period time.Duration
		want   time.Duration
	}{
		{"sleeps the remainder", 300 * time.Microsecond, time.Millisecond, 700 * time.Microsecond},
		{"overrun", 2 * time.Millisecond, time.Millisecond, 0},
		{"exact", time.Millisecond, time.Millisecond, 0},
		{"unpaced", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewMockClock(epoch)
			start := c.Now()
			c.Advance(tt.work)

			assert.Equal(t, tt.want, Pace(c, start, tt.period))

			n, _ := c.Sleeps()
			if tt.want > 0 {
				assert.Equal(t, 1, n)
				assert.Equal(t, tt.period, c.Since(start))
			} else {
				assert.Zero(t, n)
			}
		})
	}
}
