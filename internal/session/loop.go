package session

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/scene"
	"github.com/banshee-data/haptics/internal/timeutil"
)

// frequencyCounter estimates the loop rate over one second windows.
type frequencyCounter struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
	hz          atomic.Uint64 // math.Float64bits
}

const frequencyWindow = time.Second

func (f *frequencyCounter) reset(now time.Time) {
	f.mu.Lock()
	f.windowStart = now
	f.count = 0
	f.mu.Unlock()
	f.hz.Store(0)
}

func (f *frequencyCounter) signal(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	if elapsed := now.Sub(f.windowStart); elapsed >= frequencyWindow {
		f.hz.Store(math.Float64bits(float64(f.count) / elapsed.Seconds()))
		f.windowStart = now
		f.count = 0
	}
}

func (f *frequencyCounter) frequency() float64 {
	return math.Float64frombits(f.hz.Load())
}

// loopStats keeps the most recent tick periods.
type loopStats struct {
	mu      sync.Mutex
	samples []float64 // seconds
	next    int
	last    time.Time
}

const loopStatsSamples = 1000

func (l *loopStats) reset() {
	l.mu.Lock()
	l.samples = l.samples[:0]
	l.next = 0
	l.last = time.Time{}
	l.mu.Unlock()
}

func (l *loopStats) observe(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.last.IsZero() {
		d := now.Sub(l.last).Seconds()
		if len(l.samples) < loopStatsSamples {
			l.samples = append(l.samples, d)
		} else {
			l.samples[l.next] = d
			l.next = (l.next + 1) % loopStatsSamples
		}
	}
	l.last = now
}

// LoopStats summarises recent tick periods.
type LoopStats struct {
	Samples int
	Mean    time.Duration
	StdDev  time.Duration
}

func (l *loopStats) summary() LoopStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.samples) == 0 {
		return LoopStats{}
	}
	mean, std := stat.MeanStdDev(l.samples, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return LoopStats{
		Samples: len(l.samples),
		Mean:    time.Duration(mean * float64(time.Second)),
		StdDev:  time.Duration(std * float64(time.Second)),
	}
}

// recTarget is an object whose interaction force is recorded.
type recTarget struct {
	id   int
	node *scene.Node
}

func (s *Session) run(ready, done chan struct{}) {
	defer close(done)

	s.worldMu.Lock()
	s.tool.SetForcesOn()
	s.worldMu.Unlock()

	s.stopped.Store(false)
	close(ready)

	for s.running.Load() {
		start := s.clock.Now()
		s.tick(start)
		timeutil.Pace(s.clock, start, s.period)
	}

	s.worldMu.Lock()
	if err := s.tool.SetForcesOff(); err != nil {
		s.throttle.Logf(s.clock.Now(), "turning forces off failed: %v", err)
	}
	s.worldMu.Unlock()
	s.stopped.Store(true)
}

// tick runs one iteration of the haptic pipeline.
func (s *Session) tick(now time.Time) {
	s.freq.signal(now)
	s.stats.observe(now)
	loop := s.loops.Add(1)

	updates := s.objects.Step()

	var hookForce mgl64.Vec3
	s.hookMu.Lock()
	if s.hook != nil {
		c := s.cached()
		p := c.position
		if s.hookUseProxy {
			p = c.proxy
		}
		hookForce = s.hook.ComputeForce(p, c.velocity)
	}
	s.hookMu.Unlock()

	var sample *recording.Frame
	s.worldMu.Lock()
	for _, u := range updates {
		if u.Pose.HasPosition {
			u.Node.SetPosition(u.Pose.Position)
		}
		if u.Pose.HasRotation {
			u.Node.SetRotation(u.Pose.Rotation)
		}
	}
	s.world.ComputeGlobalPositions(len(updates) > 0)
	if err := s.tool.UpdateFromDevice(); err != nil {
		s.throttle.Logf(now, "device read failed: %v", err)
	}
	s.tool.ComputeInteractionForces()
	s.tool.AddForce(s.frame.VectorToEngine(hookForce))
	if err := s.tool.ApplyToDevice(); err != nil {
		s.throttle.Logf(now, "device write failed: %v", err)
	}
	s.refreshCache()
	if s.rec.ShouldSample(loop) {
		f := s.sample(now, recording.AutoNote)
		sample = &f
	}
	s.worldMu.Unlock()

	if sample != nil {
		s.rec.Append(*sample)
	}
}

// refreshCache converts the tool state into caller coordinates. Callers
// hold the world lock.
func (s *Session) refreshCache() {
	c := toolCache{
		position: s.frame.PositionToCaller(s.tool.Position()),
		proxy:    s.frame.PositionToCaller(s.tool.Proxy()),
		velocity: s.frame.VectorToCaller(s.tool.Velocity()),
		rotation: s.frame.RotationToCaller(s.tool.Rotation()),
		force:    s.frame.VectorToCaller(s.tool.Force()),
		buttons:  s.tool.DeviceState().Buttons,
	}
	s.cacheMu.Lock()
	s.cache = c
	s.cacheMu.Unlock()
}

func (s *Session) cached() toolCache {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache
}

// sample builds a recording frame. Callers hold the world lock.
func (s *Session) sample(now time.Time, note string) recording.Frame {
	opts := s.rec.Options()
	f := recording.Frame{
		Timestamp: now.UnixMilli(),
		Ticks:     s.ticks.Load(),
		Note:      note,
	}

	var pos, vel, force mgl64.Vec3
	if opts.DeviceCoordinates {
		st := s.tool.DeviceState()
		pos, vel, force = st.Position, st.Velocity, s.tool.Force()
	} else {
		c := s.cached()
		pos, vel, force = c.position, c.velocity, c.force
	}
	if opts.Position {
		f.Position = pos
	}
	if opts.Velocity {
		f.Velocity = vel
	}
	if opts.Force {
		f.Force = force
	}

	if opts.InteractionForces {
		f.Interactions = make([]recording.Interaction, 0, len(s.recTargets))
		for _, t := range s.recTargets {
			cf := t.node.ContactForce()
			if !opts.DeviceCoordinates {
				cf = s.frame.VectorToCaller(cf)
			}
			f.Interactions = append(f.Interactions, recording.Interaction{Object: t.id, Force: cf})
		}
	}
	return f
}

// LoopFrequency returns the loop rate in Hz, or -1 when not running.
func (s *Session) LoopFrequency() float64 {
	if !s.running.Load() {
		return -1
	}
	return s.freq.frequency()
}

// Loops returns the number of ticks since Start, or -1 when not running.
func (s *Session) Loops() int64 {
	if !s.running.Load() {
		return -1
	}
	return s.loops.Load()
}

// LoopStats returns statistics over the most recent tick periods.
func (s *Session) LoopStats() LoopStats {
	return s.stats.summary()
}
