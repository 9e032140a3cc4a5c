// Package recording captures haptic loop samples into a small pool of
// in-memory buffers. The loop appends frames while a recording is active;
// stopping hands the finished buffer to the caller and rotates the pool.
package recording

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/haptics/internal/status"
)

// PoolSize is the number of buffers the recorder rotates through.
const PoolSize = 2

// Options selects what frames carry.
type Options struct {
	// DeviceCoordinates records raw device values instead of caller frame
	// values.
	DeviceCoordinates bool  `json:"device_coordinates" yaml:"device_coordinates"`
	Position          bool  `json:"position" yaml:"position"`
	Velocity          bool  `json:"velocity" yaml:"velocity"`
	Force             bool  `json:"force" yaml:"force"`
	InteractionForces bool  `json:"interaction_forces" yaml:"interaction_forces"`
	Objects           []int `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// DefaultOptions records position, velocity and force in caller
// coordinates.
func DefaultOptions() Options {
	return Options{Position: true, Velocity: true, Force: true}
}

// Interaction is the force one object applied to the tool.
type Interaction struct {
	Object int        `json:"object"`
	Force  [3]float64 `json:"force"`
}

// Frame is one recorded sample.
type Frame struct {
	Timestamp    int64 // ms since the Unix epoch
	Ticks        uint32
	Position     [3]float64
	Velocity     [3]float64
	Force        [3]float64
	Interactions []Interaction
	Note         string
}

// AutoNote marks frames appended by the loop rather than by Annotate.
const AutoNote = "auto"

// Buffer is one recording.
type Buffer struct {
	ID           uuid.UUID
	Started      time.Time
	SamplingRate int
	Options      Options
	Frames       []Frame
}

// Recorder owns the buffer pool. Start, Stop and Configure come from the
// host; ShouldSample and Append come from the haptic loop.
type Recorder struct {
	mu      sync.Mutex
	active  atomic.Bool
	rate    atomic.Int64
	index   atomic.Int32
	slots   [PoolSize]*Buffer
	current *Buffer
	opts    Options
	now     func() time.Time
}

// New returns an idle recorder using now for buffer start times.
func New(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	r := &Recorder{opts: DefaultOptions(), now: now}
	r.rate.Store(1)
	return r
}

// Configure replaces the recording options and resets the sampling rate
// to 1. It applies to the next Start.
func (r *Recorder) Configure(opts Options) {
	opts.Objects = append([]int(nil), opts.Objects...)
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()
	r.rate.Store(1)
}

// Options returns the current options.
func (r *Recorder) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.opts
	o.Objects = append([]int(nil), o.Objects...)
	return o
}

// Start begins a recording that keeps every samplingRate-th loop.
func (r *Recorder) Start(samplingRate int) error {
	if samplingRate <= 0 {
		return status.SamplingTooSmall
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active.Load() {
		return status.AlreadyRecording
	}

	buf := &Buffer{
		ID:           uuid.New(),
		Started:      r.now(),
		SamplingRate: samplingRate,
		Options:      r.opts,
	}
	r.slots[r.index.Load()] = buf
	r.current = buf
	r.rate.Store(int64(samplingRate))
	r.active.Store(true)
	return nil
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	return r.active.Load()
}

// SamplingRate returns the rate of the current or last recording.
func (r *Recorder) SamplingRate() int {
	return int(r.rate.Load())
}

// ShouldSample reports whether loop iteration loop is to be recorded.
func (r *Recorder) ShouldSample(loop int64) bool {
	return r.active.Load() && loop%r.rate.Load() == 0
}

// Append adds a frame to the current recording. Frames arriving after Stop
// are dropped.
func (r *Recorder) Append(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active.Load() {
		return
	}
	r.current.Frames = append(r.current.Frames, f)
}

// Annotate adds a frame carrying a note.
func (r *Recorder) Annotate(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active.Load() {
		return status.NotRecording
	}
	r.current.Frames = append(r.current.Frames, f)
	return nil
}

// FrameCount returns the number of frames recorded so far, or -1 when not
// recording.
func (r *Recorder) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active.Load() {
		return -1
	}
	return len(r.current.Frames)
}

// Stop ends the recording and returns its buffer. The pool slot is released
// and the next recording uses the following slot.
func (r *Recorder) Stop() (*Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active.Load() {
		return nil, status.NotRecording
	}
	r.active.Store(false)

	prev := r.index.Load()
	r.index.Store((prev + 1) % PoolSize)
	buf := r.slots[prev]
	r.slots[prev] = nil
	r.current = nil
	return buf, nil
}

// Slot returns the pool index the next recording will use.
func (r *Recorder) Slot() int {
	return int(r.index.Load())
}
