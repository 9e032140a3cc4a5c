// Package session owns one haptic device, its world and the real-time loop
// that drives them.
//
// Locks are taken in the order registry → hook → world → recorder. The
// transform frame and the tool state cache are leaves: nothing else is
// locked while they are held.
package session

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/device"
	"github.com/banshee-data/haptics/internal/device/sim"
	"github.com/banshee-data/haptics/internal/fsutil"
	"github.com/banshee-data/haptics/internal/monitoring"
	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/registry"
	"github.com/banshee-data/haptics/internal/scene"
	"github.com/banshee-data/haptics/internal/status"
	"github.com/banshee-data/haptics/internal/timeutil"
	"github.com/banshee-data/haptics/internal/transform"
)

// DefaultLoopPeriod is the target duration of one haptic tick.
const DefaultLoopPeriod = time.Millisecond

// Options configures a Session. Zero values select defaults.
type Options struct {
	// Devices enumerates the devices Initialize may pick from. Defaults to a
	// handler holding only the simulated device.
	Devices *device.Handler
	// Clock paces the loop and stamps recordings.
	Clock timeutil.Clock
	// LoopPeriod is the target tick duration. Negative free-runs.
	LoopPeriod time.Duration
	// StartTimeout and StopTimeout bound how long Start and Stop wait for
	// the loop. Zero waits indefinitely.
	StartTimeout time.Duration
	StopTimeout  time.Duration
	// FS receives recording and mesh exports.
	FS fsutil.FileSystem
	// OutputDir, when set, confines export paths to that directory.
	OutputDir string
}

// Session is one haptic context. The zero value is not usable; call New.
type Session struct {
	devices      *device.Handler
	clock        timeutil.Clock
	period       time.Duration
	startTimeout time.Duration
	stopTimeout  time.Duration
	fs           fsutil.FileSystem
	outputDir    string

	lifeMu sync.Mutex // serialises lifecycle transitions
	done   chan struct{}

	initialized atomic.Bool
	running     atomic.Bool
	stopped     atomic.Bool
	loops       atomic.Int64
	ticks       atomic.Uint32

	objects *registry.Registry

	hookMu       sync.Mutex
	hook         ForceHook
	hookUseProxy bool

	worldMu        sync.Mutex
	world          *scene.World
	tool           *scene.Tool
	toolRadius     float64
	workspaceScale float64
	maxStiffness   float64
	maxDamping     float64
	maxForce       float64
	waitSmall      bool
	rise           bool
	recTargets     []recTarget

	rec   *recording.Recorder
	frame *transform.Frame

	cacheMu sync.RWMutex
	cache   toolCache

	freq     frequencyCounter
	stats    loopStats
	throttle monitoring.Throttle
}

// toolCache is the tool state of the last tick, in caller coordinates.
type toolCache struct {
	position mgl64.Vec3
	proxy    mgl64.Vec3
	velocity mgl64.Vec3
	rotation mgl64.Quat
	force    mgl64.Vec3
	buttons  uint32
}

func identityCache() toolCache {
	return toolCache{rotation: mgl64.QuatIdent()}
}

// New returns an uninitialised session.
func New(opts Options) *Session {
	if opts.Devices == nil {
		opts.Devices = device.NewHandler(sim.New(sim.DefaultSpecs()))
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.LoopPeriod == 0 {
		opts.LoopPeriod = DefaultLoopPeriod
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	s := &Session{
		devices:      opts.Devices,
		clock:        opts.Clock,
		period:       opts.LoopPeriod,
		startTimeout: opts.StartTimeout,
		stopTimeout:  opts.StopTimeout,
		fs:           opts.FS,
		outputDir:    opts.OutputDir,
		objects:      registry.New(),
		rec:          recording.New(opts.Clock.Now),
		frame:        transform.NewFrame(),
		cache:        identityCache(),
		throttle:     monitoring.Throttle{Interval: time.Second},
	}
	s.stopped.Store(true)
	return s
}

// Frame returns the caller coordinate frame.
func (s *Session) Frame() *transform.Frame { return s.frame }

// Recorder returns the session recorder.
func (s *Session) Recorder() *recording.Recorder { return s.rec }

// IsInitialized returns nil when a device is initialised.
func (s *Session) IsInitialized() error {
	if !s.initialized.Load() {
		return status.NotInitialized
	}
	return nil
}

// IsRunning returns nil while the haptic loop runs.
func (s *Session) IsRunning() error {
	if !s.running.Load() {
		return status.NotRunning
	}
	return nil
}

// Initialize acquires the device at index, builds the world and the tool
// and reads the initial device pose. workspaceScale multiplies device
// coordinates into world coordinates.
func (s *Session) Initialize(index int, workspaceScale, toolRadius float64) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.initialized.Load() {
		return status.AlreadyInitialized
	}
	if s.running.Load() {
		return status.AlreadyRunning
	}
	if !(workspaceScale > 0) || math.IsInf(workspaceScale, 0) || !(toolRadius >= 0) {
		return fmt.Errorf("scale %g, radius %g: %w", workspaceScale, toolRadius, status.InvalidParams)
	}

	dev, err := s.devices.Get(index)
	if err != nil {
		return err
	}
	world := scene.NewWorld()
	tool := scene.NewTool(world, dev, toolRadius, workspaceScale)
	if err := tool.Start(); err != nil {
		return fmt.Errorf("open device %d: %v: %w", index, err, status.DeviceNotFound)
	}
	specs := dev.Specs()

	s.worldMu.Lock()
	s.world = world
	s.tool = tool
	s.toolRadius = toolRadius
	s.workspaceScale = workspaceScale
	s.maxStiffness = specs.MaxLinearStiffness / workspaceScale
	s.maxDamping = specs.MaxLinearDamping / workspaceScale
	s.maxForce = specs.MaxLinearForce
	world.SetDynamicObjects(true)
	tool.SetWaitForSmallForce(s.waitSmall)
	tool.SetUseForceRise(s.rise)
	if err := tool.UpdateFromDevice(); err != nil {
		monitoring.Logf("initial read from device %d failed: %v", index, err)
	}
	s.refreshCache()
	world.ComputeGlobalPositions(false)
	s.worldMu.Unlock()

	s.stopped.Store(true)
	s.initialized.Store(true)
	monitoring.Logf("initialized device %d (%s), workspace scale %g, tool radius %g",
		index, specs.Model, workspaceScale, toolRadius)
	return nil
}

// Deinitialize stops the loop if needed, closes the device and drops every
// object. Handles restart from FirstHandle afterwards.
func (s *Session) Deinitialize() error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.initialized.Load() {
		return status.NotInitialized
	}
	if s.running.Load() {
		if err := s.stop(); err != nil {
			return err
		}
	}
	if !s.stopped.Load() {
		return status.ThreadRunning
	}

	s.worldMu.Lock()
	if err := s.tool.Stop(); err != nil {
		monitoring.Logf("closing device failed: %v", err)
	}
	s.world.Clear()
	s.world = nil
	s.tool = nil
	s.recTargets = nil
	s.worldMu.Unlock()

	s.objects.Clear()

	s.cacheMu.Lock()
	s.cache = identityCache()
	s.cacheMu.Unlock()

	s.initialized.Store(false)
	monitoring.Logf("deinitialized")
	return nil
}

// Start launches the haptic loop and returns once it is ticking.
func (s *Session) Start() error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.initialized.Load() {
		return status.NotInitialized
	}
	if s.running.Load() {
		return status.AlreadyRunning
	}
	if !s.stopped.Load() {
		// A previous loop outlived its stop timeout.
		return status.ThreadRunning
	}

	s.ticks.Store(0)
	s.loops.Store(0)
	s.freq.reset(s.clock.Now())
	s.stats.reset()

	ready := make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)
	go s.run(ready, s.done)

	if !wait(ready, s.startTimeout) {
		monitoring.Logf("haptic loop did not start within %s", s.startTimeout)
		return status.ThreadNotRunning
	}
	monitoring.Logf("haptic loop started, period %s", s.period)
	return nil
}

// Stop asks the loop to exit and waits for it. The force hook is removed
// and the force shaping toggles return to their defaults.
func (s *Session) Stop() error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.initialized.Load() {
		return status.NotInitialized
	}
	if !s.running.Load() {
		return status.NotRunning
	}
	return s.stop()
}

func (s *Session) stop() error {
	s.running.Store(false)
	if !wait(s.done, s.stopTimeout) {
		monitoring.Logf("haptic loop still running after %s", s.stopTimeout)
		return status.ThreadRunning
	}

	s.hookMu.Lock()
	s.hook = nil
	s.hookMu.Unlock()

	s.worldMu.Lock()
	s.waitSmall = false
	s.rise = false
	s.tool.SetWaitForSmallForce(false)
	s.tool.SetUseForceRise(false)
	s.worldMu.Unlock()

	monitoring.Logf("haptic loop stopped after %d loops", s.loops.Load())
	return nil
}

// wait blocks until ch is closed or timeout elapses. A non-positive timeout
// waits indefinitely.
func wait(ch <-chan struct{}, timeout time.Duration) bool {
	if timeout <= 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// requireInit is the common guard of calls that need a device.
func (s *Session) requireInit() error {
	if !s.initialized.Load() {
		return status.NotInitialized
	}
	return nil
}
