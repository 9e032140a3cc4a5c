// Package haptics drives a force-feedback device from a host application.
//
// A Context owns one device session: a background haptic loop that reads
// the device, resolves contact against the objects of a small scene, adds
// an optional host force and writes the result back, about once per
// millisecond. Every call returns an integer status code, 0 on success.
// The code of every call is remembered so that LastErrorMsg can describe
// the most recent outcome.
package haptics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/config"
	"github.com/banshee-data/haptics/internal/monitoring"
	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/session"
	"github.com/banshee-data/haptics/internal/status"
	"github.com/banshee-data/haptics/internal/version"
)

// Status codes returned by Context methods.
const (
	InvalidErrorNum               = int(status.InvalidErrorNum)
	NotImplemented                = int(status.NotImplemented)
	IsRelease                     = int(status.IsRelease)
	GenericFail                   = int(status.GenericFail)
	Success                       = int(status.Success)
	BufferTooSmall                = int(status.BufferTooSmall)
	DeviceNotFound                = int(status.DeviceNotFound)
	NotInitialized                = int(status.NotInitialized)
	AlreadyInitialized            = int(status.AlreadyInitialized)
	NotRunning                    = int(status.NotRunning)
	AlreadyRunning                = int(status.AlreadyRunning)
	CantBeInitialized             = int(status.CantBeInitialized)
	ThreadRunning                 = int(status.ThreadRunning)
	ThreadNotRunning              = int(status.ThreadNotRunning)
	AlreadyStopped                = int(status.AlreadyStopped)
	ObjectNotFound                = int(status.ObjectNotFound)
	FailSetTexture                = int(status.FailSetTexture)
	FailAllocateTexture           = int(status.FailAllocateTexture)
	SamplingTooSmall              = int(status.SamplingTooSmall)
	InvalidParams                 = int(status.InvalidParams)
	InvalidParamsSumNotSix        = int(status.InvalidParamsSumNotSix)
	InvalidParamsGreaterThanThree = int(status.InvalidParamsGreaterThanThree)
	InvalidParamsSameValue        = int(status.InvalidParamsSameValue)
	EnableWhenPaused              = int(status.EnableWhenPaused)
	DisableWhenPaused             = int(status.DisableWhenPaused)
	ExportFailed                  = int(status.ExportFailed)
	NotAMesh                      = int(status.NotAMesh)
	NotRecording                  = int(status.NotRecording)
	AlreadyRecording              = int(status.AlreadyRecording)
	NegativeCycles                = int(status.NegativeCycles)
	OvershootTooLow               = int(status.OvershootTooLow)
	NoHookExisting                = int(status.NoHookExisting)
)

// VirtualDevice is the device index of the built-in simulated device.
const VirtualDevice = -1

type (
	// Material holds object haptic properties as fractions of the device
	// limits.
	Material = session.MaterialParams
	// ForceHook computes an extra force once per loop tick.
	ForceHook = session.ForceHook
	// ForceHookFunc adapts a function to ForceHook.
	ForceHookFunc = session.ForceHookFunc
	// RecordingOptions selects what recorded frames carry.
	RecordingOptions = recording.Options
	// Recording is a finished recording.
	Recording = recording.Buffer
	// LoopStats summarises recent loop periods.
	LoopStats = session.LoopStats
)

// Context is one device session. It is safe for concurrent use.
type Context struct {
	s    *session.Session
	cfg  *config.Config
	errs status.Ring
}

// New returns an uninitialised context.
func New(opts ...Option) (*Context, error) {
	st := &settings{cfg: &config.Config{}}
	for _, o := range opts {
		if err := o(st); err != nil {
			return nil, err
		}
	}

	c := &Context{s: session.New(st.sessionOptions()), cfg: st.cfg}
	if err := c.applyConfig(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyConfig pushes the configured frame, force shaping and recording
// defaults into the fresh session.
func (c *Context) applyConfig() error {
	cfg := c.cfg
	if cfg.World.AxisMapping != nil {
		m := cfg.GetAxisMapping()
		if err := c.s.SetAxisMapping(m[0], m[1], m[2]); err != nil {
			return err
		}
	}
	sc := cfg.GetWorldScale()
	if err := c.s.SetWorldScale(sc[0], sc[1], sc[2]); err != nil {
		return err
	}
	tr := cfg.GetWorldTranslation()
	c.s.SetWorldTranslation(tr[0], tr[1], tr[2])
	eu := cfg.GetWorldRotationEuler()
	c.s.SetWorldRotationEuler(eu[0], eu[1], eu[2])

	c.s.SetWaitForSmallForces(cfg.GetWaitForSmallForce())
	c.s.SetRiseForces(cfg.GetUseForceRise())
	return c.s.InitLogging(cfg.GetRecordingOptions())
}

// ret records the outcome of a call and returns its code.
func (c *Context) ret(err error) int {
	return int(c.errs.Record(status.Of(err)))
}

func vec(v [3]float64) mgl64.Vec3 { return mgl64.Vec3(v) }

func quat(q [4]float64) mgl64.Quat {
	return mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}}
}

func quatArray(q mgl64.Quat) [4]float64 {
	return [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
}

// Initialize opens the device at index. workspaceScale multiplies device
// coordinates into world coordinates; toolRadius is the contact radius of
// the tool in world units.
func (c *Context) Initialize(index int, workspaceScale, toolRadius float64) int {
	err := c.s.Initialize(index, workspaceScale, toolRadius)
	if err == nil {
		err = c.s.SetDynamicObjects(c.cfg.GetDynamicObjects())
	}
	return c.ret(err)
}

// InitializeDefault opens the configured device with the configured scale
// and tool radius.
func (c *Context) InitializeDefault() int {
	return c.Initialize(c.cfg.GetDeviceIndex(), c.cfg.GetWorkspaceScale(), c.cfg.GetToolRadius())
}

// Deinitialize stops the loop if needed, closes the device and drops every
// object.
func (c *Context) Deinitialize() int { return c.ret(c.s.Deinitialize()) }

// Start launches the haptic loop.
func (c *Context) Start() int { return c.ret(c.s.Start()) }

// Stop halts the haptic loop. The force hook is removed.
func (c *Context) Stop() int { return c.ret(c.s.Stop()) }

func (c *Context) IsInitialized() int { return c.ret(c.s.IsInitialized()) }
func (c *Context) IsRunning() int     { return c.ret(c.s.IsRunning()) }

// GetLoopFrequency returns the loop rate in Hz, or -1 when not running.
func (c *Context) GetLoopFrequency() float64 { return c.s.LoopFrequency() }

// GetLoops returns the number of loop iterations since Start, or -1 when
// not running.
func (c *Context) GetLoops() int64 { return c.s.Loops() }

// GetLoopStats returns mean and deviation of recent loop periods.
func (c *Context) GetLoopStats() LoopStats { return c.s.LoopStats() }

// GetErrorMsg returns the message of code. The message needs bufferSize of
// at least its length plus one.
func (c *Context) GetErrorMsg(code, bufferSize int) (string, int) {
	msg, res := status.MessageFor(code, bufferSize)
	return msg, int(c.errs.Record(res))
}

// LastErrorMsg returns the message of the most recently returned code.
func (c *Context) LastErrorMsg(bufferSize int) (string, int) {
	return c.GetErrorMsg(int(c.errs.Last()), bufferSize)
}

// GetVersionInfo returns the library version.
func GetVersionInfo() (major, minor, patch int) {
	return version.Major, version.Minor, version.Patch
}

// SetLogger redirects diagnostic logging. nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	monitoring.SetLogger(f)
}
