// Package sim provides a simulated haptic device. The handle pose is set by
// the test or host code and the last commanded force is kept for
// inspection.
package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/device"
)

// DefaultSpecs are the capabilities of the virtual device.
func DefaultSpecs() device.Specs {
	return device.Specs{
		Model:              "virtual device",
		MaxLinearForce:     10,
		MaxLinearStiffness: 2000,
		MaxLinearDamping:   20,
		WorkspaceRadius:    0.2,
		Buttons:            2,
	}
}

// Device is a simulated device. It is safe for concurrent use.
type Device struct {
	mu      sync.Mutex
	specs   device.Specs
	open    bool
	state   device.State
	force   mgl64.Vec3
	reads   int
	writes  int
	readErr  error
	writeErr error
}

// New returns a closed simulated device at the origin.
func New(specs device.Specs) *Device {
	return &Device{
		specs: specs,
		state: device.State{Rotation: mgl64.QuatIdent()},
	}
}

func (d *Device) Specs() device.Specs {
	return d.specs
}

func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	d.force = mgl64.Vec3{}
	return nil
}

func (d *Device) Read(s *device.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return device.ErrNotOpen
	}
	if d.readErr != nil {
		return d.readErr
	}
	d.reads++
	*s = d.state
	return nil
}

func (d *Device) WriteForce(f mgl64.Vec3) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return device.ErrNotOpen
	}
	if d.writeErr != nil {
		return d.writeErr
	}
	d.force = f
	d.writes++
	return nil
}

// SetPose moves the simulated handle.
func (d *Device) SetPose(pos, vel mgl64.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Position = pos
	d.state.Velocity = vel
}

// SetRotation orients the simulated handle.
func (d *Device) SetRotation(q mgl64.Quat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Rotation = q
}

// SetButton presses or releases button i.
func (d *Device) SetButton(i int, pressed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pressed {
		d.state.Buttons |= 1 << uint(i)
	} else {
		d.state.Buttons &^= 1 << uint(i)
	}
}

// FailReads makes subsequent reads return err. nil restores normal reads.
func (d *Device) FailReads(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readErr = err
}

// FailWrites makes subsequent force writes return err.
func (d *Device) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// Force returns the last commanded force.
func (d *Device) Force() mgl64.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.force
}

// Counts returns the number of successful reads and force writes.
func (d *Device) Counts() (reads, writes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads, d.writes
}

// IsOpen reports whether the device is open.
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
