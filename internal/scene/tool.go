package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/device"
)

const (
	// SmallForceThreshold is the force magnitude below which a tool waiting
	// for small forces engages.
	SmallForceThreshold = 0.2 // N
	// RiseTicks is the number of force updates over which rising forces ramp
	// from zero to full strength.
	RiseTicks = 1000
)

// Tool is the cursor bound to a device. Its pose lives in the world frame:
// device coordinates multiplied by the workspace scale.
type Tool struct {
	world          *World
	dev            device.Device
	specs          device.Specs
	radius         float64
	workspaceScale float64

	state    device.State
	position mgl64.Vec3
	velocity mgl64.Vec3
	rotation mgl64.Quat
	proxy    mgl64.Vec3

	force     mgl64.Vec3
	sentForce mgl64.Vec3

	forcesOn  bool
	engaged   bool
	waitSmall bool
	rise      bool
	riseStep  int
}

// NewTool returns a tool of the given radius bound to dev.
func NewTool(world *World, dev device.Device, radius, workspaceScale float64) *Tool {
	return &Tool{
		world:          world,
		dev:            dev,
		specs:          dev.Specs(),
		radius:         radius,
		workspaceScale: workspaceScale,
		rotation:       mgl64.QuatIdent(),
	}
}

// Start opens the device.
func (t *Tool) Start() error {
	return t.dev.Open()
}

// Stop turns forces off and closes the device. The device is closed even
// when zeroing the force fails.
func (t *Tool) Stop() error {
	ferr := t.SetForcesOff()
	cerr := t.dev.Close()
	return errors.Join(ferr, cerr)
}

func (t *Tool) Radius() float64         { return t.radius }
func (t *Tool) WorkspaceScale() float64 { return t.workspaceScale }
func (t *Tool) Specs() device.Specs     { return t.specs }

// UpdateFromDevice reads the device and moves the cursor.
func (t *Tool) UpdateFromDevice() error {
	var s device.State
	if err := t.dev.Read(&s); err != nil {
		return err
	}
	t.state = s
	t.position = s.Position.Mul(t.workspaceScale)
	t.velocity = s.Velocity.Mul(t.workspaceScale)
	t.rotation = s.Rotation
	if t.rotation.Len() == 0 {
		t.rotation = mgl64.QuatIdent()
	}
	return nil
}

// DeviceState returns the last raw device sample.
func (t *Tool) DeviceState() device.State { return t.state }

func (t *Tool) Position() mgl64.Vec3 { return t.position }
func (t *Tool) Velocity() mgl64.Vec3 { return t.velocity }
func (t *Tool) Rotation() mgl64.Quat { return t.rotation }

// Proxy returns the cursor position constrained to object surfaces.
func (t *Tool) Proxy() mgl64.Vec3 { return t.proxy }

// Force returns the force last sent to the device.
func (t *Tool) Force() mgl64.Vec3 { return t.sentForce }

// Button reports whether device button i is pressed.
func (t *Tool) Button(i int) bool { return t.state.Button(i) }

// ComputeInteractionForces replaces the pending force with the sum of the
// contact forces of every enabled node.
func (t *Tool) ComputeInteractionForces() {
	t.force = mgl64.Vec3{}
	t.proxy = t.position
	for _, n := range t.world.children {
		n.contactForce = mgl64.Vec3{}
		if !n.Enabled || !t.near(n) {
			continue
		}
		normal, gap := n.contact(t.position, t.radius)
		m := n.Material
		var f mgl64.Vec3
		if gap < 0 {
			if m.Surface {
				f = normal.Mul(-gap * m.Stiffness)
				t.proxy = t.proxy.Add(normal.Mul(-gap))
			}
			if m.Viscosity > 0 {
				f = f.Sub(t.velocity.Mul(m.Viscosity))
			}
		} else if n.Kind != Mesh && m.MagnetMaxForce > 0 && gap < m.MagnetMaxDistance {
			f = normal.Mul(-m.MagnetMaxForce * (1 - gap/m.MagnetMaxDistance))
		}
		n.contactForce = f
		t.force = t.force.Add(f)
	}
}

func (t *Tool) near(n *Node) bool {
	reach := t.radius + n.Material.MagnetMaxDistance
	for k := 0; k < 3; k++ {
		if t.position[k]+reach < n.globalMin[k] || t.position[k]-reach > n.globalMax[k] {
			return false
		}
	}
	return true
}

// AddForce adds f to the pending force.
func (t *Tool) AddForce(f mgl64.Vec3) {
	t.force = t.force.Add(f)
}

// ApplyToDevice clamps and shapes the pending force and sends it.
func (t *Tool) ApplyToDevice() error {
	f := t.force
	if max := t.specs.MaxLinearForce; max > 0 && f.Len() > max {
		f = f.Normalize().Mul(max)
	}

	switch {
	case !t.forcesOn:
		f = mgl64.Vec3{}
	case !t.engaged:
		if !t.waitSmall || f.Len() < SmallForceThreshold {
			t.engaged = true
			t.riseStep = 0
		} else {
			f = mgl64.Vec3{}
		}
	}
	if t.engaged && t.rise && t.riseStep < RiseTicks {
		t.riseStep++
		f = f.Mul(float64(t.riseStep) / RiseTicks)
	}

	t.sentForce = f
	return t.dev.WriteForce(f)
}

// SetForcesOn enables force output. With wait-for-small-forces set, output
// stays at zero until the computed force drops below SmallForceThreshold.
func (t *Tool) SetForcesOn() {
	t.forcesOn = true
	t.engaged = false
}

// SetForcesOff disables force output and sends a zero force.
func (t *Tool) SetForcesOff() error {
	t.forcesOn = false
	t.engaged = false
	t.force = mgl64.Vec3{}
	t.sentForce = mgl64.Vec3{}
	return t.dev.WriteForce(mgl64.Vec3{})
}

func (t *Tool) SetWaitForSmallForce(enabled bool) { t.waitSmall = enabled }
func (t *Tool) SetUseForceRise(enabled bool)      { t.rise = enabled }
