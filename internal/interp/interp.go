// Package interp eases object poses toward a destination over a fixed number
// of haptic loop ticks.
package interp

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/status"
)

// DefaultCycles is the interpolation period used when none is configured.
const DefaultCycles = 20

// State is the interpolation state of one object. It is not safe for
// concurrent use; the owner serialises access.
type State struct {
	Cycles    int
	Current   int
	Overshoot float64

	PositionEnabled bool
	PositionReached bool
	SourcePosition  mgl64.Vec3
	DestPosition    mgl64.Vec3

	RotationEnabled bool
	RotationReached bool
	SourceRotation  mgl64.Quat
	DestRotation    mgl64.Quat
}

// New returns a disabled, settled state at the given pose.
func New(pos mgl64.Vec3, rot mgl64.Quat) State {
	return State{
		Cycles:          DefaultCycles,
		Overshoot:       1,
		PositionReached: true,
		SourcePosition:  pos,
		DestPosition:    pos,
		RotationReached: true,
		SourceRotation:  rot,
		DestRotation:    rot,
	}
}

// Pose is the outcome of one Step for the channels that moved.
type Pose struct {
	Position    mgl64.Vec3
	Rotation    mgl64.Quat
	HasPosition bool
	HasRotation bool
	// Completed is set on the tick that settles both channels. Such a pose
	// never has a position or rotation.
	Completed bool
}

// Active reports whether Step would do any work.
func (s *State) Active() bool {
	if s.PositionReached && s.RotationReached {
		return false
	}
	return s.PositionEnabled || s.RotationEnabled
}

// Step advances the state by one tick. It returns false when there was
// nothing to do.
//
// Completion happens once Current exceeds Cycles×Overshoot: both channels
// are marked reached and sources are rebased onto the destinations. The
// completing tick carries no pose, so the object stays where the last
// interpolated tick left it.
func (s *State) Step() (Pose, bool) {
	if !s.Active() {
		return Pose{}, false
	}

	s.Current++
	if float64(s.Current) > float64(s.Cycles)*s.Overshoot {
		s.PositionReached = true
		s.RotationReached = true
		s.SourcePosition = s.DestPosition
		s.SourceRotation = s.DestRotation
		s.Current = 0
		return Pose{Completed: true}, true
	}

	ratio := float64(s.Current) / float64(s.Cycles)
	var p Pose
	if s.PositionEnabled {
		p.Position = lerp(s.SourcePosition, s.DestPosition, ratio)
		p.HasPosition = true
	}
	if s.RotationEnabled {
		p.Rotation = mgl64.QuatSlerp(s.SourceRotation, s.DestRotation, ratio)
		p.HasRotation = true
	}
	return p, true
}

// SetPosition sets the position destination. While position interpolation
// is disabled this is a one-shot move: the channel is enabled with a single
// cycle so the object lands on the next tick. While enabled it retargets
// without restarting the cycle count or rebasing the source.
func (s *State) SetPosition(dest mgl64.Vec3) {
	if !s.PositionEnabled {
		s.PositionEnabled = true
		s.Cycles = 1
		s.Current = 0
	}
	s.DestPosition = dest
	s.PositionReached = false
}

// SetRotation is the rotation counterpart of SetPosition.
func (s *State) SetRotation(dest mgl64.Quat) {
	if !s.RotationEnabled {
		s.RotationEnabled = true
		s.Cycles = 1
		s.Current = 0
	}
	s.DestRotation = dest
	s.RotationReached = false
}

// SetPositionEnabled toggles position interpolation and restarts the cycle
// count.
func (s *State) SetPositionEnabled(enabled bool) {
	s.defaultCycles()
	s.Current = 0
	s.PositionEnabled = enabled
}

// SetRotationEnabled toggles rotation interpolation.
func (s *State) SetRotationEnabled(enabled bool) {
	s.defaultCycles()
	s.RotationEnabled = enabled
}

func (s *State) defaultCycles() {
	if s.Cycles <= 0 {
		s.Cycles = DefaultCycles
	}
}

// SetPeriod configures the number of ticks an interpolation takes and the
// overshoot factor. Zero cycles disables both channels. The disable happens
// even if the overshoot is then rejected.
func (s *State) SetPeriod(cycles int, overshoot float64) error {
	if cycles < 0 {
		return status.NegativeCycles
	}
	if cycles == 0 {
		s.PositionEnabled = false
		s.RotationEnabled = false
	}
	if !(overshoot > 0) {
		return status.OvershootTooLow
	}
	s.Current = 0
	s.Overshoot = overshoot
	s.Cycles = cycles
	return nil
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
