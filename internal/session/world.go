package session

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/status"
)

// SetAxisMapping changes the caller axis order and mirroring. It is only
// allowed before Initialize.
func (s *Session) SetAxisMapping(x, y, z int) error {
	if s.initialized.Load() {
		return status.CantBeInitialized
	}
	return s.frame.SetAxisMapping(x, y, z)
}

// SetWorldScale sets the caller frame scale.
func (s *Session) SetWorldScale(x, y, z float64) error {
	return s.frame.SetScale(x, y, z)
}

// SetWorldTranslation sets the caller frame translation.
func (s *Session) SetWorldTranslation(x, y, z float64) {
	s.frame.SetTranslation(x, y, z)
}

// SetWorldRotation sets the caller frame rotation.
func (s *Session) SetWorldRotation(q mgl64.Quat) error {
	return s.frame.SetRotation(q)
}

// SetWorldRotationEuler sets the caller frame rotation from extrinsic XYZ
// Euler angles in degrees.
func (s *Session) SetWorldRotationEuler(x, y, z float64) {
	s.frame.SetRotationEuler(x, y, z)
}

// SetDynamicObjects tells the world whether objects move while touched.
func (s *Session) SetDynamicObjects(enabled bool) error {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	if s.world == nil {
		return status.NotInitialized
	}
	s.world.SetDynamicObjects(enabled)
	return nil
}

// SetWaitForSmallForces delays force output after Start until the computed
// force is small. Enabling it disables force rise.
func (s *Session) SetWaitForSmallForces(enabled bool) {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	s.waitSmall = enabled
	if enabled {
		s.rise = false
	}
	s.applyForceShaping()
}

// SetRiseForces ramps forces up after Start. Enabling it disables waiting
// for small forces.
func (s *Session) SetRiseForces(enabled bool) {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	s.rise = enabled
	if enabled {
		s.waitSmall = false
	}
	s.applyForceShaping()
}

// ForceShaping returns the wait-for-small-forces and rise toggles.
func (s *Session) ForceShaping() (waitSmall, rise bool) {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	return s.waitSmall, s.rise
}

func (s *Session) applyForceShaping() {
	if s.tool == nil {
		return
	}
	s.tool.SetWaitForSmallForce(s.waitSmall)
	s.tool.SetUseForceRise(s.rise)
}
