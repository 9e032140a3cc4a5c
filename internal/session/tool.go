package session

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/device"
	"github.com/banshee-data/haptics/internal/status"
)

// CountDevices returns the number of attached devices, not counting the
// simulated one. Enumeration is not allowed while a device is initialised.
func (s *Session) CountDevices() (int, error) {
	if s.initialized.Load() {
		return -1, status.CantBeInitialized
	}
	return s.devices.Count(), nil
}

// DeviceName returns the model name of the device at index. Index
// device.VirtualIndex names the simulated device.
func (s *Session) DeviceName(index int) (string, error) {
	return s.devices.Name(index)
}

// Devices returns the device handler.
func (s *Session) Devices() *device.Handler { return s.devices }

// ToolPosition returns the device position in caller coordinates.
func (s *Session) ToolPosition() (mgl64.Vec3, error) {
	if err := s.requireInit(); err != nil {
		return mgl64.Vec3{}, err
	}
	return s.cached().position, nil
}

// ToolProxyPosition returns the surface constrained tool position.
func (s *Session) ToolProxyPosition() (mgl64.Vec3, error) {
	if err := s.requireInit(); err != nil {
		return mgl64.Vec3{}, err
	}
	return s.cached().proxy, nil
}

// ToolVelocity returns the device velocity in caller coordinates.
func (s *Session) ToolVelocity() (mgl64.Vec3, error) {
	if err := s.requireInit(); err != nil {
		return mgl64.Vec3{}, err
	}
	return s.cached().velocity, nil
}

// ToolRotation returns the device rotation in caller coordinates.
func (s *Session) ToolRotation() (mgl64.Quat, error) {
	if err := s.requireInit(); err != nil {
		return mgl64.QuatIdent(), err
	}
	return s.cached().rotation, nil
}

// ToolForce returns the force last sent to the device, in caller
// coordinates.
func (s *Session) ToolForce() (mgl64.Vec3, error) {
	if err := s.requireInit(); err != nil {
		return mgl64.Vec3{}, err
	}
	return s.cached().force, nil
}

// ToolButton reports whether device button i is pressed.
func (s *Session) ToolButton(i int) (bool, error) {
	if err := s.requireInit(); err != nil {
		return false, err
	}
	b := s.cached().buttons
	return i >= 0 && i < 32 && b&(1<<uint(i)) != 0, nil
}

// Limits returns the capability limits captured at Initialize: stiffness
// and damping divided by the workspace scale, and the raw force limit.
func (s *Session) Limits() (stiffness, damping, force float64) {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	return s.maxStiffness, s.maxDamping, s.maxForce
}
