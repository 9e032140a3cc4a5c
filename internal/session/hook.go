package session

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/status"
)

// ForceHook computes an extra force for the tool once per tick. Positions,
// velocities and the returned force are in caller coordinates. It runs on
// the haptic loop goroutine and must return quickly.
type ForceHook interface {
	ComputeForce(position, velocity mgl64.Vec3) mgl64.Vec3
}

// ForceHookFunc adapts a function to ForceHook.
type ForceHookFunc func(position, velocity mgl64.Vec3) mgl64.Vec3

func (f ForceHookFunc) ComputeForce(position, velocity mgl64.Vec3) mgl64.Vec3 {
	return f(position, velocity)
}

// SetHook installs h. With useProxy the hook receives the proxy position
// instead of the device position. Stop removes the hook.
func (s *Session) SetHook(h ForceHook, useProxy bool) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hook = h
	s.hookUseProxy = useProxy
}

// RemoveHook removes the current hook.
func (s *Session) RemoveHook() error {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if s.hook == nil {
		return status.NoHookExisting
	}
	s.hook = nil
	return nil
}
