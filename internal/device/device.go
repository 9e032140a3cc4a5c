// Package device defines the boundary between the haptic session and the
// hardware (or simulated hardware) it drives.
package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/status"
)

// ErrNotOpen is returned by Read and WriteForce on a closed device.
var ErrNotOpen = errors.New("device not open")

// Specs describes the capabilities reported by a device.
type Specs struct {
	Model              string  `json:"model" yaml:"model"`
	MaxLinearForce     float64 `json:"max_linear_force" yaml:"max_linear_force"`         // N
	MaxLinearStiffness float64 `json:"max_linear_stiffness" yaml:"max_linear_stiffness"` // N/m
	MaxLinearDamping   float64 `json:"max_linear_damping" yaml:"max_linear_damping"`     // N·s/m
	WorkspaceRadius    float64 `json:"workspace_radius" yaml:"workspace_radius"`         // m
	Buttons            int     `json:"buttons" yaml:"buttons"`
}

// State is one sample of the device end effector, in device coordinates.
type State struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Rotation mgl64.Quat
	Buttons  uint32
}

// Button reports whether button i is pressed.
func (s State) Button(i int) bool {
	if i < 0 || i >= 32 {
		return false
	}
	return s.Buttons&(1<<uint(i)) != 0
}

// Device is a force-feedback device. Read and WriteForce are called from the
// haptic loop at loop rate and should not block for long.
type Device interface {
	Specs() Specs
	Open() error
	Close() error
	Read(s *State) error
	WriteForce(f mgl64.Vec3) error
}

// VirtualIndex selects the built-in simulated device.
const VirtualIndex = -1

// Handler enumerates the available devices. Index VirtualIndex is always the
// virtual device; indices 0..Count()-1 are attached devices in attach order.
type Handler struct {
	mu       sync.Mutex
	virtual  Device
	attached []Device
}

// NewHandler returns a handler whose virtual device is virtual.
func NewHandler(virtual Device, attached ...Device) *Handler {
	return &Handler{virtual: virtual, attached: attached}
}

// Attach appends an attached device.
func (h *Handler) Attach(d Device) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached = append(h.attached, d)
}

// Count returns the number of attached devices.
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.attached)
}

// Get returns the device at index.
func (h *Handler) Get(index int) (Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index == VirtualIndex && h.virtual != nil {
		return h.virtual, nil
	}
	if index < 0 || index >= len(h.attached) {
		return nil, fmt.Errorf("device index %d: %w", index, status.DeviceNotFound)
	}
	return h.attached[index], nil
}

// Name returns the model name of the device at index.
func (h *Handler) Name(index int) (string, error) {
	d, err := h.Get(index)
	if err != nil {
		return "", err
	}
	return d.Specs().Model, nil
}
