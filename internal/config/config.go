// Package config loads the optional startup configuration of a haptics
// context. Every field is a pointer so partial files are safe; the Get*
// methods supply defaults for anything omitted.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/haptics/internal/device"
	"github.com/banshee-data/haptics/internal/device/serialdev"
	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/transform"
)

// DefaultConfigPath is the documented defaults file shipped with the repo.
const DefaultConfigPath = "config/haptics.defaults.json"

const maxFileSize = 1 * 1024 * 1024

// Defaults.
const (
	DefaultDeviceIndex    = device.VirtualIndex
	DefaultWorkspaceScale = 1.0
	DefaultToolRadius     = 0.005
	DefaultLoopPeriod     = time.Millisecond
	DefaultSamplingRate   = 1
)

// Config is the root configuration.
type Config struct {
	DeviceIndex    *int     `json:"device_index,omitempty" yaml:"device_index,omitempty"`
	WorkspaceScale *float64 `json:"workspace_scale,omitempty" yaml:"workspace_scale,omitempty"`
	ToolRadius     *float64 `json:"tool_radius,omitempty" yaml:"tool_radius,omitempty"`

	// Duration strings like "1ms". Empty timeouts wait indefinitely.
	LoopPeriod   *string `json:"loop_period,omitempty" yaml:"loop_period,omitempty"`
	StartTimeout *string `json:"start_timeout,omitempty" yaml:"start_timeout,omitempty"`
	StopTimeout  *string `json:"stop_timeout,omitempty" yaml:"stop_timeout,omitempty"`

	World     World     `json:"world" yaml:"world"`
	Forces    Forces    `json:"forces" yaml:"forces"`
	Recording Recording `json:"recording" yaml:"recording"`
	Serial    *Serial   `json:"serial,omitempty" yaml:"serial,omitempty"`
}

// World describes the caller coordinate frame.
type World struct {
	AxisMapping   *[3]int     `json:"axis_mapping,omitempty" yaml:"axis_mapping,omitempty"`
	Scale         *[3]float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Translation   *[3]float64 `json:"translation,omitempty" yaml:"translation,omitempty"`
	RotationEuler *[3]float64 `json:"rotation_euler,omitempty" yaml:"rotation_euler,omitempty"` // degrees
}

// Forces holds the force shaping toggles.
type Forces struct {
	WaitForSmallForce *bool `json:"wait_for_small_force,omitempty" yaml:"wait_for_small_force,omitempty"`
	UseForceRise      *bool `json:"use_force_rise,omitempty" yaml:"use_force_rise,omitempty"`
	DynamicObjects    *bool `json:"dynamic_objects,omitempty" yaml:"dynamic_objects,omitempty"`
}

// Recording holds the recorder defaults.
type Recording struct {
	SamplingRate      *int    `json:"sampling_rate,omitempty" yaml:"sampling_rate,omitempty"`
	DeviceCoordinates *bool   `json:"device_coordinates,omitempty" yaml:"device_coordinates,omitempty"`
	Position          *bool   `json:"position,omitempty" yaml:"position,omitempty"`
	Velocity          *bool   `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Force             *bool   `json:"force,omitempty" yaml:"force,omitempty"`
	InteractionForces *bool   `json:"interaction_forces,omitempty" yaml:"interaction_forces,omitempty"`
	OutputDir         *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
}

// Serial attaches a serial bridge device.
type Serial struct {
	Path  string                `json:"path" yaml:"path"`
	Port  serialdev.PortOptions `json:"port" yaml:"port"`
	Specs *device.Specs         `json:"specs,omitempty" yaml:"specs,omitempty"`
}

// Load reads a configuration from a .json, .yaml or .yml file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if c.DeviceIndex != nil && *c.DeviceIndex < device.VirtualIndex {
		return fmt.Errorf("device_index must be >= %d, got %d", device.VirtualIndex, *c.DeviceIndex)
	}
	if c.WorkspaceScale != nil && !(*c.WorkspaceScale > 0) {
		return fmt.Errorf("workspace_scale must be positive, got %g", *c.WorkspaceScale)
	}
	if c.ToolRadius != nil && *c.ToolRadius < 0 {
		return fmt.Errorf("tool_radius must be non-negative, got %g", *c.ToolRadius)
	}

	for name, s := range map[string]*string{
		"loop_period":   c.LoopPeriod,
		"start_timeout": c.StartTimeout,
		"stop_timeout":  c.StopTimeout,
	} {
		if s == nil || *s == "" {
			continue
		}
		d, err := time.ParseDuration(*s)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *s, err)
		}
		if d < 0 || (name == "loop_period" && d == 0) {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if m := c.World.AxisMapping; m != nil {
		if err := transform.ValidateAxisMapping(m[0], m[1], m[2]); err != nil {
			return fmt.Errorf("invalid axis_mapping %v: %w", *m, err)
		}
	}
	if s := c.World.Scale; s != nil {
		for _, v := range s {
			if !(v > 0) {
				return fmt.Errorf("world scale must be positive, got %v", *s)
			}
		}
	}

	if r := c.Recording.SamplingRate; r != nil && *r < 1 {
		return fmt.Errorf("sampling_rate must be at least 1, got %d", *r)
	}

	if c.Serial != nil {
		if c.Serial.Path == "" {
			return fmt.Errorf("serial.path is required when serial is set")
		}
		if _, err := c.Serial.Port.Normalize(); err != nil {
			return fmt.Errorf("serial.port: %w", err)
		}
	}
	return nil
}

// GetDeviceIndex returns device_index or the virtual device.
func (c *Config) GetDeviceIndex() int {
	if c.DeviceIndex == nil {
		return DefaultDeviceIndex
	}
	return *c.DeviceIndex
}

// GetWorkspaceScale returns workspace_scale or 1.
func (c *Config) GetWorkspaceScale() float64 {
	if c.WorkspaceScale == nil {
		return DefaultWorkspaceScale
	}
	return *c.WorkspaceScale
}

// GetToolRadius returns tool_radius or the default.
func (c *Config) GetToolRadius() float64 {
	if c.ToolRadius == nil {
		return DefaultToolRadius
	}
	return *c.ToolRadius
}

func parseDuration(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return def
	}
	return d
}

// GetLoopPeriod returns the haptic loop period.
func (c *Config) GetLoopPeriod() time.Duration {
	return parseDuration(c.LoopPeriod, DefaultLoopPeriod)
}

// GetStartTimeout returns the start timeout. Zero means wait indefinitely.
func (c *Config) GetStartTimeout() time.Duration {
	return parseDuration(c.StartTimeout, 0)
}

// GetStopTimeout returns the stop timeout. Zero means wait indefinitely.
func (c *Config) GetStopTimeout() time.Duration {
	return parseDuration(c.StopTimeout, 0)
}

// GetAxisMapping returns the axis mapping or identity.
func (c *Config) GetAxisMapping() [3]int {
	if c.World.AxisMapping == nil {
		return [3]int{1, 2, 3}
	}
	return *c.World.AxisMapping
}

// GetWorldScale returns the per-axis world scale or unit scale.
func (c *Config) GetWorldScale() [3]float64 {
	if c.World.Scale == nil {
		return [3]float64{1, 1, 1}
	}
	return *c.World.Scale
}

// GetWorldTranslation returns the world translation or zero.
func (c *Config) GetWorldTranslation() [3]float64 {
	if c.World.Translation == nil {
		return [3]float64{}
	}
	return *c.World.Translation
}

// GetWorldRotationEuler returns the world rotation in degrees or zero.
func (c *Config) GetWorldRotationEuler() [3]float64 {
	if c.World.RotationEuler == nil {
		return [3]float64{}
	}
	return *c.World.RotationEuler
}

func getBool(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// GetWaitForSmallForce returns forces.wait_for_small_force or false.
func (c *Config) GetWaitForSmallForce() bool { return getBool(c.Forces.WaitForSmallForce, false) }

// GetUseForceRise returns forces.use_force_rise or false.
func (c *Config) GetUseForceRise() bool { return getBool(c.Forces.UseForceRise, false) }

// GetDynamicObjects returns forces.dynamic_objects or true.
func (c *Config) GetDynamicObjects() bool { return getBool(c.Forces.DynamicObjects, true) }

// GetSamplingRate returns recording.sampling_rate or 1.
func (c *Config) GetSamplingRate() int {
	if c.Recording.SamplingRate == nil {
		return DefaultSamplingRate
	}
	return *c.Recording.SamplingRate
}

// GetRecordingOptions merges the recording toggles over the recorder
// defaults.
func (c *Config) GetRecordingOptions() recording.Options {
	def := recording.DefaultOptions()
	r := c.Recording
	return recording.Options{
		DeviceCoordinates: getBool(r.DeviceCoordinates, def.DeviceCoordinates),
		Position:          getBool(r.Position, def.Position),
		Velocity:          getBool(r.Velocity, def.Velocity),
		Force:             getBool(r.Force, def.Force),
		InteractionForces: getBool(r.InteractionForces, def.InteractionForces),
	}
}

// GetOutputDir returns recording.output_dir. Empty means no restriction.
func (c *Config) GetOutputDir() string {
	if c.Recording.OutputDir == nil {
		return ""
	}
	return *c.Recording.OutputDir
}
