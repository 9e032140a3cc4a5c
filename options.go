package haptics

import (
	"errors"
	"time"

	"github.com/banshee-data/haptics/internal/config"
	"github.com/banshee-data/haptics/internal/device"
	"github.com/banshee-data/haptics/internal/device/serialdev"
	"github.com/banshee-data/haptics/internal/device/sim"
	"github.com/banshee-data/haptics/internal/fsutil"
	"github.com/banshee-data/haptics/internal/monitoring"
	"github.com/banshee-data/haptics/internal/session"
	"github.com/banshee-data/haptics/internal/timeutil"
)

// Option configures New.
type Option func(*settings) error

type settings struct {
	cfg      *config.Config
	session  session.Options
	virtual  device.Device
	attached []device.Device
}

func (st *settings) sessionOptions() session.Options {
	opts := st.session
	if opts.Devices == nil {
		virtual := st.virtual
		if virtual == nil {
			virtual = sim.New(sim.DefaultSpecs())
		}
		opts.Devices = device.NewHandler(virtual, st.attached...)
	}
	return opts
}

// WithConfigFile loads a JSON or YAML configuration. Options after it
// override the values it sets.
func WithConfigFile(path string) Option {
	return func(st *settings) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		monitoring.Logf("loaded configuration from %s", path)
		st.cfg = cfg
		st.session.LoopPeriod = cfg.GetLoopPeriod()
		st.session.StartTimeout = cfg.GetStartTimeout()
		st.session.StopTimeout = cfg.GetStopTimeout()
		st.session.OutputDir = cfg.GetOutputDir()
		if s := cfg.Serial; s != nil {
			specs := sim.DefaultSpecs()
			specs.Model = ""
			if s.Specs != nil {
				specs = *s.Specs
			}
			st.attached = append(st.attached, serialdev.New(s.Path, s.Port, specs))
		}
		return nil
	}
}

// WithLoopPeriod sets the haptic loop cadence. A negative period
// free-runs.
func WithLoopPeriod(d time.Duration) Option {
	return func(st *settings) error {
		st.session.LoopPeriod = d
		return nil
	}
}

// WithTimeouts bounds how long Start and Stop wait for the loop. Zero
// waits indefinitely.
func WithTimeouts(start, stop time.Duration) Option {
	return func(st *settings) error {
		if start < 0 || stop < 0 {
			return errors.New("negative timeout")
		}
		st.session.StartTimeout = start
		st.session.StopTimeout = stop
		return nil
	}
}

// WithOutputDir confines recording and object exports to dir.
func WithOutputDir(dir string) Option {
	return func(st *settings) error {
		st.session.OutputDir = dir
		return nil
	}
}

// WithSerialDevice attaches a serial bridge device at the next device
// index.
func WithSerialDevice(path string, baudRate int) Option {
	return func(st *settings) error {
		opts, err := serialdev.PortOptions{BaudRate: baudRate}.Normalize()
		if err != nil {
			return err
		}
		specs := sim.DefaultSpecs()
		specs.Model = ""
		st.attached = append(st.attached, serialdev.New(path, opts, specs))
		return nil
	}
}

func withClock(c timeutil.Clock) Option {
	return func(st *settings) error {
		st.session.Clock = c
		return nil
	}
}

func withVirtualDevice(d device.Device) Option {
	return func(st *settings) error {
		st.virtual = d
		return nil
	}
}

func withAttachedDevice(d device.Device) Option {
	return func(st *settings) error {
		st.attached = append(st.attached, d)
		return nil
	}
}

func withFileSystem(fs fsutil.FileSystem) Option {
	return func(st *settings) error {
		st.session.FS = fs
		return nil
	}
}
