package serialdev

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/device"
	"github.com/banshee-data/haptics/internal/monitoring"
)

// ErrNoSample is returned by Read until the bridge has sent a state line.
var ErrNoSample = errors.New("no sample received yet")

// Device is a device.Device backed by a serial bridge. Incoming state lines
// are parsed by a reader goroutine; Read returns the latest sample.
type Device struct {
	path  string
	opts  PortOptions
	specs device.Specs
	open  Opener

	mu      sync.Mutex
	port    Port
	state   device.State
	have    bool
	readErr error
	done    chan struct{}
}

// New returns a closed device for the bridge at path.
func New(path string, opts PortOptions, specs device.Specs) *Device {
	if specs.Model == "" {
		specs.Model = "serial bridge " + path
	}
	return &Device{path: path, opts: opts, specs: specs, open: OpenSerial}
}

// WithOpener replaces the port opener.
func (d *Device) WithOpener(open Opener) *Device {
	d.open = open
	return d
}

func (d *Device) Specs() device.Specs {
	return d.specs
}

func (d *Device) Open() error {
	mode, err := d.opts.SerialMode()
	if err != nil {
		return err
	}
	port, err := d.open(d.path, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.path, err)
	}

	d.mu.Lock()
	d.port = port
	d.have = false
	d.readErr = nil
	d.done = make(chan struct{})
	done := d.done
	d.mu.Unlock()

	go d.readLoop(port, done)
	return nil
}

func (d *Device) readLoop(port Port, done chan struct{}) {
	defer close(done)
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s, err := ParseSample(line)
		if err != nil {
			monitoring.Logf("serialdev %s: %v", d.path, err)
			continue
		}
		d.mu.Lock()
		d.state = s
		d.have = true
		d.mu.Unlock()
	}

	err := scanner.Err()
	if err == nil {
		err = errors.New("bridge closed the stream")
	}
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}

func (d *Device) Close() error {
	d.mu.Lock()
	port, done := d.port, d.done
	d.port = nil
	d.mu.Unlock()
	if port == nil {
		return nil
	}
	err := port.Close()
	<-done
	return err
}

func (d *Device) Read(s *device.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return device.ErrNotOpen
	}
	if d.readErr != nil {
		return d.readErr
	}
	if !d.have {
		return ErrNoSample
	}
	*s = d.state
	return nil
}

func (d *Device) WriteForce(f mgl64.Vec3) error {
	d.mu.Lock()
	port := d.port
	d.mu.Unlock()
	if port == nil {
		return device.ErrNotOpen
	}
	_, err := fmt.Fprintf(port, "F,%s,%s,%s\n", formatFloat(f[0]), formatFloat(f[1]), formatFloat(f[2]))
	return err
}

// ParseSample parses one state line.
func ParseSample(line string) (device.State, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 8 || fields[0] != "S" {
		return device.State{}, fmt.Errorf("malformed sample %q", line)
	}

	var vals [6]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return device.State{}, fmt.Errorf("sample field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	buttons, err := strconv.ParseUint(strings.TrimSpace(fields[7]), 10, 32)
	if err != nil {
		return device.State{}, fmt.Errorf("sample buttons: %w", err)
	}

	return device.State{
		Position: mgl64.Vec3{vals[0], vals[1], vals[2]},
		Velocity: mgl64.Vec3{vals[3], vals[4], vals[5]},
		Rotation: mgl64.QuatIdent(),
		Buttons:  uint32(buttons),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
