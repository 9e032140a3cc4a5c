// Package serialdev drives a haptic device exposed through a serial
// bridge. The bridge streams one state line per sample and accepts one force
// line per command:
//
//	S,<x>,<y>,<z>,<vx>,<vy>,<vz>,<buttons>
//	F,<fx>,<fy>,<fz>
//
// Positions are metres, velocities metres per second, forces newtons, and
// buttons a decimal bit mask.
package serialdev

import (
	"io"

	"go.bug.st/serial"
)

// Port is the minimal interface needed from a serial port.
type Port interface {
	io.ReadWriter
	io.Closer
}

// Opener opens the port at path. It is replaceable for tests.
type Opener func(path string, mode *serial.Mode) (Port, error)

// OpenSerial opens a real serial port.
func OpenSerial(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
