package serialdev

import (
	"bytes"
	"errors"
	"sync"

	"go.bug.st/serial"
)

// TestPort is an in-memory Port. Reads block until data is added or the
// port is closed.
type TestPort struct {
	mu     sync.Mutex
	cond   *sync.Cond
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

// NewTestPort returns an open TestPort.
func NewTestPort() *TestPort {
	p := &TestPort{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Opener returns an Opener that always yields p.
func (p *TestPort) Opener() Opener {
	return func(string, *serial.Mode) (Port, error) { return p, nil }
}

func (p *TestPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for !p.closed && p.in.Len() == 0 {
		p.cond.Wait()
	}
	if p.closed {
		return 0, errors.New("serial port closed")
	}
	return p.in.Read(b)
}

func (p *TestPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("serial port closed")
	}
	return p.out.Write(b)
}

func (p *TestPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.cond.Broadcast()
	return nil
}

// Feed queues data for the reader.
func (p *TestPort) Feed(data string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in.WriteString(data)
	p.cond.Broadcast()
}

// Written returns everything written to the port.
func (p *TestPort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.String()
}
