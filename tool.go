package haptics

import "github.com/banshee-data/haptics/internal/status"

// CountDevices returns the number of attached devices, not counting the
// simulated one. It fails while a device is initialised.
func (c *Context) CountDevices() (int, int) {
	n, err := c.s.CountDevices()
	return n, c.ret(err)
}

// GetDeviceName returns the model name of the device at index. The name
// needs bufferSize of at least its length plus one.
func (c *Context) GetDeviceName(index, bufferSize int) (string, int) {
	name, err := c.s.DeviceName(index)
	if err != nil {
		return "", c.ret(err)
	}
	if len(name)+1 > bufferSize {
		return "", c.ret(status.BufferTooSmall)
	}
	return name, c.ret(nil)
}

// GetToolPosition returns the tool position in world coordinates.
func (c *Context) GetToolPosition() ([3]float64, int) {
	p, err := c.s.ToolPosition()
	return p, c.ret(err)
}

// GetToolProxyPosition returns the tool position constrained to object
// surfaces.
func (c *Context) GetToolProxyPosition() ([3]float64, int) {
	p, err := c.s.ToolProxyPosition()
	return p, c.ret(err)
}

func (c *Context) GetToolVelocity() ([3]float64, int) {
	v, err := c.s.ToolVelocity()
	return v, c.ret(err)
}

// GetToolRotation returns the tool orientation as w, x, y, z.
func (c *Context) GetToolRotation() ([4]float64, int) {
	q, err := c.s.ToolRotation()
	return quatArray(q), c.ret(err)
}

// GetToolForce returns the force sent to the device on the last tick.
func (c *Context) GetToolForce() ([3]float64, int) {
	f, err := c.s.ToolForce()
	return f, c.ret(err)
}

// GetToolButton reports whether button i is pressed.
func (c *Context) GetToolButton(i int) (bool, int) {
	b, err := c.s.ToolButton(i)
	return b, c.ret(err)
}
