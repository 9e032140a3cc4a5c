package haptics

import "github.com/banshee-data/haptics/internal/status"

// SetAxisMapping reorders and mirrors the world axes. x, y and z are the
// 1-based signed device axes the world axes map to; {1, 2, 3} is the
// identity. It is only allowed before Initialize.
func (c *Context) SetAxisMapping(x, y, z int) int {
	return c.ret(c.s.SetAxisMapping(x, y, z))
}

func (c *Context) GetAxisMapping() [3]int { return c.s.Frame().AxisMapping() }

func (c *Context) SetWorldScale(x, y, z float64) int {
	return c.ret(c.s.SetWorldScale(x, y, z))
}

func (c *Context) GetWorldScale() [3]float64 { return c.s.Frame().Scale() }

func (c *Context) SetWorldTranslation(x, y, z float64) int {
	c.s.SetWorldTranslation(x, y, z)
	return c.ret(nil)
}

func (c *Context) GetWorldTranslation() [3]float64 { return c.s.Frame().Translation() }

// SetWorldRotation sets the world rotation from a w, x, y, z quaternion.
func (c *Context) SetWorldRotation(rotation [4]float64) int {
	return c.ret(c.s.SetWorldRotation(quat(rotation)))
}

// SetWorldRotationEuler sets the world rotation from extrinsic XYZ angles
// in degrees.
func (c *Context) SetWorldRotationEuler(x, y, z float64) int {
	c.s.SetWorldRotationEuler(x, y, z)
	return c.ret(nil)
}

func (c *Context) GetWorldRotation() [4]float64 { return quatArray(c.s.Frame().Rotation()) }

// SetDynamicObjects sets whether objects may move while touched.
func (c *Context) SetDynamicObjects(enabled bool) int {
	return c.ret(c.s.SetDynamicObjects(enabled))
}

// SetWaitForSmallForces holds force output at zero after Start until the
// computed force is small. Enabling it disables force rise. Stop resets it.
func (c *Context) SetWaitForSmallForces(enabled bool) int {
	c.s.SetWaitForSmallForces(enabled)
	return c.ret(nil)
}

// SetRiseForces ramps force output up after Start. Enabling it disables
// waiting for small forces. Stop resets it.
func (c *Context) SetRiseForces(enabled bool) int {
	c.s.SetRiseForces(enabled)
	return c.ret(nil)
}

// SetHook installs a host force. With useProxy the hook receives the proxy
// position. The hook runs on the loop goroutine and is removed by Stop.
func (c *Context) SetHook(h ForceHook, useProxy bool) int {
	if h == nil {
		return c.ret(status.InvalidParams)
	}
	c.s.SetHook(h, useProxy)
	return c.ret(nil)
}

func (c *Context) RemoveHook() int { return c.ret(c.s.RemoveHook()) }
