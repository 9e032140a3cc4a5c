package haptics

import "context"

// InitLogging selects what the next recording captures. Object ids are
// only checked when interaction forces are requested.
func (c *Context) InitLogging(opts RecordingOptions) int {
	return c.ret(c.s.InitLogging(opts))
}

// StartLogging starts recording every samplingRate-th loop tick.
func (c *Context) StartLogging(samplingRate int) int {
	return c.ret(c.s.StartLogging(samplingRate))
}

// StopLoggingAndSave stops recording and writes the frames to path. The
// extension picks the format: .db or .sqlite for a SQLite store, .png for
// a plot, .html for a chart and CSV otherwise.
func (c *Context) StopLoggingAndSave(ctx context.Context, path string) int {
	return c.ret(c.s.StopLoggingAndSave(ctx, path))
}

// StopLoggingAndGet stops recording and returns the frames.
func (c *Context) StopLoggingAndGet() (*Recording, int) {
	b, err := c.s.StopLoggingAndGet()
	return b, c.ret(err)
}

func (c *Context) IsLogging() int { return c.ret(c.s.IsLogging()) }

// Tick advances the host tick counter stamped into recorded frames.
func (c *Context) Tick() { c.s.Tick() }

// LogAnnotate records an extra frame carrying note.
func (c *Context) LogAnnotate(note string) int {
	return c.ret(c.s.LogAnnotate(note))
}

// GetLogFrame returns the number of frames recorded so far, or -1 when not
// recording.
func (c *Context) GetLogFrame() int { return c.s.LogFrame() }
