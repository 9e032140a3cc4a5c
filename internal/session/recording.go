package session

import (
	"context"
	"fmt"

	"github.com/banshee-data/haptics/internal/monitoring"
	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/recording/export"
	"github.com/banshee-data/haptics/internal/security"
	"github.com/banshee-data/haptics/internal/status"
)

// InitLogging selects what the next recording captures. Objects are only
// checked when interaction forces are requested. The sampling rate resets
// to 1.
func (s *Session) InitLogging(opts recording.Options) error {
	var targets []recTarget
	if opts.InteractionForces {
		for _, id := range opts.Objects {
			n, err := s.objects.Node(id)
			if err != nil {
				return fmt.Errorf("object %d: %w", id, err)
			}
			targets = append(targets, recTarget{id: id, node: n})
		}
	} else {
		opts.Objects = nil
	}

	s.worldMu.Lock()
	s.recTargets = targets
	s.worldMu.Unlock()
	s.rec.Configure(opts)
	return nil
}

// StartLogging begins recording every samplingRate-th tick.
func (s *Session) StartLogging(samplingRate int) error {
	if err := s.rec.Start(samplingRate); err != nil {
		return err
	}
	monitoring.Logf("recording started in slot %d, sampling rate %d", s.rec.Slot(), samplingRate)
	return nil
}

// StopLoggingAndGet ends the recording and returns it.
func (s *Session) StopLoggingAndGet() (*recording.Buffer, error) {
	b, err := s.rec.Stop()
	if err != nil {
		return nil, err
	}
	monitoring.Logf("recording %s stopped with %d frames", b.ID, len(b.Frames))
	return b, nil
}

// StopLoggingAndSave ends the recording and writes it to path. The format
// follows the file extension.
func (s *Session) StopLoggingAndSave(ctx context.Context, path string) error {
	b, err := s.StopLoggingAndGet()
	if err != nil {
		return err
	}
	target, err := security.ResolveOutputPath(path, s.outputDir)
	if err != nil {
		return fmt.Errorf("%v: %w", err, status.ExportFailed)
	}
	if err := export.Save(ctx, s.fs, b, target); err != nil {
		monitoring.Logf("saving recording %s to %s failed: %v", b.ID, target, err)
		return fmt.Errorf("%v: %w", err, status.ExportFailed)
	}
	monitoring.Logf("recording %s saved to %s", b.ID, target)
	return nil
}

// IsLogging returns nil while recording.
func (s *Session) IsLogging() error {
	if !s.rec.Active() {
		return status.NotRecording
	}
	return nil
}

// Tick advances the host tick counter stamped into recorded frames. It
// only counts while the loop runs.
func (s *Session) Tick() {
	if s.running.Load() {
		s.ticks.Add(1)
	}
}

// Ticks returns the host tick counter.
func (s *Session) Ticks() uint32 {
	return s.ticks.Load()
}

// LogAnnotate records an extra frame carrying note.
func (s *Session) LogAnnotate(note string) error {
	if !s.running.Load() {
		return status.NotRunning
	}
	if !s.rec.Active() {
		return status.NotRecording
	}
	s.worldMu.Lock()
	if s.tool == nil {
		s.worldMu.Unlock()
		return status.NotInitialized
	}
	f := s.sample(s.clock.Now(), note)
	s.worldMu.Unlock()
	return s.rec.Annotate(f)
}

// LogFrame returns the number of frames recorded so far, or -1 when not
// recording.
func (s *Session) LogFrame() int {
	return s.rec.FrameCount()
}
