package recording

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/haptics/internal/status"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestStartStopErrors(t *testing.T) {
	r := New(fixedNow)

	_, err := r.Stop()
	assert.Equal(t, status.NotRecording, status.Of(err))
	assert.Equal(t, status.SamplingTooSmall, status.Of(r.Start(0)))
	assert.Equal(t, status.SamplingTooSmall, status.Of(r.Start(-3)))
	assert.False(t, r.Active())

	require.NoError(t, r.Start(1))
	assert.Equal(t, status.AlreadyRecording, status.Of(r.Start(1)))
	assert.True(t, r.Active())

	_, err = r.Stop()
	require.NoError(t, err)
	_, err = r.Stop()
	assert.Equal(t, status.NotRecording, status.Of(err))
}

func TestSampling(t *testing.T) {
	r := New(fixedNow)
	assert.False(t, r.ShouldSample(0))

	require.NoError(t, r.Start(3))
	var sampled []int64
	for loop := int64(1); loop <= 10; loop++ {
		if r.ShouldSample(loop) {
			sampled = append(sampled, loop)
			r.Append(Frame{Ticks: uint32(loop), Note: AutoNote})
		}
	}
	assert.Equal(t, []int64{3, 6, 9}, sampled)
	assert.Equal(t, 3, r.FrameCount())

	buf, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, 3, buf.SamplingRate)
	assert.Len(t, buf.Frames, 3)
	assert.Equal(t, fixedNow(), buf.Started)
	assert.Equal(t, -1, r.FrameCount())

	r.Append(Frame{})
	assert.Len(t, buf.Frames, 3)
}

func TestPoolRotatesPastCapacity(t *testing.T) {
	r := New(fixedNow)
	seen := make(map[string]bool)

	for cycle := 0; cycle < 5*PoolSize+1; cycle++ {
		assert.Equal(t, cycle%PoolSize, r.Slot())
		require.NoError(t, r.Start(1))
		for i := 0; i <= cycle; i++ {
			r.Append(Frame{Ticks: uint32(i)})
		}
		buf, err := r.Stop()
		require.NoError(t, err)
		require.NotNil(t, buf)
		assert.Len(t, buf.Frames, cycle+1)
		assert.False(t, seen[buf.ID.String()])
		seen[buf.ID.String()] = true
	}
}

func TestConfigure(t *testing.T) {
	r := New(fixedNow)
	assert.Equal(t, DefaultOptions(), r.Options())

	require.NoError(t, r.Start(5))
	_, err := r.Stop()
	require.NoError(t, err)
	assert.Equal(t, 5, r.SamplingRate())

	objects := []int{1, 2}
	opts := Options{DeviceCoordinates: true, Position: true, InteractionForces: true, Objects: objects}
	r.Configure(opts)
	objects[0] = 99
	assert.Equal(t, 1, r.SamplingRate())

	require.NoError(t, r.Start(1))
	buf, err := r.Stop()
	require.NoError(t, err)
	want := Options{DeviceCoordinates: true, Position: true, InteractionForces: true, Objects: []int{1, 2}}
	if diff := cmp.Diff(want, buf.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotate(t *testing.T) {
	r := New(fixedNow)
	assert.Equal(t, status.NotRecording, status.Of(r.Annotate(Frame{Note: "x"})))

	require.NoError(t, r.Start(1))
	require.NoError(t, r.Annotate(Frame{Note: "trial 1"}))
	buf, err := r.Stop()
	require.NoError(t, err)
	require.Len(t, buf.Frames, 1)
	assert.Equal(t, "trial 1", buf.Frames[0].Note)
}

func TestConcurrentAppendAndStop(t *testing.T) {
	r := New(fixedNow)
	for cycle := 0; cycle < 20; cycle++ {
		require.NoError(t, r.Start(1))
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for loop := int64(1); loop < 500; loop++ {
				if r.ShouldSample(loop) {
					r.Append(Frame{Ticks: uint32(loop)})
				}
			}
		}()
		buf, err := r.Stop()
		wg.Wait()
		require.NoError(t, err)
		for i := 1; i < len(buf.Frames); i++ {
			assert.Less(t, buf.Frames[i-1].Ticks, buf.Frames[i].Ticks)
		}
	}
}
