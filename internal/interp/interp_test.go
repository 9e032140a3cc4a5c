package interp

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/haptics/internal/status"
)

func TestNewIsSettled(t *testing.T) {
	s := New(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
	assert.False(t, s.Active())
	_, moved := s.Step()
	assert.False(t, moved)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, DefaultCycles, s.Cycles)
	assert.Equal(t, 1.0, s.Overshoot)
}

func TestCompletesOnTickAfterPeriod(t *testing.T) {
	for _, cycles := range []int{1, 2, 5, 20} {
		s := New(mgl64.Vec3{}, mgl64.QuatIdent())
		s.SetPositionEnabled(true)
		require.NoError(t, s.SetPeriod(cycles, 1))
		dest := mgl64.Vec3{10, -4, 2}
		s.SetPosition(dest)

		prev := -1.0
		for tick := 1; tick <= cycles; tick++ {
			p, moved := s.Step()
			require.True(t, moved)
			require.False(t, p.Completed, "cycles=%d tick=%d", cycles, tick)
			require.True(t, p.HasPosition)
			assert.False(t, p.HasRotation)
			assert.False(t, s.PositionReached)

			ratio := p.Position.X() / dest.X()
			assert.Greater(t, ratio, prev)
			assert.InDelta(t, float64(tick)/float64(cycles), ratio, 1e-12)
			prev = ratio
		}

		p, moved := s.Step()
		require.True(t, moved)
		assert.True(t, p.Completed, "cycles=%d", cycles)
		assert.True(t, s.PositionReached)
		assert.True(t, s.RotationReached)
		assert.False(t, p.HasPosition)
		assert.False(t, p.HasRotation)
		assert.Equal(t, dest, s.SourcePosition)
		assert.Equal(t, 0, s.Current)

		_, moved = s.Step()
		assert.False(t, moved)
	}
}

func TestCompletionLeavesLastInterpolatedPose(t *testing.T) {
	tests := []struct {
		name      string
		overshoot float64
		want      []float64
	}{
		// 4×1.5 = 6 interpolated ticks, the last two beyond the destination.
		{"overshoot past destination", 1.5, []float64{2, 4, 6, 8, 10, 12}},
		{"stop short of destination", 0.5, []float64{2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(mgl64.Vec3{}, mgl64.QuatIdent())
			s.SetPositionEnabled(true)
			require.NoError(t, s.SetPeriod(4, tt.overshoot))
			s.SetPosition(mgl64.Vec3{8, 0, 0})

			var xs []float64
			for {
				p, moved := s.Step()
				require.True(t, moved)
				if p.Completed {
					assert.False(t, p.HasPosition)
					assert.False(t, p.HasRotation)
					break
				}
				require.True(t, p.HasPosition)
				xs = append(xs, p.Position.X())
			}
			assert.Equal(t, tt.want, xs)
			assert.True(t, s.PositionReached)
			assert.Equal(t, mgl64.Vec3{8, 0, 0}, s.SourcePosition)
		})
	}
}

func TestOneShotWhileDisabled(t *testing.T) {
	s := New(mgl64.Vec3{}, mgl64.QuatIdent())
	s.SetPosition(mgl64.Vec3{1, 1, 1})

	assert.True(t, s.PositionEnabled)
	assert.False(t, s.PositionReached)
	assert.Equal(t, 1, s.Cycles)
	assert.Equal(t, 0, s.Current)

	p, moved := s.Step()
	require.True(t, moved)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, p.Position)
	assert.False(t, p.HasRotation)

	p, _ = s.Step()
	assert.True(t, p.Completed)
}

func TestRetargetKeepsProgress(t *testing.T) {
	s := New(mgl64.Vec3{}, mgl64.QuatIdent())
	s.SetPositionEnabled(true)
	require.NoError(t, s.SetPeriod(10, 1))
	s.SetPosition(mgl64.Vec3{10, 0, 0})

	for i := 0; i < 4; i++ {
		s.Step()
	}
	s.SetPosition(mgl64.Vec3{20, 0, 0})
	assert.Equal(t, 4, s.Current)
	assert.Equal(t, mgl64.Vec3{}, s.SourcePosition)

	p, _ := s.Step()
	assert.InDelta(t, 10, p.Position.X(), 1e-12)
}

func TestRotationSlerp(t *testing.T) {
	s := New(mgl64.Vec3{}, mgl64.QuatIdent())
	s.SetRotationEnabled(true)
	require.NoError(t, s.SetPeriod(2, 1))
	dest := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	s.SetRotation(dest)

	p, _ := s.Step()
	require.True(t, p.HasRotation)
	assert.False(t, p.HasPosition)
	half := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, half.W, p.Rotation.W, 1e-9)
	assert.InDelta(t, half.V.Z(), p.Rotation.V.Z(), 1e-9)

	p, _ = s.Step()
	assert.InDelta(t, dest.W, p.Rotation.W, 1e-9)

	p, _ = s.Step()
	assert.True(t, p.Completed)
	assert.Equal(t, dest, s.SourceRotation)
}

func TestSetPeriod(t *testing.T) {
	t.Run("negative cycles", func(t *testing.T) {
		s := New(mgl64.Vec3{}, mgl64.QuatIdent())
		assert.Equal(t, status.NegativeCycles, status.Of(s.SetPeriod(-1, 1)))
		assert.Equal(t, DefaultCycles, s.Cycles)
	})
	t.Run("zero cycles disables", func(t *testing.T) {
		s := New(mgl64.Vec3{}, mgl64.QuatIdent())
		s.SetPositionEnabled(true)
		s.SetRotationEnabled(true)
		require.NoError(t, s.SetPeriod(0, 1))
		assert.False(t, s.PositionEnabled)
		assert.False(t, s.RotationEnabled)

		s.SetPositionEnabled(true)
		assert.Equal(t, DefaultCycles, s.Cycles)
	})
	t.Run("overshoot too low still disables", func(t *testing.T) {
		s := New(mgl64.Vec3{}, mgl64.QuatIdent())
		s.SetPositionEnabled(true)
		assert.Equal(t, status.OvershootTooLow, status.Of(s.SetPeriod(0, 0)))
		assert.False(t, s.PositionEnabled)
		assert.Equal(t, status.OvershootTooLow, status.Of(s.SetPeriod(5, -1)))
	})
	t.Run("resets progress", func(t *testing.T) {
		s := New(mgl64.Vec3{}, mgl64.QuatIdent())
		s.SetPositionEnabled(true)
		s.SetPosition(mgl64.Vec3{1, 0, 0})
		s.Step()
		require.NoError(t, s.SetPeriod(7, 2))
		assert.Equal(t, 0, s.Current)
		assert.Equal(t, 7, s.Cycles)
		assert.Equal(t, 2.0, s.Overshoot)
	})
}

func TestEnableResetsPositionCycle(t *testing.T) {
	s := New(mgl64.Vec3{}, mgl64.QuatIdent())
	s.SetPositionEnabled(true)
	s.SetPosition(mgl64.Vec3{1, 0, 0})
	s.Step()
	s.Step()
	s.SetRotationEnabled(true)
	assert.Equal(t, 2, s.Current)
	s.SetPositionEnabled(false)
	assert.Equal(t, 0, s.Current)
	assert.False(t, s.PositionEnabled)
}
