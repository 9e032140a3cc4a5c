package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/haptics/internal/recording"
)

func testBuffer() *recording.Buffer {
	return &recording.Buffer{
		ID:           uuid.MustParse("6f1c3c1e-9a4e-4d55-8a56-0d8f5e1b2c3a"),
		Started:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		SamplingRate: 2,
		Options: recording.Options{
			Position: true, Velocity: true, Force: true,
			InteractionForces: true, Objects: []int{1},
		},
		Frames: []recording.Frame{
			{
				Timestamp: 1709294400000, Ticks: 0,
				Position: [3]float64{0.1, 0.2, 0.3}, Velocity: [3]float64{0, 0, 1}, Force: [3]float64{1, 0, 0},
				Interactions: []recording.Interaction{{Object: 1, Force: [3]float64{1, 0, 0}}},
				Note:         recording.AutoNote,
			},
			{Timestamp: 1709294400002, Ticks: 1, Note: "button pressed"},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "recordings.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	want := testBuffer()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx, want.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recording mismatch (-want +got):\n%s", diff)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Summary{ID: want.ID, Started: want.Started, SamplingRate: 2, FrameCount: 2}, list[0])

	assert.Error(t, s.Save(ctx, want), "duplicate id")
}

func TestLoadMissing(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "recordings.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recordings.db")
	s, err := Open(path)
	require.NoError(t, err)
	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.MigrateUp())
}
