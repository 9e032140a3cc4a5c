package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/haptics/internal/fsutil"
	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/recording/store"
)

func sampleBuffer() *recording.Buffer {
	opts := recording.DefaultOptions()
	opts.InteractionForces = true
	opts.Objects = []int{3}
	return &recording.Buffer{
		ID:           uuid.MustParse("6f1c2a8e-4b7d-4e0a-9a51-0c3f5e2d7b19"),
		SamplingRate: 1,
		Options:      opts,
		Frames: []recording.Frame{
			{
				Timestamp:    1700000000000,
				Position:     [3]float64{0.1, -0.2, 0.5},
				Force:        [3]float64{1.5, 0, -2},
				Interactions: []recording.Interaction{{Object: 3, Force: [3]float64{0.25, 0, 0}}},
				Note:         recording.AutoNote,
			},
			{
				Timestamp: 1700000000001,
				Ticks:     1,
				Position:  [3]float64{0.125, -0.2, 0.5},
				Velocity:  [3]float64{25, 0, 0},
				Note:      "touch, left",
			},
		},
	}
}

func TestWriteCSVGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("interactions", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleBuffer()))
		g.Assert(t, "interactions", buf.Bytes())
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, &recording.Buffer{Options: recording.DefaultOptions()}))
		g.Assert(t, "empty", buf.Bytes())
	})
}

func TestHeaderDerivesObjectsFromFrames(t *testing.T) {
	b := sampleBuffer()
	b.Options.Objects = nil
	b.Frames[1].Interactions = []recording.Interaction{{Object: 1}}

	h := Header(b)
	assert.Equal(t, []string{
		"interaction_1_x", "interaction_1_y", "interaction_1_z",
		"interaction_3_x", "interaction_3_y", "interaction_3_z",
		"notes",
	}, h[len(baseColumns):])
}

func TestReadCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleBuffer()))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)

	want := sampleBuffer()
	want.Frames[1].Interactions = []recording.Interaction{{Object: 3}}
	if diff := cmp.Diff(want.Frames, got.Frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want.Options, got.Options)
}

func TestReadCSVRejectsForeignFiles(t *testing.T) {
	for name, input := range map[string]string{
		"empty":        "",
		"wrong header": "a,b,c\n",
		"no notes":     strings.Join(baseColumns, ",") + ",extra\n",
		"bad number":   strings.Join(append(append([]string(nil), baseColumns...), "notes"), ",") + "\n0,x,0,0,0,0,0,0,0,0,0,0,\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"out.csv":     CSV,
		"out.log":     CSV,
		"out":         CSV,
		"out.txt":     CSV,
		"out.db":      SQLite,
		"out.SQLITE":  SQLite,
		"out.sqlite3": SQLite,
		"out.png":     PNG,
		"out.html":    HTML,
	}
	for path, want := range cases {
		assert.Equal(t, want, FormatFor(path), path)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, sampleBuffer()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleBuffer()))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "position_x")
	assert.Contains(t, out, "force_z")
}

func TestSaveDispatchesByExtension(t *testing.T) {
	ctx := context.Background()
	fsys := fsutil.NewMemoryFileSystem()
	b := sampleBuffer()

	for _, name := range []string{"run.csv", "run.log", "run.png", "run.html"} {
		require.NoError(t, Save(ctx, fsys, b, filepath.Join("/rec", name)), name)
	}
	assert.Len(t, fsys.Files(), 4)

	csvData, err := fsys.ReadFile("/rec/run.csv")
	require.NoError(t, err)
	logData, err := fsys.ReadFile("/rec/run.log")
	require.NoError(t, err)
	assert.Equal(t, csvData, logData)

	loaded, err := Load(ctx, fsys, "/rec/run.csv")
	require.NoError(t, err)
	assert.Len(t, loaded.Frames, 2)

	_, err = Load(ctx, fsys, "/rec/run.png")
	assert.Error(t, err)
}

func TestSaveSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "run.db")
	b := sampleBuffer()

	require.NoError(t, Save(ctx, fsutil.OSFileSystem{}, b, path))

	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.Frames, 2)

	loaded, err := Load(ctx, fsutil.OSFileSystem{}, path)
	require.NoError(t, err)
	assert.Equal(t, b.ID, loaded.ID)
}
