package scene

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/haptics/internal/device/sim"
	"github.com/banshee-data/haptics/internal/status"
)

func newTestTool(t *testing.T) (*World, *Tool, *sim.Device) {
	t.Helper()
	w := NewWorld()
	dev := sim.New(sim.DefaultSpecs())
	tool := NewTool(w, dev, 0.01, 1)
	require.NoError(t, tool.Start())
	tool.SetForcesOn()
	return w, tool, dev
}

func TestSphereContact(t *testing.T) {
	w, tool, dev := newTestTool(t)

	n := NewSphere(0.05)
	n.Material = Material{Surface: true, Stiffness: 1000}
	n.CreateCollisionDetector(tool.Radius())
	require.True(t, w.AddChild(n))
	require.False(t, w.AddChild(n))
	w.ComputeGlobalPositions(true)

	// Tool surface 0.005 inside the sphere along +X.
	dev.SetPose(mgl64.Vec3{0.055, 0, 0}, mgl64.Vec3{})
	require.NoError(t, tool.UpdateFromDevice())
	tool.ComputeInteractionForces()
	require.NoError(t, tool.ApplyToDevice())

	f := dev.Force()
	assert.InDelta(t, 5, f.X(), 1e-9)
	assert.InDelta(t, 0, f.Y(), 1e-12)
	assert.InDelta(t, 0.06, tool.Proxy().X(), 1e-12)
	assert.Equal(t, f, n.ContactForce())

	// Out of reach.
	dev.SetPose(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{})
	require.NoError(t, tool.UpdateFromDevice())
	tool.ComputeInteractionForces()
	require.NoError(t, tool.ApplyToDevice())
	assert.Equal(t, mgl64.Vec3{}, dev.Force())
}

func TestBoxContactFromInside(t *testing.T) {
	w, tool, dev := newTestTool(t)

	n := NewBox(mgl64.Vec3{0.2, 0.2, 0.2})
	n.Material = Material{Surface: true, Stiffness: 100}
	n.SetPosition(mgl64.Vec3{0, -0.1, 0})
	w.AddChild(n)
	w.ComputeGlobalPositions(false)

	// Tool centre 0.01 below the top face.
	dev.SetPose(mgl64.Vec3{0.02, -0.01, 0}, mgl64.Vec3{})
	require.NoError(t, tool.UpdateFromDevice())
	tool.ComputeInteractionForces()
	require.NoError(t, tool.ApplyToDevice())

	assert.InDelta(t, 2, dev.Force().Y(), 1e-9)
	assert.InDelta(t, 0, dev.Force().X(), 1e-12)
}

func TestDisabledNodeHasNoContact(t *testing.T) {
	w, tool, dev := newTestTool(t)
	n := NewSphere(0.05)
	n.Material = Material{Surface: true, Stiffness: 1000}
	n.Enabled = false
	w.AddChild(n)
	w.ComputeGlobalPositions(true)

	dev.SetPose(mgl64.Vec3{0.04, 0, 0}, mgl64.Vec3{})
	require.NoError(t, tool.UpdateFromDevice())
	tool.ComputeInteractionForces()
	require.NoError(t, tool.ApplyToDevice())
	assert.Equal(t, mgl64.Vec3{}, dev.Force())
}

func TestForceShaping(t *testing.T) {
	t.Run("clamped to device maximum", func(t *testing.T) {
		_, tool, dev := newTestTool(t)
		tool.AddForce(mgl64.Vec3{0, 0, 100})
		require.NoError(t, tool.ApplyToDevice())
		assert.InDelta(t, sim.DefaultSpecs().MaxLinearForce, dev.Force().Z(), 1e-9)
	})
	t.Run("off sends zero", func(t *testing.T) {
		_, tool, dev := newTestTool(t)
		require.NoError(t, tool.SetForcesOff())
		tool.AddForce(mgl64.Vec3{1, 0, 0})
		require.NoError(t, tool.ApplyToDevice())
		assert.Equal(t, mgl64.Vec3{}, dev.Force())
	})
	t.Run("wait for small forces", func(t *testing.T) {
		_, tool, dev := newTestTool(t)
		tool.SetWaitForSmallForce(true)
		tool.SetForcesOn()

		tool.AddForce(mgl64.Vec3{1, 0, 0})
		require.NoError(t, tool.ApplyToDevice())
		assert.Equal(t, mgl64.Vec3{}, dev.Force())

		tool.ComputeInteractionForces()
		tool.AddForce(mgl64.Vec3{0.1, 0, 0})
		require.NoError(t, tool.ApplyToDevice())
		assert.Equal(t, mgl64.Vec3{0.1, 0, 0}, dev.Force())

		tool.ComputeInteractionForces()
		tool.AddForce(mgl64.Vec3{1, 0, 0})
		require.NoError(t, tool.ApplyToDevice())
		assert.Equal(t, mgl64.Vec3{1, 0, 0}, dev.Force())
	})
	t.Run("rise", func(t *testing.T) {
		_, tool, dev := newTestTool(t)
		tool.SetUseForceRise(true)
		tool.SetForcesOn()
		for i := 1; i <= RiseTicks+1; i++ {
			tool.ComputeInteractionForces()
			tool.AddForce(mgl64.Vec3{2, 0, 0})
			require.NoError(t, tool.ApplyToDevice())
			if i == RiseTicks/2 {
				assert.InDelta(t, 1, dev.Force().X(), 1e-9)
			}
		}
		assert.InDelta(t, 2, dev.Force().X(), 1e-9)
	})
}

func TestWorkspaceScale(t *testing.T) {
	w := NewWorld()
	dev := sim.New(sim.DefaultSpecs())
	tool := NewTool(w, dev, 0.01, 10)
	require.NoError(t, tool.Start())
	dev.SetPose(mgl64.Vec3{0.1, 0, 0}, mgl64.Vec3{0, 0.2, 0})
	dev.SetButton(0, true)
	require.NoError(t, tool.UpdateFromDevice())
	assert.InDelta(t, 1, tool.Position().X(), 1e-12)
	assert.InDelta(t, 2, tool.Velocity().Y(), 1e-12)
	assert.Equal(t, mgl64.Vec3{0.1, 0, 0}, tool.DeviceState().Position)
	assert.True(t, tool.Button(0))
	assert.False(t, tool.Button(1))
}

func TestNodeScaling(t *testing.T) {
	s := NewSphere(1)
	s.ScaleXYZ(mgl64.Vec3{2, 5, 7})
	assert.Equal(t, 2.0, s.Radius())

	b := NewBox(mgl64.Vec3{1, 2, 3})
	b.Scale(2)
	assert.Equal(t, mgl64.Vec3{2, 4, 6}, b.Size())

	m, err := NewMesh([]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, [][3]int{{0, 1, 2}}, nil)
	require.NoError(t, err)
	m.ScaleXYZ(mgl64.Vec3{2, 3, 1})
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, m.Vertices()[2])
}

func TestNewMeshValidation(t *testing.T) {
	verts := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	_, err := NewMesh(verts, nil, [][3]int{{0, 1, 3}}, nil)
	assert.Equal(t, status.InvalidParams, status.Of(err))
	_, err = NewMesh(verts, []mgl64.Vec3{{0, 0, 1}}, nil, nil)
	assert.Equal(t, status.InvalidParams, status.Of(err))
}

func TestGlobalBoundsFollowRotation(t *testing.T) {
	w := NewWorld()
	n := NewBox(mgl64.Vec3{2, 0.2, 0.2})
	n.SetRotation(mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 0, 1}))
	w.AddChild(n)
	w.ComputeGlobalPositions(false)
	lo, hi := n.Bounds()
	assert.InDelta(t, -1, lo.Y(), 1e-9)
	assert.InDelta(t, 1, hi.Y(), 1e-9)
	assert.InDelta(t, 0.1, hi.X(), 1e-9)
	assert.Equal(t, 0, w.Recomputes())
	w.ComputeGlobalPositions(true)
	assert.Equal(t, 1, w.Recomputes())
}

func TestWriteOBJ(t *testing.T) {
	m, err := NewMesh(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		nil, [][3]int{{0, 1, 2}}, [][2]float64{{0, 0}, {1, 0}, {0, 1}},
	)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, m.WriteOBJ(&buf))
	assert.Equal(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1 2 3\n", buf.String())

	assert.Equal(t, status.NotAMesh, status.Of(NewSphere(1).WriteOBJ(&buf)))
}

func TestNewTexture(t *testing.T) {
	tex, err := NewTexture(2, 1, []float32{0, 1}, true)
	require.NoError(t, err)
	assert.Equal(t, []int8{-128, 127}, tex.Pixels)
	assert.True(t, tex.Spherical)

	_, err = NewTexture(2, 2, []float32{0, 1}, false)
	assert.Equal(t, status.FailAllocateTexture, status.Of(err))
	_, err = NewTexture(0, 2, nil, false)
	assert.Equal(t, status.FailAllocateTexture, status.Of(err))
}

func TestStopClosesDeviceWhenForceWriteFails(t *testing.T) {
	_, tool, dev := newTestTool(t)
	stuck := errors.New("bridge stalled")
	dev.FailWrites(stuck)

	err := tool.Stop()
	assert.ErrorIs(t, err, stuck)
	assert.False(t, dev.IsOpen())

	dev.FailWrites(nil)
	require.NoError(t, dev.Open())
	assert.NoError(t, tool.Stop())
}

func TestComputeGlobalPositionsRefreshesMovedNodes(t *testing.T) {
	w := NewWorld()
	n := NewSphere(0.1)
	w.AddChild(n)
	w.ComputeGlobalPositions(false)

	n.SetPosition(mgl64.Vec3{1, 0, 0})
	w.ComputeGlobalPositions(false)
	lo, hi := n.Bounds()
	assert.InDelta(t, 0.9, lo.X(), 1e-9)
	assert.InDelta(t, 1.1, hi.X(), 1e-9)
	assert.Equal(t, 0, w.Recomputes())

	w.ComputeGlobalPositions(true)
	lo2, hi2 := n.Bounds()
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)
	assert.Equal(t, 1, w.Recomputes())

	assert.False(t, w.DynamicObjects())
	w.SetDynamicObjects(true)
	assert.True(t, w.DynamicObjects())
}
