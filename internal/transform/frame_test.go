package transform

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/haptics/internal/status"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "component %d: want %v, got %v", i, want, got)
	}
}

func assertQuat(t *testing.T, want, got mgl64.Quat) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, eps, "w: want %v, got %v", want, got)
	assertVec(t, want.V, got.V)
}

func TestPositionToEngine(t *testing.T) {
	point := mgl64.Vec3{100, 20, 3}

	cases := []struct {
		name        string
		mapping     *[3]int
		scale       *mgl64.Vec3
		translation *mgl64.Vec3
		euler       *mgl64.Vec3
		want        mgl64.Vec3
	}{
		{name: "identity", want: point},
		{name: "mirror", mapping: &[3]int{2, 3, -1}, want: mgl64.Vec3{-3, 100, 20}},
		{name: "scale", scale: &mgl64.Vec3{0.1, 10, 100}, want: mgl64.Vec3{10, 200, 300}},
		{
			name:    "mirror and scale",
			mapping: &[3]int{2, 3, -1}, scale: &mgl64.Vec3{0.1, 10, 100},
			want: mgl64.Vec3{-300, 10, 200},
		},
		{name: "translation", translation: &mgl64.Vec3{4, 5, 6}, want: mgl64.Vec3{104, 25, 9}},
		{
			name:  "scale and translation",
			scale: &mgl64.Vec3{0.1, 10, 100}, translation: &mgl64.Vec3{4, 5, 6},
			want: mgl64.Vec3{14, 205, 306},
		},
		{
			name:    "mirror and translation",
			mapping: &[3]int{2, 3, -1}, translation: &mgl64.Vec3{4, 5, 6},
			want: mgl64.Vec3{1, 105, 26},
		},
		{
			name:    "mirror scale and translation",
			mapping: &[3]int{2, 3, -1}, scale: &mgl64.Vec3{0.1, 10, 100}, translation: &mgl64.Vec3{4, 5, 6},
			want: mgl64.Vec3{-296, 15, 206},
		},
		{name: "rotate x 180", euler: &mgl64.Vec3{180, 0, 0}, want: mgl64.Vec3{100, -20, -3}},
		{name: "rotate y 180", euler: &mgl64.Vec3{0, 180, 0}, want: mgl64.Vec3{-100, 20, -3}},
		{name: "rotate z 180", euler: &mgl64.Vec3{0, 0, 180}, want: mgl64.Vec3{-100, -20, 3}},
		{name: "rotate x 90", euler: &mgl64.Vec3{90, 0, 0}, want: mgl64.Vec3{100, 3, -20}},
		{name: "rotate y 90", euler: &mgl64.Vec3{0, 90, 0}, want: mgl64.Vec3{-3, 20, 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFrame()
			if tc.mapping != nil {
				require.NoError(t, f.SetAxisMapping(tc.mapping[0], tc.mapping[1], tc.mapping[2]))
			}
			if tc.scale != nil {
				require.NoError(t, f.SetScale(tc.scale[0], tc.scale[1], tc.scale[2]))
			}
			if tc.translation != nil {
				f.SetTranslation(tc.translation[0], tc.translation[1], tc.translation[2])
			}
			if tc.euler != nil {
				f.SetRotationEuler(tc.euler[0], tc.euler[1], tc.euler[2])
			}

			got := f.PositionToEngine(point)
			assertVec(t, tc.want, got)
			assertVec(t, point, f.PositionToCaller(got))
		})
	}
}

func TestValidateAxisMapping(t *testing.T) {
	valid := 0
	for x := -4; x <= 4; x++ {
		for y := -4; y <= 4; y++ {
			for z := -4; z <= 4; z++ {
				err := ValidateAxisMapping(x, y, z)
				ax, ay, az := abs(x), abs(y), abs(z)

				var want error
				switch {
				case ax+ay+az != 6:
					want = status.InvalidParamsSumNotSix
				case ax > 3 || ay > 3 || az > 3:
					want = status.InvalidParamsGreaterThanThree
				case ax == ay || ay == az || ax == az:
					want = status.InvalidParamsSameValue
				}
				if want == nil {
					valid++
					require.NoError(t, err, "(%d,%d,%d)", x, y, z)
					continue
				}
				require.ErrorIs(t, err, want, "(%d,%d,%d)", x, y, z)
			}
		}
	}
	// 3! permutations times 2³ sign combinations.
	assert.Equal(t, 48, valid)
}

func TestSetAxisMappingRejectsWithoutMutation(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.SetAxisMapping(2, -3, 1))

	cases := []struct {
		x, y, z int
		want    status.Code
	}{
		{1, 2, 2, status.InvalidParamsSumNotSix},
		{0, 2, 4, status.InvalidParamsGreaterThanThree},
		{3, 3, 0, status.InvalidParamsSameValue},
		{-2, 2, 2, status.InvalidParamsSameValue},
	}
	for _, tc := range cases {
		err := f.SetAxisMapping(tc.x, tc.y, tc.z)
		assert.Equal(t, tc.want, status.Of(err))
		assert.Equal(t, [3]int{2, -3, 1}, f.AxisMapping())
		assert.Equal(t, [3]int{1, 2, 0}, f.Order())
		assert.Equal(t, [3]int{1, -1, 1}, f.Mirror())
	}
}

func TestQuaternionMirror(t *testing.T) {
	cases := []struct {
		mapping [3]int
		want    [4]float64
	}{
		{[3]int{1, 2, 3}, [4]float64{1, 1, 1, 1}},
		{[3]int{2, 3, 1}, [4]float64{1, 1, 1, 1}},
		{[3]int{-1, -2, 3}, [4]float64{1, -1, -1, 1}},
		{[3]int{-1, 2, 3}, [4]float64{1, 1, -1, -1}},
		{[3]int{2, 1, 3}, [4]float64{1, -1, -1, -1}},
		{[3]int{2, 3, -1}, [4]float64{1, -1, -1, 1}},
	}
	for _, tc := range cases {
		f := NewFrame()
		require.NoError(t, f.SetAxisMapping(tc.mapping[0], tc.mapping[1], tc.mapping[2]))
		assert.Equal(t, tc.want, f.QuaternionMirror(), "mapping %v", tc.mapping)
	}
}

func TestRotationFollowsPositions(t *testing.T) {
	// Rotating a caller point by q and mapping it must agree with mapping the
	// point and rotating it by the mapped q.
	f := NewFrame()
	require.NoError(t, f.SetAxisMapping(-2, 3, 1))
	f.SetRotationEuler(30, -45, 10)

	q := EulerXYZ(12, 70, -33)
	p := mgl64.Vec3{0.3, -1.2, 2.5}

	viaCaller := f.VectorToEngine(q.Rotate(p))
	viaEngine := f.RotationToEngine(q).Rotate(f.VectorToEngine(p))
	assertVec(t, viaCaller, viaEngine)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	perms := [][3]int{{1, 2, 3}, {1, 3, 2}, {2, 1, 3}, {2, 3, 1}, {3, 1, 2}, {3, 2, 1}}

	for i := 0; i < 200; i++ {
		f := NewFrame()
		m := perms[rng.Intn(len(perms))]
		for j := range m {
			if rng.Intn(2) == 0 {
				m[j] = -m[j]
			}
		}
		require.NoError(t, f.SetAxisMapping(m[0], m[1], m[2]))
		require.NoError(t, f.SetScale(0.1+rng.Float64()*10, 0.1+rng.Float64()*10, 0.1+rng.Float64()*10))
		f.SetTranslation(rng.NormFloat64()*5, rng.NormFloat64()*5, rng.NormFloat64()*5)
		f.SetRotationEuler(rng.Float64()*360, rng.Float64()*360, rng.Float64()*360)

		p := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		assertVec(t, p, f.PositionToCaller(f.PositionToEngine(p)))
		assertVec(t, p, f.VectorToCaller(f.VectorToEngine(p)))

		q := EulerXYZ(rng.Float64()*360, rng.Float64()*360, rng.Float64()*360)
		assertQuat(t, q, f.RotationToCaller(f.RotationToEngine(q)))
	}
}

func TestSetScaleRejectsNonPositive(t *testing.T) {
	f := NewFrame()
	assert.Equal(t, status.InvalidParams, status.Of(f.SetScale(1, 0, 1)))
	assert.Equal(t, status.InvalidParams, status.Of(f.SetScale(-1, 1, 1)))
	assertVec(t, mgl64.Vec3{1, 1, 1}, f.Scale())
}

func TestSetRotationNormalises(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.SetRotation(mgl64.Quat{W: 2}))
	assert.Equal(t, mgl64.QuatIdent(), f.Rotation())
	assert.Equal(t, status.InvalidParams, status.Of(f.SetRotation(mgl64.Quat{})))
}

func TestScaleToEngine(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.SetAxisMapping(3, -1, 2))
	assertVec(t, mgl64.Vec3{2, 3, 1}, f.ScaleToEngine(mgl64.Vec3{1, 2, 3}))
}
