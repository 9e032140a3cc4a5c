// Package transform converts positions, directions and rotations between the
// caller's coordinate frame and the engine frame the haptic device works in.
//
// A Frame is made of a signed axis mapping (order and mirror), a per-axis
// scale, a rotation and a translation expressed in the engine frame:
//
//	engine = P(R⁻¹(S·caller)) + T
//	caller = S⁻¹(R(P⁻¹(engine − T)))
//
// where P is the signed permutation described by the axis mapping. The two
// directions are exact inverses of each other.
package transform

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/haptics/internal/status"
)

// Frame holds the caller frame configuration. All methods are safe for
// concurrent use. The lock is a leaf: no other lock is taken while it is
// held.
type Frame struct {
	mu sync.RWMutex

	mapping     [3]int
	order       [3]int
	mirror      [3]float64
	quatMirror  [4]float64
	scale       mgl64.Vec3
	translation mgl64.Vec3
	rotation    mgl64.Quat
}

// NewFrame returns the identity frame: axes (1, 2, 3), unit scale, no
// rotation and no translation.
func NewFrame() *Frame {
	f := &Frame{
		scale:    mgl64.Vec3{1, 1, 1},
		rotation: mgl64.QuatIdent(),
	}
	f.applyMapping(1, 2, 3)
	return f
}

// ValidateAxisMapping checks a signed, 1-based axis mapping. The absolute
// values must sum to 6, none may exceed 3 and all must differ, checked in
// that order.
func ValidateAxisMapping(x, y, z int) error {
	ax, ay, az := abs(x), abs(y), abs(z)
	if ax+ay+az != 6 {
		return status.InvalidParamsSumNotSix
	}
	if ax > 3 || ay > 3 || az > 3 {
		return status.InvalidParamsGreaterThanThree
	}
	if ax == ay || ay == az || ax == az {
		return status.InvalidParamsSameValue
	}
	return nil
}

// SetAxisMapping replaces the axis order and mirroring. Caller axis i maps to
// engine axis |v|-1 with the sign of v. The frame is left untouched when the
// mapping is invalid.
func (f *Frame) SetAxisMapping(x, y, z int) error {
	if err := ValidateAxisMapping(x, y, z); err != nil {
		return err
	}
	f.mu.Lock()
	f.applyMapping(x, y, z)
	f.mu.Unlock()
	return nil
}

func (f *Frame) applyMapping(x, y, z int) {
	f.mapping = [3]int{x, y, z}
	for i, v := range f.mapping {
		f.order[i] = abs(v) - 1
		f.mirror[i] = 1
		if v < 0 {
			f.mirror[i] = -1
		}
	}

	sign := 1.0
	if !f.rightHanded() {
		sign = -1
	}
	f.quatMirror = [4]float64{1, sign * f.mirror[0], sign * f.mirror[1], sign * f.mirror[2]}
}

// rightHanded reports whether the signed permutation preserves handedness:
// the cross product of the first two mapped axes must equal the third.
func (f *Frame) rightHanded() bool {
	var m [3][3]float64
	for i := 0; i < 3; i++ {
		m[f.order[i]][i] = f.mirror[i]
	}
	col := func(j int) r3.Vec { return r3.Vec{X: m[0][j], Y: m[1][j], Z: m[2][j]} }
	return r3.Cross(col(0), col(1)) == col(2)
}

// SetScale sets the per-axis scale applied to caller positions. All factors
// must be positive and finite.
func (f *Frame) SetScale(x, y, z float64) error {
	for _, v := range []float64{x, y, z} {
		if !(v > 0) || math.IsInf(v, 0) {
			return status.InvalidParams
		}
	}
	f.mu.Lock()
	f.scale = mgl64.Vec3{x, y, z}
	f.mu.Unlock()
	return nil
}

// SetTranslation sets the translation, expressed in the engine frame.
func (f *Frame) SetTranslation(x, y, z float64) {
	f.mu.Lock()
	f.translation = mgl64.Vec3{x, y, z}
	f.mu.Unlock()
}

// SetRotation sets the caller frame rotation. The quaternion is normalised;
// a zero quaternion is rejected.
func (f *Frame) SetRotation(q mgl64.Quat) error {
	if q.Len() == 0 {
		return status.InvalidParams
	}
	f.mu.Lock()
	f.rotation = q.Normalize()
	f.mu.Unlock()
	return nil
}

// SetRotationEuler sets the caller frame rotation from extrinsic X, Y, Z
// angles in degrees.
func (f *Frame) SetRotationEuler(x, y, z float64) {
	q := EulerXYZ(x, y, z)
	f.mu.Lock()
	f.rotation = q
	f.mu.Unlock()
}

// AxisMapping returns the signed 1-based mapping last set.
func (f *Frame) AxisMapping() [3]int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mapping
}

// Order returns the engine axis index for each caller axis.
func (f *Frame) Order() [3]int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.order
}

// Mirror returns ±1 for each caller axis.
func (f *Frame) Mirror() [3]int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return [3]int{int(f.mirror[0]), int(f.mirror[1]), int(f.mirror[2])}
}

// QuaternionMirror returns the sign applied to the (w, x, y, z) components
// of rotations.
func (f *Frame) QuaternionMirror() [4]float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.quatMirror
}

func (f *Frame) Scale() mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.scale
}

func (f *Frame) Translation() mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.translation
}

func (f *Frame) Rotation() mgl64.Quat {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rotation
}

// PositionToEngine maps a caller position into the engine frame.
func (f *Frame) PositionToEngine(p mgl64.Vec3) mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vectorToEngine(p).Add(f.translation)
}

// PositionToCaller maps an engine position into the caller frame.
func (f *Frame) PositionToCaller(p mgl64.Vec3) mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vectorToCaller(p.Sub(f.translation))
}

// VectorToEngine maps a caller direction (velocity, force, mesh vertex
// offset) into the engine frame. Translation does not apply.
func (f *Frame) VectorToEngine(v mgl64.Vec3) mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vectorToEngine(v)
}

// VectorToCaller maps an engine direction into the caller frame.
func (f *Frame) VectorToCaller(v mgl64.Vec3) mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vectorToCaller(v)
}

// RotationToEngine maps a caller orientation into the engine frame.
func (f *Frame) RotationToEngine(q mgl64.Quat) mgl64.Quat {
	f.mu.RLock()
	defer f.mu.RUnlock()
	r := f.rotation
	q = r.Inverse().Mul(q).Mul(r)
	var out mgl64.Quat
	out.W = f.quatMirror[0] * q.W
	for i := 0; i < 3; i++ {
		out.V[f.order[i]] = f.quatMirror[i+1] * q.V[i]
	}
	return out
}

// RotationToCaller maps an engine orientation into the caller frame.
func (f *Frame) RotationToCaller(q mgl64.Quat) mgl64.Quat {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var c mgl64.Quat
	c.W = f.quatMirror[0] * q.W
	for i := 0; i < 3; i++ {
		c.V[i] = f.quatMirror[i+1] * q.V[f.order[i]]
	}
	r := f.rotation
	return r.Mul(c).Mul(r.Inverse())
}

// ScaleToEngine reorders per-axis object scale factors. Factors are
// magnitudes, so mirroring and the frame scale do not apply.
func (f *Frame) ScaleToEngine(s mgl64.Vec3) mgl64.Vec3 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[f.order[i]] = s[i]
	}
	return out
}

func (f *Frame) vectorToEngine(v mgl64.Vec3) mgl64.Vec3 {
	v = mgl64.Vec3{v[0] * f.scale[0], v[1] * f.scale[1], v[2] * f.scale[2]}
	v = f.rotation.Inverse().Rotate(v)
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[f.order[i]] = f.mirror[i] * v[i]
	}
	return out
}

func (f *Frame) vectorToCaller(e mgl64.Vec3) mgl64.Vec3 {
	var v mgl64.Vec3
	for i := 0; i < 3; i++ {
		v[i] = f.mirror[i] * e[f.order[i]]
	}
	v = f.rotation.Rotate(v)
	return mgl64.Vec3{v[0] / f.scale[0], v[1] / f.scale[1], v[2] / f.scale[2]}
}

// EulerXYZ builds a rotation from extrinsic X, then Y, then Z angles in
// degrees.
func EulerXYZ(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
