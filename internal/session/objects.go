package session

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/interp"
	"github.com/banshee-data/haptics/internal/registry"
	"github.com/banshee-data/haptics/internal/scene"
	"github.com/banshee-data/haptics/internal/security"
	"github.com/banshee-data/haptics/internal/status"
	"github.com/banshee-data/haptics/internal/transform"
)

// Default tags.
const (
	MeshTag   = "unnamed"
	BoxTag    = "unnamedbox"
	SphereTag = "unnamedsphere"
)

// MaterialParams are object haptic properties. Stiffness values are
// fractions of the device stiffness limit, viscosity a fraction of its
// damping limit and forces fractions of its force limit.
type MaterialParams struct {
	Stiffness           float64
	Surface             bool
	StaticFriction      float64
	DynamicFriction     float64
	MagneticMaxForce    float64
	MagneticMaxDistance float64
	Viscosity           float64
	TextureLevel        float64
	StickSlipStiffness  float64
	StickSlipMaxForce   float64
	VibrationFrequency  float64
	VibrationAmplitude  float64
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func normalizedRotation(q mgl64.Quat) (mgl64.Quat, error) {
	if q.Len() == 0 || math.IsNaN(q.Len()) {
		return mgl64.Quat{}, status.InvalidParams
	}
	return q.Normalize(), nil
}

// register places a freshly built node in the caller's pose and adds it to
// the registry.
func (s *Session) register(n *scene.Node, pos mgl64.Vec3, rot mgl64.Quat, tag string) (int, error) {
	if !finite(pos) {
		return 0, status.InvalidParams
	}
	rot, err := normalizedRotation(rot)
	if err != nil {
		return 0, err
	}
	n.SetPosition(s.frame.PositionToEngine(pos))
	n.SetRotation(s.frame.RotationToEngine(rot))

	s.worldMu.Lock()
	if s.world == nil {
		s.worldMu.Unlock()
		return 0, status.NotInitialized
	}
	n.Material = scene.Material{Surface: true, Stiffness: 0.5 * s.maxStiffness}
	s.worldMu.Unlock()

	return s.objects.Add(n, tag), nil
}

// CreateMeshObject builds a triangle mesh. Vertices and normals are in
// caller coordinates relative to the object origin. The object is not added
// to the world.
func (s *Session) CreateMeshObject(pos, scale mgl64.Vec3, rot mgl64.Quat,
	vertices, normals []mgl64.Vec3, triangles [][3]int, uvs [][2]float64) (int, error) {
	if err := s.requireInit(); err != nil {
		return 0, err
	}
	verts := make([]mgl64.Vec3, len(vertices))
	for i, v := range vertices {
		verts[i] = s.frame.VectorToEngine(v)
	}
	norms := make([]mgl64.Vec3, len(normals))
	for i, v := range normals {
		if e := s.frame.VectorToEngine(v); e.Len() > 0 {
			norms[i] = e.Normalize()
		}
	}
	n, err := scene.NewMesh(verts, norms, triangles, uvs)
	if err != nil {
		return 0, err
	}
	if err := s.scaleNode(n, scale); err != nil {
		return 0, err
	}
	s.worldMu.Lock()
	n.CreateCollisionDetector(s.toolRadius)
	s.worldMu.Unlock()
	return s.register(n, pos, rot, MeshTag)
}

// CreateBoxObject builds a box with full extents size.
func (s *Session) CreateBoxObject(size, pos mgl64.Vec3, rot mgl64.Quat) (int, error) {
	if err := s.requireInit(); err != nil {
		return 0, err
	}
	e := s.frame.ScaleToEngine(size)
	if !(e[0] > 0 && e[1] > 0 && e[2] > 0) || !finite(e) {
		return 0, status.InvalidParams
	}
	return s.register(scene.NewBox(e), pos, rot, BoxTag)
}

// CreateSphereObject builds a sphere.
func (s *Session) CreateSphereObject(radius float64, pos mgl64.Vec3, rot mgl64.Quat) (int, error) {
	if err := s.requireInit(); err != nil {
		return 0, err
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return 0, status.InvalidParams
	}
	return s.register(scene.NewSphere(radius), pos, rot, SphereTag)
}

func (s *Session) scaleNode(n *scene.Node, scale mgl64.Vec3) error {
	e := s.frame.ScaleToEngine(scale)
	if !(e[0] > 0 && e[1] > 0 && e[2] > 0) || !finite(e) {
		return status.InvalidParams
	}
	n.ScaleXYZ(e)
	return nil
}

// withNode runs fn on the node of id under the world lock.
func (s *Session) withNode(id int, fn func(n *scene.Node) error) error {
	n, err := s.objects.Node(id)
	if err != nil {
		return err
	}
	s.worldMu.Lock()
	defer s.worldMu.Unlock()
	if s.world == nil {
		return status.NotInitialized
	}
	return fn(n)
}

// ObjectExists returns nil when id is a live handle.
func (s *Session) ObjectExists(id int) error {
	if !s.objects.Exists(id) {
		return status.ObjectNotFound
	}
	return nil
}

// ObjectIDs returns the live handles in ascending order.
func (s *Session) ObjectIDs() []int {
	return s.objects.IDs()
}

// AddObjectToWorld makes an object visible to the tool. Adding an object
// twice has no effect.
func (s *Session) AddObjectToWorld(id int) error {
	if err := s.requireInit(); err != nil {
		return err
	}
	return s.withNode(id, func(n *scene.Node) error {
		s.world.AddChild(n)
		return nil
	})
}

// EnableObject turns contact with the object on.
func (s *Session) EnableObject(id int) error {
	return s.withNode(id, func(n *scene.Node) error {
		n.Enabled = true
		return nil
	})
}

// DisableObject turns contact with the object off.
func (s *Session) DisableObject(id int) error {
	return s.withNode(id, func(n *scene.Node) error {
		n.Enabled = false
		return nil
	})
}

// SetObjectTag renames an object.
func (s *Session) SetObjectTag(id int, tag string) error {
	return s.objects.With(id, func(o *registry.Object) error {
		o.Tag = tag
		return nil
	})
}

// ObjectTag returns the tag of an object.
func (s *Session) ObjectTag(id int) (string, error) {
	var tag string
	err := s.objects.With(id, func(o *registry.Object) error {
		tag = o.Tag
		return nil
	})
	return tag, err
}

// SetObjectPosition moves an object. With position interpolation enabled
// the object eases toward pos; otherwise it lands there on the next tick.
func (s *Session) SetObjectPosition(id int, pos mgl64.Vec3) error {
	if !finite(pos) {
		return status.InvalidParams
	}
	dest := s.frame.PositionToEngine(pos)
	return s.objects.With(id, func(o *registry.Object) error {
		o.Interp.SetPosition(dest)
		return nil
	})
}

// ObjectPosition returns the current position in caller coordinates.
func (s *Session) ObjectPosition(id int) (mgl64.Vec3, error) {
	var pos mgl64.Vec3
	err := s.withNode(id, func(n *scene.Node) error {
		p, _ := n.Pose()
		pos = s.frame.PositionToCaller(p)
		return nil
	})
	return pos, err
}

// SetObjectRotation rotates an object, interpolating like SetObjectPosition.
func (s *Session) SetObjectRotation(id int, rot mgl64.Quat) error {
	rot, err := normalizedRotation(rot)
	if err != nil {
		return err
	}
	dest := s.frame.RotationToEngine(rot)
	return s.objects.With(id, func(o *registry.Object) error {
		o.Interp.SetRotation(dest)
		return nil
	})
}

// SetObjectRotationEuler rotates an object by extrinsic XYZ Euler angles in
// degrees, expressed in the caller frame.
func (s *Session) SetObjectRotationEuler(id int, x, y, z float64) error {
	return s.SetObjectRotation(id, transform.EulerXYZ(x, y, z))
}

// ObjectRotation returns the current rotation in caller coordinates.
func (s *Session) ObjectRotation(id int) (mgl64.Quat, error) {
	rot := mgl64.QuatIdent()
	err := s.withNode(id, func(n *scene.Node) error {
		_, r := n.Pose()
		rot = s.frame.RotationToCaller(r)
		return nil
	})
	return rot, err
}

// SetObjectScale scales an object. Meshes scale per axis; spheres and boxes
// use the first engine axis factor only.
func (s *Session) SetObjectScale(id int, scale mgl64.Vec3) error {
	return s.withNode(id, func(n *scene.Node) error {
		return s.scaleNode(n, scale)
	})
}

// SetObjectMaterial replaces the haptic material of an object.
func (s *Session) SetObjectMaterial(id int, p MaterialParams) error {
	return s.withNode(id, func(n *scene.Node) error {
		m := scene.Material{
			Surface:         p.Surface,
			Stiffness:       p.Stiffness * s.maxStiffness,
			StaticFriction:  p.StaticFriction,
			DynamicFriction: p.DynamicFriction,
			TextureLevel:    p.TextureLevel,
			HapticTexture:   n.Texture != nil,
		}
		if p.Viscosity > 0 {
			m.Viscosity = p.Viscosity * s.maxDamping
		}
		if n.Kind != scene.Mesh && p.MagneticMaxForce > 0 && p.MagneticMaxDistance > 0 {
			m.MagnetMaxForce = p.MagneticMaxForce * s.maxForce
			m.MagnetMaxDistance = p.MagneticMaxDistance
		}
		if p.StickSlipStiffness > 0 {
			m.StickSlipStiffness = p.StickSlipStiffness * s.maxStiffness
			m.StickSlipMaxForce = p.StickSlipMaxForce * s.maxForce
		}
		if p.VibrationFrequency > 0 && p.VibrationAmplitude > 0 {
			m.VibrationFrequency = p.VibrationFrequency
			m.VibrationAmplitude = p.VibrationAmplitude
		}
		n.Material = m
		return nil
	})
}

// ObjectMaterial returns the absolute material of an object.
func (s *Session) ObjectMaterial(id int) (scene.Material, error) {
	var m scene.Material
	err := s.withNode(id, func(n *scene.Node) error {
		m = n.Material
		return nil
	})
	return m, err
}

// SetObjectTexture attaches a height map texture. pixels holds width×height
// samples in [0,1], row major.
func (s *Session) SetObjectTexture(id, width, height int, pixels []float32, spherical bool) error {
	if err := s.requireInit(); err != nil {
		return err
	}
	if !s.objects.Exists(id) {
		return status.ObjectNotFound
	}
	tex, err := scene.NewTexture(width, height, pixels, spherical)
	if err != nil {
		return err
	}
	return s.withNode(id, func(n *scene.Node) error {
		n.Texture = tex
		n.Material.HapticTexture = true
		return nil
	})
}

// ExportObject writes a mesh object as a Wavefront OBJ file.
func (s *Session) ExportObject(id int, path string) error {
	var kind scene.Kind
	if err := s.withNode(id, func(n *scene.Node) error {
		kind = n.Kind
		return nil
	}); err != nil {
		return err
	}
	if kind != scene.Mesh {
		return status.NotAMesh
	}

	target, err := security.ResolveOutputPath(path, s.outputDir)
	if err != nil {
		return fmt.Errorf("%v: %w", err, status.ExportFailed)
	}
	f, err := s.fs.Create(target)
	if err != nil {
		return fmt.Errorf("%v: %w", err, status.ExportFailed)
	}
	err = s.withNode(id, func(n *scene.Node) error {
		return n.WriteOBJ(f)
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export object %d: %v: %w", id, err, status.ExportFailed)
	}
	return nil
}

// EnablePositionInterpolation makes SetObjectPosition ease over the
// interpolation period.
func (s *Session) EnablePositionInterpolation(id int) error {
	return s.interpolation(id, func(st *interp.State) { st.SetPositionEnabled(true) })
}

// DisablePositionInterpolation makes SetObjectPosition jump.
func (s *Session) DisablePositionInterpolation(id int) error {
	return s.interpolation(id, func(st *interp.State) { st.SetPositionEnabled(false) })
}

// EnableRotationInterpolation makes SetObjectRotation ease over the
// interpolation period.
func (s *Session) EnableRotationInterpolation(id int) error {
	return s.interpolation(id, func(st *interp.State) { st.SetRotationEnabled(true) })
}

// DisableRotationInterpolation makes SetObjectRotation jump.
func (s *Session) DisableRotationInterpolation(id int) error {
	return s.interpolation(id, func(st *interp.State) { st.SetRotationEnabled(false) })
}

func (s *Session) interpolation(id int, fn func(*interp.State)) error {
	return s.objects.With(id, func(o *registry.Object) error {
		fn(&o.Interp)
		return nil
	})
}

// SetInterpolationPeriod sets the number of ticks an interpolation takes
// and the overshoot factor.
func (s *Session) SetInterpolationPeriod(id, cycles int, overshoot float64) error {
	return s.objects.With(id, func(o *registry.Object) error {
		return o.Interp.SetPeriod(cycles, overshoot)
	})
}

// Interpolation returns a copy of the interpolation state of an object.
func (s *Session) Interpolation(id int) (interp.State, error) {
	var st interp.State
	err := s.objects.With(id, func(o *registry.Object) error {
		st = o.Interp
		return nil
	})
	return st, err
}
