// Package scene is a small stand-in for a haptic scene graph: a flat world
// of spheres, boxes and triangle meshes, and a tool cursor that turns
// contacts with them into forces. Contacts use a penalty model against the
// sphere or the oriented bounding box of the shape.
//
// Nothing in this package locks. The session owns a World and guards every
// access to it, and to its nodes, with its world lock.
package scene

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/status"
)

// Kind is the shape of a node.
type Kind int

const (
	Mesh Kind = iota
	Box
	Sphere
)

func (k Kind) String() string {
	switch k {
	case Mesh:
		return "mesh"
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Material holds the haptic properties of a node. Stiffness, forces and
// damping are absolute values. The penalty contact model renders
// Stiffness, Viscosity and the magnet; friction, stick-slip, vibration
// and texture fields are carried for the engine, not rendered by the
// stand-in model.
type Material struct {
	Surface            bool
	Stiffness          float64 // N/m
	StaticFriction     float64
	DynamicFriction    float64
	Viscosity          float64 // N·s/m, 0 disables
	MagnetMaxForce     float64 // N, 0 disables
	MagnetMaxDistance  float64 // m
	StickSlipStiffness float64 // N/m, 0 disables
	StickSlipMaxForce  float64 // N
	VibrationFrequency float64 // Hz, 0 disables
	VibrationAmplitude float64 // N
	TextureLevel       float64
	HapticTexture      bool
}

// Texture is a greyscale height map used for haptic texturing.
type Texture struct {
	Width     int
	Height    int
	Pixels    []int8
	Spherical bool
}

// NewTexture converts normalised [0,1] samples into a texture. Each sample
// is quantised to a byte and recentred around zero.
func NewTexture(width, height int, pixels []float32, spherical bool) (*Texture, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height {
		return nil, status.FailAllocateTexture
	}
	t := &Texture{Width: width, Height: height, Pixels: make([]int8, width*height), Spherical: spherical}
	for i := range t.Pixels {
		t.Pixels[i] = floatToByte(pixels[i])
	}
	return t, nil
}

func floatToByte(f float32) int8 {
	v := math.Floor(float64(f) * 256)
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return int8(int(v) - 128)
}

// Node is one object of the world.
type Node struct {
	Kind     Kind
	Enabled  bool
	Material Material
	Texture  *Texture

	position mgl64.Vec3
	rotation mgl64.Quat

	size   mgl64.Vec3 // box extents
	radius float64    // sphere radius

	vertices  []mgl64.Vec3
	normals   []mgl64.Vec3
	triangles [][3]int
	uvs       [][2]float64

	localMin, localMax   mgl64.Vec3
	globalMin, globalMax mgl64.Vec3
	dirty                bool

	collisionMargin float64
	inWorld         bool
	contactForce    mgl64.Vec3
}

func newNode(kind Kind) *Node {
	return &Node{Kind: kind, Enabled: true, rotation: mgl64.QuatIdent(), dirty: true}
}

// NewBox returns a box with the given full extents.
func NewBox(size mgl64.Vec3) *Node {
	n := newNode(Box)
	n.size = size
	n.ComputeBoundaryBox()
	return n
}

// NewSphere returns a sphere.
func NewSphere(radius float64) *Node {
	n := newNode(Sphere)
	n.radius = radius
	n.ComputeBoundaryBox()
	return n
}

// NewMesh returns a triangle mesh. normals may be empty; otherwise it must
// have one entry per vertex. uvs may be shorter than vertices.
func NewMesh(vertices, normals []mgl64.Vec3, triangles [][3]int, uvs [][2]float64) (*Node, error) {
	if len(normals) != 0 && len(normals) != len(vertices) {
		return nil, fmt.Errorf("%d normals for %d vertices: %w", len(normals), len(vertices), status.InvalidParams)
	}
	if len(uvs) > len(vertices) {
		uvs = uvs[:len(vertices)]
	}
	for i, tri := range triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("triangle %d references vertex %d: %w", i, idx, status.InvalidParams)
			}
		}
	}
	n := newNode(Mesh)
	n.vertices = append([]mgl64.Vec3(nil), vertices...)
	n.normals = append([]mgl64.Vec3(nil), normals...)
	n.triangles = append([][3]int(nil), triangles...)
	n.uvs = append([][2]float64(nil), uvs...)
	n.ComputeBoundaryBox()
	return n, nil
}

// Pose returns the local position and rotation.
func (n *Node) Pose() (mgl64.Vec3, mgl64.Quat) {
	return n.position, n.rotation
}

func (n *Node) SetPosition(p mgl64.Vec3) {
	n.position = p
	n.dirty = true
}

func (n *Node) SetRotation(q mgl64.Quat) {
	n.rotation = q.Normalize()
	n.dirty = true
}

// Radius returns the sphere radius.
func (n *Node) Radius() float64 { return n.radius }

// Size returns the box extents.
func (n *Node) Size() mgl64.Vec3 { return n.size }

// Vertices returns the mesh vertices in local coordinates.
func (n *Node) Vertices() []mgl64.Vec3 { return n.vertices }

// Triangles returns the mesh triangles.
func (n *Node) Triangles() [][3]int { return n.triangles }

// InWorld reports whether the node has been added to a world.
func (n *Node) InWorld() bool { return n.inWorld }

// ContactForce returns the force the tool received from this node on the
// last ComputeInteractionForces.
func (n *Node) ContactForce() mgl64.Vec3 { return n.contactForce }

// Scale scales a sphere or box uniformly.
func (n *Node) Scale(f float64) {
	switch n.Kind {
	case Sphere:
		n.radius *= f
	case Box:
		n.size = n.size.Mul(f)
	case Mesh:
		n.ScaleXYZ(mgl64.Vec3{f, f, f})
		return
	}
	n.ComputeBoundaryBox()
}

// ScaleXYZ scales mesh geometry per axis. Other shapes use the first factor.
func (n *Node) ScaleXYZ(s mgl64.Vec3) {
	if n.Kind != Mesh {
		n.Scale(s[0])
		return
	}
	for i, v := range n.vertices {
		n.vertices[i] = mgl64.Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
	}
	n.ComputeBoundaryBox()
}

// ComputeBoundaryBox recomputes the local axis aligned bounds.
func (n *Node) ComputeBoundaryBox() {
	switch n.Kind {
	case Sphere:
		r := mgl64.Vec3{n.radius, n.radius, n.radius}
		n.localMin, n.localMax = r.Mul(-1), r
	case Box:
		h := n.size.Mul(0.5)
		n.localMin, n.localMax = h.Mul(-1), h
	case Mesh:
		if len(n.vertices) == 0 {
			n.localMin, n.localMax = mgl64.Vec3{}, mgl64.Vec3{}
			break
		}
		lo, hi := n.vertices[0], n.vertices[0]
		for _, v := range n.vertices[1:] {
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], v[k])
				hi[k] = math.Max(hi[k], v[k])
			}
		}
		n.localMin, n.localMax = lo, hi
	}
	n.dirty = true
}

// CreateCollisionDetector enables contact with the tool. margin widens the
// broad-phase bounds, typically by the tool radius.
func (n *Node) CreateCollisionDetector(margin float64) {
	n.collisionMargin = margin
}

// Bounds returns the world space bounds computed by the last
// ComputeGlobalPositions.
func (n *Node) Bounds() (mgl64.Vec3, mgl64.Vec3) {
	return n.globalMin, n.globalMax
}

func (n *Node) updateGlobal() {
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for c := 0; c < 8; c++ {
		corner := n.localMin
		for k := 0; k < 3; k++ {
			if c&(1<<uint(k)) != 0 {
				corner[k] = n.localMax[k]
			}
		}
		p := n.rotation.Rotate(corner).Add(n.position)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	m := n.collisionMargin
	n.globalMin = lo.Sub(mgl64.Vec3{m, m, m})
	n.globalMax = hi.Add(mgl64.Vec3{m, m, m})
	n.dirty = false
}

// contact returns the outward surface normal nearest p and the signed gap
// between a sphere of radius r at p and the shape. A negative gap is a
// penetration depth.
func (n *Node) contact(p mgl64.Vec3, r float64) (mgl64.Vec3, float64) {
	if n.Kind == Sphere {
		d := p.Sub(n.position)
		dist := d.Len()
		if dist == 0 {
			return mgl64.Vec3{0, 0, 1}, -(n.radius + r)
		}
		return d.Mul(1 / dist), dist - n.radius - r
	}

	l := n.rotation.Inverse().Rotate(p.Sub(n.position))
	var closest mgl64.Vec3
	inside := true
	for k := 0; k < 3; k++ {
		closest[k] = mgl64.Clamp(l[k], n.localMin[k], n.localMax[k])
		if closest[k] != l[k] {
			inside = false
		}
	}

	if !inside {
		d := l.Sub(closest)
		dist := d.Len()
		return n.rotation.Rotate(d.Mul(1 / dist)), dist - r
	}

	depth := math.Inf(1)
	var normal mgl64.Vec3
	for k := 0; k < 3; k++ {
		if v := l[k] - n.localMin[k]; v < depth {
			depth = v
			normal = mgl64.Vec3{}
			normal[k] = -1
		}
		if v := n.localMax[k] - l[k]; v < depth {
			depth = v
			normal = mgl64.Vec3{}
			normal[k] = 1
		}
	}
	return n.rotation.Rotate(normal), -(depth + r)
}

// WriteOBJ writes a mesh as a Wavefront OBJ document in local coordinates.
func (n *Node) WriteOBJ(w io.Writer) error {
	if n.Kind != Mesh {
		return status.NotAMesh
	}
	bw := bufio.NewWriter(w)
	for _, v := range n.vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for _, v := range n.normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", v[0], v[1], v[2])
	}
	for _, uv := range n.uvs {
		fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
	}
	for _, t := range n.triangles {
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}
