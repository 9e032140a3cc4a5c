package haptics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/banshee-data/haptics/internal/status"
)

func vecs(in [][3]float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// CreateMeshObject builds a triangle mesh and returns its handle. Vertices
// and normals are relative to the object origin; normals and uvs may be
// nil. The object is not added to the world.
func (c *Context) CreateMeshObject(position, scale [3]float64, rotation [4]float64,
	vertices, normals [][3]float64, triangles [][3]int, uvs [][2]float64) (int, int) {
	id, err := c.s.CreateMeshObject(vec(position), vec(scale), quat(rotation),
		vecs(vertices), vecs(normals), triangles, uvs)
	return id, c.ret(err)
}

// CreateBoxObject builds a box with full extents size.
func (c *Context) CreateBoxObject(size, position [3]float64, rotation [4]float64) (int, int) {
	id, err := c.s.CreateBoxObject(vec(size), vec(position), quat(rotation))
	return id, c.ret(err)
}

func (c *Context) CreateSphereObject(radius float64, position [3]float64, rotation [4]float64) (int, int) {
	id, err := c.s.CreateSphereObject(radius, vec(position), quat(rotation))
	return id, c.ret(err)
}

// AddObjectToWorld makes the object touchable.
func (c *Context) AddObjectToWorld(id int) int { return c.ret(c.s.AddObjectToWorld(id)) }
func (c *Context) ObjectExists(id int) int     { return c.ret(c.s.ObjectExists(id)) }
func (c *Context) EnableObject(id int) int     { return c.ret(c.s.EnableObject(id)) }
func (c *Context) DisableObject(id int) int    { return c.ret(c.s.DisableObject(id)) }

func (c *Context) SetObjectTag(id int, tag string) int {
	return c.ret(c.s.SetObjectTag(id, tag))
}

// GetObjectTag returns the tag of an object. The tag needs bufferSize of
// at least its length plus one.
func (c *Context) GetObjectTag(id, bufferSize int) (string, int) {
	tag, err := c.s.ObjectTag(id)
	if err != nil {
		return "", c.ret(err)
	}
	if len(tag)+1 > bufferSize {
		return "", c.ret(status.BufferTooSmall)
	}
	return tag, c.ret(nil)
}

// SetObjectPosition moves an object. Unless position interpolation is
// enabled the move takes effect on the next loop tick.
func (c *Context) SetObjectPosition(id int, position [3]float64) int {
	return c.ret(c.s.SetObjectPosition(id, vec(position)))
}

func (c *Context) GetObjectPosition(id int) ([3]float64, int) {
	p, err := c.s.ObjectPosition(id)
	return p, c.ret(err)
}

// SetObjectRotation rotates an object to the w, x, y, z quaternion.
func (c *Context) SetObjectRotation(id int, rotation [4]float64) int {
	return c.ret(c.s.SetObjectRotation(id, quat(rotation)))
}

// SetObjectRotationEuler rotates an object by extrinsic XYZ angles in
// degrees.
func (c *Context) SetObjectRotationEuler(id int, x, y, z float64) int {
	return c.ret(c.s.SetObjectRotationEuler(id, x, y, z))
}

func (c *Context) GetObjectRotation(id int) ([4]float64, int) {
	q, err := c.s.ObjectRotation(id)
	return quatArray(q), c.ret(err)
}

func (c *Context) SetObjectScale(id int, scale [3]float64) int {
	return c.ret(c.s.SetObjectScale(id, vec(scale)))
}

func (c *Context) SetObjectMaterial(id int, m Material) int {
	return c.ret(c.s.SetObjectMaterial(id, m))
}

// SetObjectTexture attaches a width×height height map with samples in
// [0,1].
func (c *Context) SetObjectTexture(id, width, height int, pixels []float32, spherical bool) int {
	return c.ret(c.s.SetObjectTexture(id, width, height, pixels, spherical))
}

// ExportObject writes a mesh object to a Wavefront OBJ file.
func (c *Context) ExportObject(id int, path string) int {
	return c.ret(c.s.ExportObject(id, path))
}

func (c *Context) EnablePositionInterpolation(id int) int {
	return c.ret(c.s.EnablePositionInterpolation(id))
}

func (c *Context) DisablePositionInterpolation(id int) int {
	return c.ret(c.s.DisablePositionInterpolation(id))
}

func (c *Context) EnableRotationInterpolation(id int) int {
	return c.ret(c.s.EnableRotationInterpolation(id))
}

func (c *Context) DisableRotationInterpolation(id int) int {
	return c.ret(c.s.DisableRotationInterpolation(id))
}

// SetInterpolationPeriod sets how many loop ticks an interpolation takes.
// Zero cycles disables interpolation; the move completes after
// cycles×overshoot ticks.
func (c *Context) SetInterpolationPeriod(id, cycles int, overshoot float64) int {
	return c.ret(c.s.SetInterpolationPeriod(id, cycles, overshoot))
}
