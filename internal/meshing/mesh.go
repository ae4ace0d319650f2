// Package meshing turns a density field into a triangle mesh with marching
// cubes.
package meshing

import (
	"VoxelStrata/internal/density"
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// TrianglesPerCube is the most triangles a single cube case emits.
const TrianglesPerCube = 5

// Mesh is a triangle list with unshared vertices. Triangle t uses vertices
// Indices[3t], Indices[3t+1] and Indices[3t+2], all sharing one flat normal.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
}

func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

func (m *Mesh) Empty() bool {
	return m.TriangleCount() == 0
}

// Triangle returns the corners of triangle t in winding order.
func (m *Mesh) Triangle(t int) (a, b, c mgl32.Vec3) {
	return m.Vertices[m.Indices[3*t]], m.Vertices[m.Indices[3*t+1]], m.Vertices[m.Indices[3*t+2]]
}

// Bounds is the tight box around every vertex. An empty mesh has a zero box.
func (m *Mesh) Bounds() geometry.AABB {
	if m == nil || len(m.Vertices) == 0 {
		return geometry.AABB{}
	}
	box := geometry.AABB{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		for a := 0; a < 3; a++ {
			if v[a] < box.Min[a] {
				box.Min[a] = v[a]
			}
			if v[a] > box.Max[a] {
				box.Max[a] = v[a]
			}
		}
	}
	return box
}

// MaxTriangles is the upper bound on the triangle count Extract can return
// for f.
func MaxTriangles(f *density.Field) int {
	if f.Nx < 2 || f.Ny < 2 || f.Nz < 2 {
		return 0
	}
	return (f.Nx - 1) * (f.Ny - 1) * (f.Nz - 1) * TrianglesPerCube
}

func (m *Mesh) appendTriangle(a, b, c mgl32.Vec3) {
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, a, b, c)
	m.Normals = append(m.Normals, n, n, n)
	m.Indices = append(m.Indices, base, base+1, base+2)
}
