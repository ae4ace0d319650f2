package world

import (
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// RayHit is the nearest mesh triangle struck by a ray.
type RayHit struct {
	Chunk    ChunkID
	Distance float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
}

// Raycast finds the closest collidable surface along ray within maxDistance.
// The direction need not be normalized; distances are in units of its
// length. Layers and chunks whose boxes the ray misses are skipped.
func (w *World) Raycast(ray geometry.Ray, maxDistance float32) (RayHit, bool) {
	best := RayHit{Distance: maxDistance}
	found := false

	for _, l := range w.layers {
		if hit, t := geometry.RayIntersectAABB(ray, l.Bounds()); !hit || t > best.Distance {
			continue
		}
		l.Chunks(func(c *Chunk) {
			if !c.Collidable() || c.mesh.Empty() {
				return
			}
			if hit, t := geometry.RayIntersectAABB(ray, c.Bounds()); !hit || t > best.Distance {
				return
			}
			m := c.mesh
			for tri := 0; tri < m.TriangleCount(); tri++ {
				a, b, cc := m.Triangle(tri)
				hit, t, p := geometry.RayIntersectTriangle(ray, a, b, cc)
				if hit && t <= best.Distance {
					best = RayHit{Chunk: c.id, Distance: t, Point: p, Normal: m.Normals[3*tri]}
					found = true
				}
			}
		})
	}
	return best, found
}
