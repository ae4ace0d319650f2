package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayIntersectAABB is the slab test. It returns the entry distance, clamped
// to zero when the origin is inside the box.
func RayIntersectAABB(ray Ray, box AABB) (bool, float32) {
	tMin := float32(0)
	tMax := float32(math.MaxFloat32)

	for i := 0; i < 3; i++ {
		d := ray.Direction[i]
		o := ray.Origin[i]
		if d > -1e-9 && d < 1e-9 {
			if o < box.Min[i] || o > box.Max[i] {
				return false, 0
			}
			continue
		}
		inv := 1 / d
		t0 := (box.Min[i] - o) * inv
		t1 := (box.Max[i] - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false, 0
		}
	}
	return true, tMin
}

// RayIntersectTriangle tests if a ray intersects a triangle
// Returns: (intersected, distance, intersection point)
// Uses Möller-Trumbore algorithm
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return false, 0, mgl32.Vec3{} // Ray is parallel to triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	t := f * edge2.Dot(q)
	if t > epsilon {
		return true, t, ray.At(t)
	}

	return false, 0, mgl32.Vec3{} // Line intersection but not ray intersection
}
