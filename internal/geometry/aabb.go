package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. Min and Max are inclusive.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB builds a box from two arbitrary corners.
func NewAABB(a, b mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(a[0], b[0]), min32(a[1], b[1]), min32(a[2], b[2])},
		Max: mgl32.Vec3{max32(a[0], b[0]), max32(a[1], b[1]), max32(a[2], b[2])},
	}
}

// SphereBounds returns the box enclosing a sphere.
func SphereBounds(center mgl32.Vec3, radius float32) AABB {
	r := mgl32.Vec3{radius, radius, radius}
	return AABB{Min: center.Sub(r), Max: center.Add(r)}
}

// Intersects reports whether two boxes overlap. Touching faces count.
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Union returns the smallest box containing both.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(b.Min[0], o.Min[0]), min32(b.Min[1], o.Min[1]), min32(b.Min[2], o.Min[2])},
		Max: mgl32.Vec3{max32(b.Max[0], o.Max[0]), max32(b.Max[1], o.Max[1]), max32(b.Max[2], o.Max[2])},
	}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Valid reports whether Min <= Max on every axis and no coordinate is NaN.
func (b AABB) Valid() bool {
	for i := 0; i < 3; i++ {
		if isNaN(b.Min[i]) || isNaN(b.Max[i]) || b.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Finite reports whether every component of v is a real number.
func Finite(v mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		f := float64(v[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func isNaN(f float32) bool {
	return f != f
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
