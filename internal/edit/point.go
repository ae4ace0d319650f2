package edit

import (
	"fmt"

	"VoxelStrata/internal/density"
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// PointEdit shifts every sample within Radius of Position by
// Strength * (1 - t^2)^2, t being the normalized distance. It is additive, so
// applying it twice doubles the change.
type PointEdit struct {
	Position mgl32.Vec3
	Radius   float32
	Strength float32
	Polarity Polarity
}

func (e PointEdit) Bounds() geometry.AABB {
	return geometry.SphereBounds(e.Position, e.Radius)
}

func (e PointEdit) Apply(f *density.Field) {
	scale := e.Polarity.sign() * e.Strength
	r2 := e.Radius * e.Radius
	forEachSample(f, e.Bounds(), func(i, j, k int, p mgl32.Vec3) {
		d := p.Sub(e.Position)
		t2 := d.Dot(d) / r2
		if t2 >= 1 {
			return
		}
		w := (1 - t2) * (1 - t2)
		f.Add(i, j, k, scale*w)
	})
}

func (e PointEdit) Clone() Operation { return e }

func (e PointEdit) Validate() error {
	switch {
	case !geometry.Finite(e.Position):
		return fmt.Errorf("%w: %v", ErrInvalidPosition, e.Position)
	case !validRadius(e.Radius):
		return fmt.Errorf("%w: %v", ErrInvalidRadius, e.Radius)
	case !validStrength(e.Strength):
		return fmt.Errorf("%w: %v", ErrInvalidStrength, e.Strength)
	case !e.Polarity.valid():
		return fmt.Errorf("%w: %d", ErrInvalidPolarity, e.Polarity)
	}
	return nil
}
