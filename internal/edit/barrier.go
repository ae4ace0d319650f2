package edit

import (
	"fmt"
	"math"

	"VoxelStrata/internal/density"
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// BarrierThickness is the barrier slab thickness in voxels.
const BarrierThickness = 1.5

// BarrierSpec describes a barrier without its position, as carried by a
// beam until the beam reaches its end point.
type BarrierSpec struct {
	Normal           mgl32.Vec3
	OpeningDirection mgl32.Vec3
	Radius           float32
	PercentFilled    float32
	Strength         float32
	// VoxelSize is the world size of one voxel. Zero means 1.
	VoxelSize float32
}

// At places the barrier at position.
func (s BarrierSpec) At(position mgl32.Vec3) BarrierEdit {
	return BarrierEdit{BarrierSpec: s, Position: position}
}

// BarrierEdit adds Strength to a disc of radius Radius lying in the plane
// with normal Normal, leaving open a wedge centered on OpeningDirection.
// The wedge half-angle is pi*(1-PercentFilled): a fully filled barrier has
// no opening and an empty one fills nothing.
type BarrierEdit struct {
	BarrierSpec
	Position mgl32.Vec3
}

func (e BarrierEdit) halfThickness() float32 {
	v := e.VoxelSize
	if v <= 0 {
		v = 1
	}
	return BarrierThickness * v / 2
}

func (e BarrierEdit) Bounds() geometry.AABB {
	h := e.halfThickness()
	r := float32(math.Sqrt(float64(e.Radius*e.Radius + h*h)))
	return geometry.SphereBounds(e.Position, r)
}

func (e BarrierEdit) Apply(f *density.Field) {
	n := e.Normal.Normalize()
	opening := e.OpeningDirection.Sub(n.Mul(e.OpeningDirection.Dot(n)))
	hasOpening := opening.Len() > 1e-6
	if hasOpening {
		opening = opening.Normalize()
	}
	halfAngle := math.Pi * (1 - float64(e.PercentFilled))
	if halfAngle >= math.Pi {
		return
	}
	h := e.halfThickness()

	forEachSample(f, e.Bounds(), func(i, j, k int, p mgl32.Vec3) {
		rel := p.Sub(e.Position)
		along := rel.Dot(n)
		if float32(math.Abs(float64(along))) > h {
			return
		}
		radial := rel.Sub(n.Mul(along))
		r := radial.Len()
		if r > e.Radius {
			return
		}
		if hasOpening && r > 1e-6 {
			cos := mgl32.Clamp(radial.Dot(opening)/r, -1, 1)
			if math.Acos(float64(cos)) < halfAngle {
				return
			}
		}
		f.Add(i, j, k, e.Strength)
	})
}

func (e BarrierEdit) Clone() Operation { return e }

func (e BarrierEdit) Validate() error {
	switch {
	case !geometry.Finite(e.Position):
		return fmt.Errorf("%w: %v", ErrInvalidPosition, e.Position)
	case !geometry.Finite(e.Normal) || e.Normal.Len() == 0:
		return fmt.Errorf("%w: normal %v", ErrInvalidDirection, e.Normal)
	case !geometry.Finite(e.OpeningDirection):
		return fmt.Errorf("%w: opening %v", ErrInvalidDirection, e.OpeningDirection)
	case !validRadius(e.Radius):
		return fmt.Errorf("%w: %v", ErrInvalidRadius, e.Radius)
	case !(e.PercentFilled >= 0 && e.PercentFilled <= 1):
		return fmt.Errorf("%w: %v", ErrInvalidPercent, e.PercentFilled)
	case !validStrength(e.Strength):
		return fmt.Errorf("%w: %v", ErrInvalidStrength, e.Strength)
	case e.VoxelSize < 0 || math.IsInf(float64(e.VoxelSize), 0) || math.IsNaN(float64(e.VoxelSize)):
		return fmt.Errorf("%w: voxel size %v", ErrInvalidRadius, e.VoxelSize)
	}
	return nil
}
