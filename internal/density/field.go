// Package density holds the per-chunk scalar grid that generators fill,
// edits mutate and the surface extractor reads.
package density

import (
	"errors"
	"fmt"
	"math"

	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// IsoLevel is the surface threshold. Samples at or above it are solid.
const IsoLevel float32 = 0

var (
	ErrInvalidDimensions = errors.New("density: dimensions must be positive")
	ErrInvalidScale      = errors.New("density: voxel scale must be positive")
)

// Field is a dense Nx*Ny*Nz grid of samples laid out x-fastest.
// Sample (i, j, k) sits at Origin + (i, j, k) * Scale in world space.
type Field struct {
	Nx, Ny, Nz int
	Values     []float32
	Origin     mgl32.Vec3
	Scale      float32
}

// New allocates a zeroed field.
func New(nx, ny, nz int, origin mgl32.Vec3, scale float32) (*Field, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, nx, ny, nz)
	}
	if !(scale > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return &Field{
		Nx:     nx,
		Ny:     ny,
		Nz:     nz,
		Values: make([]float32, nx*ny*nz),
		Origin: origin,
		Scale:  scale,
	}, nil
}

// MustNew is New for callers with constant, known-good shapes.
func MustNew(nx, ny, nz int, origin mgl32.Vec3, scale float32) *Field {
	f, err := New(nx, ny, nz, origin, scale)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) Len() int {
	return f.Nx * f.Ny * f.Nz
}

func (f *Field) Index(i, j, k int) int {
	return i + f.Nx*(j+f.Ny*k)
}

func (f *Field) InRange(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < f.Nx && j < f.Ny && k < f.Nz
}

func (f *Field) At(i, j, k int) float32 {
	return f.Values[f.Index(i, j, k)]
}

func (f *Field) Set(i, j, k int, v float32) {
	f.Values[f.Index(i, j, k)] = v
}

func (f *Field) Add(i, j, k int, delta float32) {
	f.Values[f.Index(i, j, k)] += delta
}

// WorldPosition returns the world-space position of sample (i, j, k).
func (f *Field) WorldPosition(i, j, k int) mgl32.Vec3 {
	return mgl32.Vec3{
		f.Origin[0] + float32(i)*f.Scale,
		f.Origin[1] + float32(j)*f.Scale,
		f.Origin[2] + float32(k)*f.Scale,
	}
}

// Bounds covers every sample position of the field.
func (f *Field) Bounds() geometry.AABB {
	return geometry.AABB{
		Min: f.Origin,
		Max: f.WorldPosition(f.Nx-1, f.Ny-1, f.Nz-1),
	}
}

// Range is a half-open block of sample indices.
type Range struct {
	MinI, MinJ, MinK int
	MaxI, MaxJ, MaxK int
}

func (r Range) Empty() bool {
	return r.MinI >= r.MaxI || r.MinJ >= r.MaxJ || r.MinK >= r.MaxK
}

// CellRange returns the samples whose positions may fall inside box,
// clipped to the field. Disjoint boxes give an empty range.
func (f *Field) CellRange(box geometry.AABB) Range {
	lo := box.Min.Sub(f.Origin).Mul(1 / f.Scale)
	hi := box.Max.Sub(f.Origin).Mul(1 / f.Scale)
	return Range{
		MinI: clampIndex(int(math.Ceil(float64(lo[0]))), f.Nx),
		MinJ: clampIndex(int(math.Ceil(float64(lo[1]))), f.Ny),
		MinK: clampIndex(int(math.Ceil(float64(lo[2]))), f.Nz),
		MaxI: clampIndex(int(math.Floor(float64(hi[0])))+1, f.Nx),
		MaxJ: clampIndex(int(math.Floor(float64(hi[1])))+1, f.Ny),
		MaxK: clampIndex(int(math.Floor(float64(hi[2])))+1, f.Nz),
	}
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

func (f *Field) Fill(v float32) {
	for i := range f.Values {
		f.Values[i] = v
	}
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	c := *f
	c.Values = make([]float32, len(f.Values))
	copy(c.Values, f.Values)
	return &c
}

func (f *Field) SameShape(o *Field) bool {
	return o != nil && f.Nx == o.Nx && f.Ny == o.Ny && f.Nz == o.Nz
}

// Equal is a bit-exact comparison of shape, placement and samples.
func (f *Field) Equal(o *Field) bool {
	if !f.SameShape(o) || f.Origin != o.Origin || f.Scale != o.Scale {
		return false
	}
	for i, v := range f.Values {
		if math.Float32bits(v) != math.Float32bits(o.Values[i]) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest per-sample difference, or +Inf when the
// shapes differ.
func (f *Field) MaxAbsDiff(o *Field) float64 {
	if !f.SameShape(o) {
		return math.Inf(1)
	}
	var worst float64
	for i, v := range f.Values {
		d := math.Abs(float64(v - o.Values[i]))
		if d > worst {
			worst = d
		}
	}
	return worst
}
