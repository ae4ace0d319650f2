package density

import (
	"math"
	"testing"

	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesShape(t *testing.T) {
	_, err := New(0, 4, 4, mgl32.Vec3{}, 1)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = New(4, 4, 4, mgl32.Vec3{}, 0)
	assert.ErrorIs(t, err, ErrInvalidScale)

	f, err := New(3, 4, 5, mgl32.Vec3{}, 1)
	require.NoError(t, err)
	assert.Len(t, f.Values, 3*4*5)
}

func TestWorldPosition(t *testing.T) {
	f := MustNew(4, 4, 4, mgl32.Vec3{10, -20, 5}, 0.5)

	assert.Equal(t, mgl32.Vec3{10, -20, 5}, f.WorldPosition(0, 0, 0))
	assert.Equal(t, mgl32.Vec3{11.5, -19, 5.5}, f.WorldPosition(3, 2, 1))
	assert.Equal(t, mgl32.Vec3{11.5, -18.5, 6.5}, f.Bounds().Max)
}

func TestIndexIsXFastest(t *testing.T) {
	f := MustNew(3, 4, 5, mgl32.Vec3{}, 1)
	assert.Equal(t, 1, f.Index(1, 0, 0))
	assert.Equal(t, 3, f.Index(0, 1, 0))
	assert.Equal(t, 12, f.Index(0, 0, 1))

	f.Set(2, 3, 4, 7)
	assert.Equal(t, float32(7), f.Values[len(f.Values)-1])
}

func TestCellRangeClipsToField(t *testing.T) {
	f := MustNew(8, 8, 8, mgl32.Vec3{0, 0, 0}, 1)

	r := f.CellRange(geometry.AABB{Min: mgl32.Vec3{-5, 2.5, 3}, Max: mgl32.Vec3{1.5, 4, 100}})
	assert.Equal(t, Range{MinI: 0, MinJ: 3, MinK: 3, MaxI: 2, MaxJ: 5, MaxK: 8}, r)

	disjoint := f.CellRange(geometry.AABB{Min: mgl32.Vec3{20, 20, 20}, Max: mgl32.Vec3{30, 30, 30}})
	assert.True(t, disjoint.Empty())
}

func TestCloneAndEqual(t *testing.T) {
	f := MustNew(2, 2, 2, mgl32.Vec3{1, 1, 1}, 1)
	f.Fill(0.25)

	c := f.Clone()
	assert.True(t, f.Equal(c))

	c.Add(1, 1, 1, 0.5)
	assert.False(t, f.Equal(c))
	assert.InDelta(t, 0.5, f.MaxAbsDiff(c), 1e-7)
	assert.Equal(t, float32(0.25), f.At(1, 1, 1), "clone must not alias the source")
}

func TestShapeMismatchNeverCompares(t *testing.T) {
	a := MustNew(2, 2, 2, mgl32.Vec3{}, 1)
	b := MustNew(3, 2, 2, mgl32.Vec3{}, 1)
	assert.False(t, a.SameShape(b))
	assert.False(t, a.Equal(b))
	assert.True(t, math.IsInf(a.MaxAbsDiff(b), 1))
}
