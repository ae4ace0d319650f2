package generator

import (
	"context"
	"testing"

	"VoxelStrata/internal/density"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	p := DefaultParams()
	p.Top = 0
	p.Bottom = -64
	p.AreaX = 128
	p.AreaZ = 128
	return p
}

func fillField(t *testing.T, gen Generator) *density.Field {
	t.Helper()
	f := density.MustNew(17, 17, 17, mgl32.Vec3{8, -40, 8}, 1)
	require.NoError(t, Fill(context.Background(), gen, f))
	return f
}

func TestAvailableIsSorted(t *testing.T) {
	names := Available()
	assert.Contains(t, names, LayeredGroundName)
	assert.Contains(t, names, DestructibleZoneName)
	assert.Contains(t, names, StarterCavernName)
	assert.IsIncreasing(t, names)
}

func TestNewUnknownGenerator(t *testing.T) {
	_, err := New("lava_lake", 1, testParams())
	assert.ErrorIs(t, err, ErrUnknownGenerator)
}

func TestNewValidatesParams(t *testing.T) {
	p := testParams()
	p.Top = p.Bottom
	_, err := New(LayeredGroundName, 1, p)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			a, err := New(name, 424242, testParams())
			require.NoError(t, err)
			b, err := New(name, 424242, testParams())
			require.NoError(t, err)

			fa := fillField(t, a)
			fb := fillField(t, b)
			assert.True(t, fa.Equal(fb), "same seed must give bit-identical fields")
		})
	}
}

func TestSeedChangesOutput(t *testing.T) {
	a, err := New(LayeredGroundName, 1, testParams())
	require.NoError(t, err)
	b, err := New(LayeredGroundName, 2, testParams())
	require.NoError(t, err)

	assert.False(t, fillField(t, a).Equal(fillField(t, b)))
}

func TestDensityIsClamped(t *testing.T) {
	for _, name := range Available() {
		gen, err := New(name, 7, testParams())
		require.NoError(t, err)
		f := fillField(t, gen)
		for _, v := range f.Values {
			require.LessOrEqual(t, v, float32(1))
			require.GreaterOrEqual(t, v, float32(-1))
		}
	}
}

func TestLayeredGroundBands(t *testing.T) {
	p := testParams()
	p.PillarDensity = 0
	gen, err := New(LayeredGroundName, 99, p)
	require.NoError(t, err)

	// Above the ceiling surface is solid rock.
	assert.Equal(t, float32(1), gen.Density(mgl32.Vec3{10, p.Top, 10}))
	// Halfway up a 64 unit band is open air.
	assert.Equal(t, float32(-1), gen.Density(mgl32.Vec3{10, -32, 10}))
}

func TestDestructibleZoneWallsAndDoorways(t *testing.T) {
	p := testParams()
	p.PillarDensity = 0
	g, err := NewDestructibleZone(5, p.WithDefaults())
	require.NoError(t, err)
	zone := g.(*DestructibleZone)

	spacing := float64(zone.p.WallSpacing)
	floorAtCrossing := zone.ground.floorHeight(0, 0)
	wallPoint := mgl32.Vec3{0, float32(floorAtCrossing + 10), 0}
	assert.Greater(t, zone.Density(wallPoint), float32(0), "wall crossing above the doorway height is solid")

	doorZ := spacing / 2
	floorAtDoor := zone.ground.floorHeight(0, doorZ)
	doorPoint := mgl32.Vec3{0, float32(floorAtDoor + 2), float32(doorZ)}
	assert.Less(t, zone.Density(doorPoint), float32(0), "doorway is open")
}

func TestStarterCavernPlatformTable(t *testing.T) {
	p := testParams().WithDefaults()
	a, err := NewStarterCavern(31, p)
	require.NoError(t, err)
	b, err := NewStarterCavern(31, p)
	require.NoError(t, err)

	pa := a.(*StarterCavern).Platforms()
	pb := b.(*StarterCavern).Platforms()
	require.Len(t, pa, p.PlatformCount)
	assert.Equal(t, pa, pb)

	for _, c := range pa {
		assert.GreaterOrEqual(t, c[0], float32(0))
		assert.LessOrEqual(t, c[0], p.AreaX)
		assert.Greater(t, c[1], p.Bottom)
		assert.Less(t, c[1], p.Top)
		assert.Greater(t, a.Density(c), float32(0), "platform center is solid")
	}
}

func TestFillKernelHonoursCancellation(t *testing.T) {
	gen, err := New(LayeredGroundName, 1, testParams())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := NewFillKernel(gen, density.MustNew(4, 4, 4, mgl32.Vec3{}, 1))
	assert.ErrorIs(t, k.Run(ctx), context.Canceled)
	assert.Equal(t, FillKernelName, k.Name())
}

func TestImprovedPerlinNoiseSeeded(t *testing.T) {
	a := NewImprovedPerlinNoise(3)
	b := NewImprovedPerlinNoise(3)
	assert.Equal(t, a.Noise3D(1.3, 2.7, 0.4), b.Noise3D(1.3, 2.7, 0.4))
	assert.Equal(t, 0.0, a.Noise3D(1, 2, 3), "noise is zero on lattice points")

	v := a.Fractal(0.3, 0.2, 0.1, 4, 0.5, 2)
	assert.LessOrEqual(t, v, 1.0)
	assert.GreaterOrEqual(t, v, -1.0)
}

func TestSubSeedIsStable(t *testing.T) {
	assert.Equal(t, SubSeed(10, 1), SubSeed(10, 1))
	assert.NotEqual(t, SubSeed(10, 1), SubSeed(10, 2))
}
