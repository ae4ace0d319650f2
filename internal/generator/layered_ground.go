package generator

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const LayeredGroundName = "layered_ground"

// LayeredGround is a cave band: rough floor, rough ceiling, noise-placed
// pillars joining the two and fractal caves carved into the floor.
type LayeredGround struct {
	p       Params
	surface surfaceNoise
	pillars surfaceNoise
	caves   *ImprovedPerlinNoise
}

func NewLayeredGround(seed int64, p Params) (Generator, error) {
	return newLayeredGround(seed, p), nil
}

func newLayeredGround(seed int64, p Params) *LayeredGround {
	return &LayeredGround{
		p:       p,
		surface: newSurfaceNoise(SubSeed(seed, 1), p),
		pillars: newSurfaceNoise(SubSeed(seed, 2), p),
		caves:   NewImprovedPerlinNoise(SubSeed(seed, 3)),
	}
}

func (g *LayeredGround) Name() string { return LayeredGroundName }

func (g *LayeredGround) Density(pos mgl32.Vec3) float32 {
	return clampUnit(g.raw(pos))
}

// floorHeight is the world Y of the ground surface at (x, z).
func (g *LayeredGround) floorHeight(x, z float64) float64 {
	f := g.p.Frequency
	return float64(g.p.Bottom+g.p.GroundThickness) + float64(g.p.Roughness)*g.surface.At(x*f, z*f)
}

func (g *LayeredGround) ceilingHeight(x, z float64) float64 {
	f := g.p.Frequency
	return float64(g.p.Top-g.p.CeilingThickness) - 0.5*float64(g.p.Roughness)*g.surface.At(x*f+1000.5, z*f-1000.5)
}

// raw is an unclamped, roughly distance-scaled density.
func (g *LayeredGround) raw(pos mgl32.Vec3) float64 {
	x, y, z := float64(pos[0]), float64(pos[1]), float64(pos[2])

	floorY := g.floorHeight(x, z)
	solid := math.Max(floorY-y, y-g.ceilingHeight(x, z))

	if g.p.PillarDensity > 0 {
		s := float64(g.p.PillarScale)
		n := g.pillars.At(x*s, z*s)
		// Columns where the placement noise exceeds the density threshold.
		threshold := 1 - 2*float64(g.p.PillarDensity)
		solid = math.Max(solid, (n-threshold)*8)
	}

	// Caves only below the floor surface so the walkable top stays intact.
	if y < floorY-1 {
		f := g.p.Frequency
		n := g.caves.Fractal(x*f, y*f, z*f, g.p.Octaves, g.p.Persistence, g.p.Lacunarity)
		carve := (math.Abs(n) - float64(g.p.CaveThreshold)) * 16
		solid = math.Min(solid, carve)
	}
	return solid
}
