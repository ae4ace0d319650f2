package generator

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

const StarterCavernName = "starter_cavern"

type platform struct {
	center    mgl32.Vec3
	radius    float32
	thickness float32
}

// StarterCavern is an open hall with a flat-ish floor and a table of
// floating platforms placed once from the seed.
type StarterCavern struct {
	p         Params
	surface   surfaceNoise
	platforms []platform
}

func NewStarterCavern(seed int64, p Params) (Generator, error) {
	g := &StarterCavern{
		p:       p,
		surface: newSurfaceNoise(SubSeed(seed, 11), p),
	}
	g.platforms = placePlatforms(SubSeed(seed, 12), p)
	return g, nil
}

// placePlatforms draws platform positions between floor and ceiling. The
// same seed always yields the same table.
func placePlatforms(seed int64, p Params) []platform {
	rng := rand.New(rand.NewSource(seed))

	low := p.Bottom + p.GroundThickness + p.PlatformThickness*2
	high := p.Top - p.CeilingThickness - p.PlatformThickness*2
	if high < low {
		high = low
	}

	out := make([]platform, 0, p.PlatformCount)
	for i := 0; i < p.PlatformCount; i++ {
		r := p.PlatformRadius * (0.6 + 0.8*rng.Float32())
		out = append(out, platform{
			center: mgl32.Vec3{
				p.OriginX + rng.Float32()*p.AreaX,
				low + rng.Float32()*(high-low),
				p.OriginZ + rng.Float32()*p.AreaZ,
			},
			radius:    r,
			thickness: p.PlatformThickness,
		})
	}
	return out
}

func (g *StarterCavern) Name() string { return StarterCavernName }

func (g *StarterCavern) Density(pos mgl32.Vec3) float32 {
	x, y, z := float64(pos[0]), float64(pos[1]), float64(pos[2])
	f := g.p.Frequency
	rough := 0.5 * float64(g.p.Roughness)

	floorY := float64(g.p.Bottom+g.p.GroundThickness) + rough*g.surface.At(x*f, z*f)
	ceilY := float64(g.p.Top-g.p.CeilingThickness) - rough*g.surface.At(x*f+500.5, z*f+500.5)
	solid := math.Max(floorY-y, y-ceilY)

	for _, pl := range g.platforms {
		dx := x - float64(pl.center[0])
		dz := z - float64(pl.center[2])
		horizontal := math.Sqrt(dx*dx+dz*dz) - float64(pl.radius)
		vertical := math.Abs(y-float64(pl.center[1])) - float64(pl.thickness)/2
		solid = math.Max(solid, -math.Max(horizontal, vertical))
	}
	return clampUnit(solid)
}

// Platforms returns the centers of the placed platforms.
func (g *StarterCavern) Platforms() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(g.platforms))
	for i, pl := range g.platforms {
		out[i] = pl.center
	}
	return out
}
