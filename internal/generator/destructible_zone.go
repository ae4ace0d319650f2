package generator

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const DestructibleZoneName = "destructible_zone"

// DestructibleZone is layered ground partitioned into rooms by a grid of
// walls. Every wall segment has one rectangular doorway at its midpoint.
type DestructibleZone struct {
	ground *LayeredGround
	p      Params
}

func NewDestructibleZone(seed int64, p Params) (Generator, error) {
	return &DestructibleZone{ground: newLayeredGround(seed, p), p: p}, nil
}

func (g *DestructibleZone) Name() string { return DestructibleZoneName }

func (g *DestructibleZone) Density(pos mgl32.Vec3) float32 {
	x, y, z := float64(pos[0]), float64(pos[1]), float64(pos[2])
	solid := g.ground.raw(pos)

	floorY := g.ground.floorHeight(x, z)
	solid = math.Max(solid, g.wall(x, z, y-floorY))
	solid = math.Max(solid, g.wall(z, x, y-floorY))
	return clampUnit(solid)
}

// wall evaluates the family of walls perpendicular to axis a, running along
// axis b. h is the height above the local floor.
func (g *DestructibleZone) wall(a, b, h float64) float64 {
	spacing := float64(g.p.WallSpacing)
	half := spacing / 2

	// Distance from the nearest wall plane, positive inside the wall.
	da := float64(g.p.WallThickness)/2 - math.Abs(wrap(a, spacing)-half)

	// Doorway: centered on each segment between crossings, from floor up.
	wb := wrap(b, spacing)
	db := math.Min(wb, spacing-wb)
	inDoorX := float64(g.p.CutoutWidth)/2 - db
	inDoorY := math.Min(h, float64(g.p.CutoutHeight)-h)
	door := math.Min(inDoorX, inDoorY)

	return math.Min(da, -door)
}

// wrap maps v into [0, period) and shifts so walls sit at period/2.
func wrap(v, period float64) float64 {
	m := math.Mod(v+period/2, period)
	if m < 0 {
		m += period
	}
	return m
}
