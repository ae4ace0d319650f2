package world

import (
	"errors"
	"fmt"
	"math"

	"VoxelStrata/internal/generator"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidSettings = errors.New("world: invalid settings")
	ErrNilOperation    = errors.New("world: nil edit operation")
	ErrClosed          = errors.New("world: closed")
)

// LayerSettings describes one depth band.
type LayerSettings struct {
	Name      string
	Generator string
	// Depth is the target thickness in world units. It is rounded down to
	// whole chunk spans, with a minimum of one span.
	Depth  float32
	Params generator.Params
}

type Settings struct {
	Seed int64
	// VoxelsPerAxis is the number of cells along each chunk edge. A chunk's
	// field holds VoxelsPerAxis+1 samples per axis so neighbours share
	// their boundary samples.
	VoxelsPerAxis int
	VoxelScale    float32
	// Origin is the min X/Z corner of the world and the top of layer 0.
	Origin       mgl32.Vec3
	AreaX, AreaZ float32
	// LayerMargin is the vertical gap left between consecutive layers.
	LayerMargin float32
	Layers      []LayerSettings
	LOD         LOD
	// Interpolate selects smooth vertex placement in surface extraction.
	Interpolate bool
}

// DefaultSettings is a three-layer world: a starter cavern above a regular
// cave band above a destructible zone.
func DefaultSettings() Settings {
	return Settings{
		Seed:          1337,
		VoxelsPerAxis: 16,
		VoxelScale:    1,
		AreaX:         512,
		AreaZ:         512,
		LayerMargin:   8,
		Layers: []LayerSettings{
			{Name: "starter", Generator: generator.StarterCavernName, Depth: 64, Params: generator.DefaultParams()},
			{Name: "caves", Generator: generator.LayeredGroundName, Depth: 96, Params: generator.DefaultParams()},
			{Name: "ruins", Generator: generator.DestructibleZoneName, Depth: 64, Params: generator.DefaultParams()},
		},
		LOD:         DefaultLOD(),
		Interpolate: true,
	}
}

// ChunkSpan is the world size of one chunk along any axis.
func (s Settings) ChunkSpan() float32 {
	return float32(s.VoxelsPerAxis) * s.VoxelScale
}

// QuantizedDepth rounds depth down to whole chunk spans, minimum one.
func (s Settings) QuantizedDepth(depth float32) (float32, int) {
	span := s.ChunkSpan()
	n := int(math.Floor(float64(depth / span)))
	if n < 1 {
		n = 1
	}
	return float32(n) * span, n
}

func (s Settings) Validate() error {
	switch {
	case s.VoxelsPerAxis < 1:
		return fmt.Errorf("%w: voxels per axis %d", ErrInvalidSettings, s.VoxelsPerAxis)
	case !(s.VoxelScale > 0) || math.IsInf(float64(s.VoxelScale), 0):
		return fmt.Errorf("%w: voxel scale %v", ErrInvalidSettings, s.VoxelScale)
	case !(s.AreaX > 0) || !(s.AreaZ > 0):
		return fmt.Errorf("%w: area %vx%v", ErrInvalidSettings, s.AreaX, s.AreaZ)
	case s.LayerMargin < 0:
		return fmt.Errorf("%w: negative layer margin", ErrInvalidSettings)
	case len(s.Layers) == 0:
		return fmt.Errorf("%w: no layers", ErrInvalidSettings)
	}
	for i, l := range s.Layers {
		if !(l.Depth > 0) {
			return fmt.Errorf("%w: layer %d depth %v", ErrInvalidSettings, i, l.Depth)
		}
	}
	return s.LOD.validate()
}
