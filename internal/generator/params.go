package generator

import (
	"errors"
	"fmt"
)

var ErrInvalidParams = errors.New("generator: invalid params")

// Params are the layer-level knobs every generator variant reads. Fields a
// variant does not use are ignored by it.
type Params struct {
	// Depth band of the layer in world Y. Top > Bottom.
	Top    float32 `yaml:"-"`
	Bottom float32 `yaml:"-"`
	// Horizontal extent of the layer, used for placement tables.
	OriginX float32 `yaml:"-"`
	OriginZ float32 `yaml:"-"`
	AreaX   float32 `yaml:"-"`
	AreaZ   float32 `yaml:"-"`

	GroundThickness  float32 `yaml:"ground_thickness"`
	CeilingThickness float32 `yaml:"ceiling_thickness"`
	Roughness        float32 `yaml:"roughness"`
	PillarDensity    float32 `yaml:"pillar_density"`
	PillarScale      float32 `yaml:"pillar_scale"`
	CaveThreshold    float32 `yaml:"cave_threshold"`

	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`

	// destructible_zone
	WallSpacing   float32 `yaml:"wall_spacing"`
	WallThickness float32 `yaml:"wall_thickness"`
	CutoutWidth   float32 `yaml:"cutout_width"`
	CutoutHeight  float32 `yaml:"cutout_height"`

	// starter_cavern
	PlatformCount     int     `yaml:"platform_count"`
	PlatformRadius    float32 `yaml:"platform_radius"`
	PlatformThickness float32 `yaml:"platform_thickness"`
}

// DefaultParams returns values that produce a sensible cave layer.
func DefaultParams() Params {
	return Params{
		GroundThickness:   6,
		CeilingThickness:  4,
		Roughness:         2,
		PillarDensity:     0.15,
		PillarScale:       0.04,
		CaveThreshold:     0.08,
		Octaves:           4,
		Frequency:         0.05,
		Persistence:       0.5,
		Lacunarity:        2,
		WallSpacing:       24,
		WallThickness:     2,
		CutoutWidth:       6,
		CutoutHeight:      5,
		PlatformCount:     12,
		PlatformRadius:    5,
		PlatformThickness: 1.5,
	}
}

// WithDefaults fills zero-valued fields from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.GroundThickness == 0 {
		p.GroundThickness = d.GroundThickness
	}
	if p.CeilingThickness == 0 {
		p.CeilingThickness = d.CeilingThickness
	}
	if p.Roughness == 0 {
		p.Roughness = d.Roughness
	}
	if p.PillarScale == 0 {
		p.PillarScale = d.PillarScale
	}
	if p.CaveThreshold == 0 {
		p.CaveThreshold = d.CaveThreshold
	}
	if p.Octaves == 0 {
		p.Octaves = d.Octaves
	}
	if p.Frequency == 0 {
		p.Frequency = d.Frequency
	}
	if p.Persistence == 0 {
		p.Persistence = d.Persistence
	}
	if p.Lacunarity == 0 {
		p.Lacunarity = d.Lacunarity
	}
	if p.WallSpacing == 0 {
		p.WallSpacing = d.WallSpacing
	}
	if p.WallThickness == 0 {
		p.WallThickness = d.WallThickness
	}
	if p.CutoutWidth == 0 {
		p.CutoutWidth = d.CutoutWidth
	}
	if p.CutoutHeight == 0 {
		p.CutoutHeight = d.CutoutHeight
	}
	if p.PlatformRadius == 0 {
		p.PlatformRadius = d.PlatformRadius
	}
	if p.PlatformThickness == 0 {
		p.PlatformThickness = d.PlatformThickness
	}
	return p
}

func (p Params) Validate() error {
	switch {
	case !(p.Top > p.Bottom):
		return fmt.Errorf("%w: top %v must be above bottom %v", ErrInvalidParams, p.Top, p.Bottom)
	case p.GroundThickness < 0 || p.CeilingThickness < 0:
		return fmt.Errorf("%w: negative thickness", ErrInvalidParams)
	case p.PillarDensity < 0 || p.PillarDensity > 1:
		return fmt.Errorf("%w: pillar density %v outside [0,1]", ErrInvalidParams, p.PillarDensity)
	case p.Octaves < 1:
		return fmt.Errorf("%w: octaves must be >= 1", ErrInvalidParams)
	case p.Frequency <= 0 || p.Persistence <= 0 || p.Lacunarity <= 0:
		return fmt.Errorf("%w: frequency, persistence and lacunarity must be positive", ErrInvalidParams)
	case p.PlatformCount < 0:
		return fmt.Errorf("%w: negative platform count", ErrInvalidParams)
	}
	return nil
}
