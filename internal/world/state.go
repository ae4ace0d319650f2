package world

import "fmt"

// ActiveState is the level-of-detail tier of a chunk or layer.
type ActiveState int

const (
	Inactive ActiveState = iota
	StaticNoCollision
	Static
	Active
)

func (s ActiveState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case StaticNoCollision:
		return "static_no_collision"
	case Static:
		return "static"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("ActiveState(%d)", int(s))
	}
}

// Visible reports whether the renderer should draw the chunk's mesh.
func (s ActiveState) Visible() bool { return s >= StaticNoCollision }

// Collidable reports whether physics should use the chunk's mesh.
func (s ActiveState) Collidable() bool { return s >= Static }

// Remeshes reports whether queued edits are applied and remeshed.
func (s ActiveState) Remeshes() bool { return s == Active }

// LOD holds the chunk-distance thresholds of each tier. Distances are
// Chebyshev distances in chunk coordinates.
type LOD struct {
	Active            int `yaml:"active"`
	Static            int `yaml:"static"`
	StaticNoCollision int `yaml:"static_no_collision"`
	// Resident chunks farther than Unload are released.
	Unload int `yaml:"unload"`
}

func DefaultLOD() LOD {
	return LOD{Active: 3, Static: 4, StaticNoCollision: 5, Unload: 7}
}

func (l LOD) Classify(distance int) ActiveState {
	switch {
	case distance <= l.Active:
		return Active
	case distance <= l.Static:
		return Static
	case distance <= l.StaticNoCollision:
		return StaticNoCollision
	default:
		return Inactive
	}
}

func (l LOD) validate() error {
	if l.Active < 0 || l.Static < l.Active || l.StaticNoCollision < l.Static || l.Unload < l.StaticNoCollision {
		return fmt.Errorf("%w: lod thresholds %+v must be non-negative and non-decreasing", ErrInvalidSettings, l)
	}
	return nil
}

// ChunkCoord addresses a chunk inside its layer's grid. Y grows upward from
// the bottom of the layer.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Chebyshev is the largest per-axis distance between a and b.
func Chebyshev(a, b ChunkCoord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y), abs(a.Z-b.Z))
}

// ChunkID is a stable handle for a chunk: its layer index and grid coord.
type ChunkID struct {
	Layer int
	ChunkCoord
}

func (id ChunkID) String() string {
	return fmt.Sprintf("L%d%s", id.Layer, id.ChunkCoord)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
