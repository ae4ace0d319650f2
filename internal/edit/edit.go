// Package edit holds the operations that reshape density fields at runtime:
// spherical point edits, timed line and beam sweeps, and barrier discs.
package edit

import (
	"errors"
	"math"
	"time"

	"VoxelStrata/internal/density"
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidPosition  = errors.New("edit: position must be finite")
	ErrInvalidRadius    = errors.New("edit: radius must be positive and finite")
	ErrInvalidStrength  = errors.New("edit: strength must be non-negative and finite")
	ErrInvalidSteps     = errors.New("edit: steps out of range")
	ErrInvalidDuration  = errors.New("edit: duration out of range")
	ErrInvalidPercent   = errors.New("edit: percent filled must be within [0, 1]")
	ErrInvalidDirection = errors.New("edit: direction must be finite and non-zero")
	ErrInvalidPolarity  = errors.New("edit: unknown polarity")
)

// Operation is one shape applied to the density samples it covers.
// Apply only writes samples inside Bounds.
type Operation interface {
	Bounds() geometry.AABB
	Apply(f *density.Field)
	Clone() Operation
	Validate() error
}

// Scheduled is one step of a Sequence, due Delay after submission.
type Scheduled struct {
	Delay time.Duration
	Op    Operation
}

// Sequence is an operation spread over time. Submitting it through a world
// applies its schedule step by step; Apply runs every step at once.
type Sequence interface {
	Operation
	Schedule() []Scheduled
}

type Polarity int

const (
	Remove Polarity = iota
	Add
)

func (p Polarity) String() string {
	switch p {
	case Remove:
		return "remove"
	case Add:
		return "add"
	default:
		return "unknown"
	}
}

func (p Polarity) sign() float32 {
	if p == Add {
		return 1
	}
	return -1
}

func (p Polarity) valid() bool {
	return p == Add || p == Remove
}

func validRadius(r float32) bool {
	return r > 0 && !math.IsInf(float64(r), 0)
}

func validStrength(s float32) bool {
	return s >= 0 && !math.IsInf(float64(s), 0)
}

// forEachSample calls fn for every sample of f inside box.
func forEachSample(f *density.Field, box geometry.AABB, fn func(i, j, k int, p mgl32.Vec3)) {
	r := f.CellRange(box)
	if r.Empty() {
		return
	}
	for k := r.MinK; k < r.MaxK; k++ {
		for j := r.MinJ; j < r.MaxJ; j++ {
			for i := r.MinI; i < r.MaxI; i++ {
				fn(i, j, k, f.WorldPosition(i, j, k))
			}
		}
	}
}
