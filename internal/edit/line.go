package edit

import (
	"fmt"
	"time"

	"VoxelStrata/internal/density"
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// Upper bounds for a single sweep.
const (
	MaxLineSteps    = 1024
	MaxLineDuration = time.Hour
)

// LineEdit sweeps Steps point edits from Start to End, the radius blending
// linearly from StartRadius to EndRadius. Step i is due Duration*i/Steps
// after submission.
type LineEdit struct {
	Start, End             mgl32.Vec3
	StartRadius, EndRadius float32
	Steps                  int
	Duration               time.Duration
	Strength               float32
	Polarity               Polarity
}

// Points returns the point edits of the sweep in order.
func (e LineEdit) Points() []PointEdit {
	out := make([]PointEdit, 0, e.Steps)
	for i := 0; i < e.Steps; i++ {
		t := float32(0)
		if e.Steps > 1 {
			t = float32(i) / float32(e.Steps-1)
		}
		out = append(out, PointEdit{
			Position: e.Start.Add(e.End.Sub(e.Start).Mul(t)),
			Radius:   e.StartRadius + (e.EndRadius-e.StartRadius)*t,
			Strength: e.Strength,
			Polarity: e.Polarity,
		})
	}
	return out
}

func (e LineEdit) Schedule() []Scheduled {
	points := e.Points()
	out := make([]Scheduled, len(points))
	for i, p := range points {
		out[i] = Scheduled{
			Delay: e.Duration * time.Duration(i) / time.Duration(e.Steps),
			Op:    p,
		}
	}
	return out
}

// Bounds covers both end spheres, and so every interpolated sphere between.
func (e LineEdit) Bounds() geometry.AABB {
	return geometry.SphereBounds(e.Start, e.StartRadius).Union(geometry.SphereBounds(e.End, e.EndRadius))
}

func (e LineEdit) Apply(f *density.Field) {
	for _, p := range e.Points() {
		p.Apply(f)
	}
}

func (e LineEdit) Clone() Operation { return e }

func (e LineEdit) Validate() error {
	switch {
	case !geometry.Finite(e.Start) || !geometry.Finite(e.End):
		return fmt.Errorf("%w: %v -> %v", ErrInvalidPosition, e.Start, e.End)
	case !validRadius(e.StartRadius) || !validRadius(e.EndRadius):
		return fmt.Errorf("%w: %v -> %v", ErrInvalidRadius, e.StartRadius, e.EndRadius)
	case e.Steps <= 0 || e.Steps > MaxLineSteps:
		return fmt.Errorf("%w: %d", ErrInvalidSteps, e.Steps)
	case e.Duration < 0 || e.Duration > MaxLineDuration:
		return fmt.Errorf("%w: %v", ErrInvalidDuration, e.Duration)
	case !validStrength(e.Strength):
		return fmt.Errorf("%w: %v", ErrInvalidStrength, e.Strength)
	case !e.Polarity.valid():
		return fmt.Errorf("%w: %d", ErrInvalidPolarity, e.Polarity)
	}
	return nil
}
