package edit

import (
	"math"
	"testing"
	"time"

	"VoxelStrata/internal/density"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testField() *density.Field {
	f := density.MustNew(16, 16, 16, mgl32.Vec3{}, 1)
	for i := range f.Values {
		f.Values[i] = float32(i%7)*0.25 - 0.75
	}
	return f
}

func TestPointEditRemoveThenAddRestores(t *testing.T) {
	f := testField()
	before := f.Clone()

	remove := PointEdit{Position: mgl32.Vec3{7.3, 8.1, 6.6}, Radius: 4, Strength: 2, Polarity: Remove}
	add := remove
	add.Polarity = Add

	remove.Apply(f)
	assert.Greater(t, before.MaxAbsDiff(f), 1.0, "edit changed the field")

	add.Apply(f)
	assert.LessOrEqual(t, before.MaxAbsDiff(f), 1e-5)
}

func TestPointEditFalloff(t *testing.T) {
	f := density.MustNew(9, 9, 9, mgl32.Vec3{}, 1)
	PointEdit{Position: mgl32.Vec3{4, 4, 4}, Radius: 2, Strength: 1, Polarity: Add}.Apply(f)

	assert.InDelta(t, 1, f.At(4, 4, 4), 1e-6)
	// t = 0.5: (1 - 0.25)^2
	assert.InDelta(t, 0.5625, f.At(5, 4, 4), 1e-6)
	assert.Zero(t, f.At(6, 4, 4), "samples on the radius are untouched")
	assert.Zero(t, f.At(0, 0, 0))
}

func TestPointEditIsNotIdempotent(t *testing.T) {
	f := density.MustNew(5, 5, 5, mgl32.Vec3{}, 1)
	e := PointEdit{Position: mgl32.Vec3{2, 2, 2}, Radius: 1.5, Strength: 0.5, Polarity: Add}
	e.Apply(f)
	e.Apply(f)
	assert.InDelta(t, 1, f.At(2, 2, 2), 1e-6)
}

func TestEditOutsideFieldIsNoop(t *testing.T) {
	f := testField()
	before := f.Clone()
	PointEdit{Position: mgl32.Vec3{100, 100, 100}, Radius: 3, Strength: 1}.Apply(f)
	assert.True(t, before.Equal(f))
}

func TestLineEditSchedule(t *testing.T) {
	line := LineEdit{
		Start:       mgl32.Vec3{0, 0, 0},
		End:         mgl32.Vec3{10, 0, 0},
		StartRadius: 1,
		EndRadius:   3,
		Steps:       5,
		Duration:    time.Second,
		Strength:    1,
		Polarity:    Remove,
	}
	require.NoError(t, line.Validate())

	steps := line.Schedule()
	require.Len(t, steps, 5)
	for i, s := range steps {
		assert.Equal(t, time.Second*time.Duration(i)/5, s.Delay)
		p, ok := s.Op.(PointEdit)
		require.True(t, ok)
		assert.InDelta(t, 2.5*float64(i), p.Position[0], 1e-5)
		assert.InDelta(t, 1+0.5*float64(i), p.Radius, 1e-5)
		assert.True(t, line.Bounds().Intersects(p.Bounds()))
	}
}

func TestLineEditApplyMatchesSteps(t *testing.T) {
	line := LineEdit{
		Start: mgl32.Vec3{2, 2, 2}, End: mgl32.Vec3{12, 10, 9},
		StartRadius: 2, EndRadius: 2, Steps: 4, Strength: 1, Polarity: Add,
	}
	direct := testField()
	line.Apply(direct)

	stepped := testField()
	for _, s := range line.Schedule() {
		s.Op.Apply(stepped)
	}
	assert.True(t, direct.Equal(stepped))
}

func TestBeamEditAddsTerminalBarrier(t *testing.T) {
	beam := BeamEdit{
		LineEdit: LineEdit{
			Start: mgl32.Vec3{0, 0, 0}, End: mgl32.Vec3{0, 0, 8},
			StartRadius: 1, EndRadius: 1, Steps: 6, Duration: 600 * time.Millisecond,
			Strength: 1, Polarity: Remove,
		},
		Barrier: BarrierSpec{Normal: mgl32.Vec3{0, 0, 1}, Radius: 2, PercentFilled: 1, Strength: 2},
	}
	require.NoError(t, beam.Validate())

	steps := beam.Schedule()
	require.Len(t, steps, 7)
	points := 0
	for _, s := range steps[:6] {
		if _, ok := s.Op.(PointEdit); ok {
			points++
		}
	}
	assert.Equal(t, 6, points)

	last := steps[6]
	barrier, ok := last.Op.(BarrierEdit)
	require.True(t, ok)
	assert.Equal(t, beam.Duration, last.Delay)
	assert.Equal(t, beam.End, barrier.Position)
}

func TestBarrierWedge(t *testing.T) {
	f := density.MustNew(11, 11, 3, mgl32.Vec3{-5, -5, -1}, 1)
	b := BarrierEdit{
		BarrierSpec: BarrierSpec{
			Normal:           mgl32.Vec3{0, 0, 1},
			OpeningDirection: mgl32.Vec3{1, 0, 0},
			Radius:           4,
			PercentFilled:    0.75,
			Strength:         1,
		},
	}
	require.NoError(t, b.Validate())
	b.Apply(f)

	// Sample index (5+x, 5+y, 1) is world (x, y, 0).
	assert.Zero(t, f.At(8, 5, 1), "inside the opening wedge")
	assert.Equal(t, float32(1), f.At(2, 5, 1), "opposite the opening")
	assert.Equal(t, float32(1), f.At(5, 8, 1), "90 degrees from the opening is filled at 75%")
	assert.Zero(t, f.At(5, 5, 0), "outside the slab thickness")
	assert.Zero(t, f.At(0, 5, 1), "beyond the radius")
}

func TestBarrierFullyOpenFillsNothing(t *testing.T) {
	f := density.MustNew(5, 5, 5, mgl32.Vec3{-2, -2, -2}, 1)
	BarrierEdit{BarrierSpec: BarrierSpec{Normal: mgl32.Vec3{0, 1, 0}, Radius: 2, Strength: 1}}.Apply(f)
	solid := 0
	for _, v := range f.Values {
		if v >= 0.5 {
			solid++
		}
	}
	assert.Zero(t, solid)
}

func TestValidation(t *testing.T) {
	nan := float32(math.NaN())
	cases := []struct {
		name string
		op   Operation
		err  error
	}{
		{"zero radius", PointEdit{Radius: 0, Strength: 1}, ErrInvalidRadius},
		{"nan position", PointEdit{Position: mgl32.Vec3{nan, 0, 0}, Radius: 1}, ErrInvalidPosition},
		{"negative strength", PointEdit{Radius: 1, Strength: -1}, ErrInvalidStrength},
		{"bad polarity", PointEdit{Radius: 1, Polarity: 7}, ErrInvalidPolarity},
		{"zero steps", LineEdit{StartRadius: 1, EndRadius: 1}, ErrInvalidSteps},
		{"negative duration", LineEdit{StartRadius: 1, EndRadius: 1, Steps: 1, Duration: -1}, ErrInvalidDuration},
		{"too many steps", LineEdit{StartRadius: 1, EndRadius: 1, Steps: MaxLineSteps + 1}, ErrInvalidSteps},
		{"huge steps", LineEdit{StartRadius: 1, EndRadius: 1, Steps: math.MaxInt32, Duration: time.Duration(math.MaxInt64)}, ErrInvalidSteps},
		{"duration too long", LineEdit{StartRadius: 1, EndRadius: 1, Steps: MaxLineSteps, Duration: MaxLineDuration + 1}, ErrInvalidDuration},
		{"percent above one", BarrierEdit{BarrierSpec: BarrierSpec{Normal: mgl32.Vec3{0, 1, 0}, Radius: 1, PercentFilled: 1.5}}, ErrInvalidPercent},
		{"zero normal", BarrierEdit{BarrierSpec: BarrierSpec{Radius: 1}}, ErrInvalidDirection},
		{"beam with bad barrier", BeamEdit{
			LineEdit: LineEdit{StartRadius: 1, EndRadius: 1, Steps: 1},
			Barrier:  BarrierSpec{Normal: mgl32.Vec3{0, 1, 0}, Radius: -2},
		}, ErrInvalidRadius},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.op.Validate(), tc.err)
		})
	}
}

func TestLongestSweepScheduleStaysOrdered(t *testing.T) {
	e := LineEdit{
		End:         mgl32.Vec3{100, 0, 0},
		StartRadius: 1,
		EndRadius:   1,
		Steps:       MaxLineSteps,
		Duration:    MaxLineDuration,
		Strength:    1,
	}
	require.NoError(t, e.Validate())

	steps := e.Schedule()
	require.Len(t, steps, MaxLineSteps)
	for i := 1; i < len(steps); i++ {
		assert.Greater(t, steps[i].Delay, steps[i-1].Delay)
	}
	assert.Less(t, steps[len(steps)-1].Delay, MaxLineDuration)
}

func TestRequestLifecycle(t *testing.T) {
	f := density.MustNew(4, 4, 4, mgl32.Vec3{}, 1)
	r := NewRequest(PointEdit{Position: mgl32.Vec3{1, 1, 1}, Radius: 1, Strength: 1, Polarity: Add})

	r.ApplyTo(f)
	assert.True(t, r.Applied())
	assert.False(t, r.InProgress())
	assert.Panics(t, func() { r.ApplyTo(f) })

	c := r.CloneFor()
	assert.Equal(t, r.ID, c.ID)
	assert.False(t, c.Applied())
	assert.NotPanics(t, func() { c.ApplyTo(f) })
}

func TestRequestBeginTwicePanics(t *testing.T) {
	r := NewRequest(PointEdit{Radius: 1})
	r.Begin()
	assert.True(t, r.InProgress())
	assert.Panics(t, r.Begin)
}
