package edit

import (
	"VoxelStrata/internal/density"
	"VoxelStrata/internal/geometry"
)

// BeamEdit is a LineEdit that leaves a barrier at End once the sweep has
// finished.
type BeamEdit struct {
	LineEdit
	Barrier BarrierSpec
}

func (e BeamEdit) terminal() BarrierEdit {
	return e.Barrier.At(e.End)
}

func (e BeamEdit) Schedule() []Scheduled {
	steps := e.LineEdit.Schedule()
	return append(steps, Scheduled{Delay: e.Duration, Op: e.terminal()})
}

func (e BeamEdit) Bounds() geometry.AABB {
	return e.LineEdit.Bounds().Union(e.terminal().Bounds())
}

func (e BeamEdit) Apply(f *density.Field) {
	e.LineEdit.Apply(f)
	e.terminal().Apply(f)
}

func (e BeamEdit) Clone() Operation { return e }

func (e BeamEdit) Validate() error {
	if err := e.LineEdit.Validate(); err != nil {
		return err
	}
	return e.terminal().Validate()
}
