package host

import (
	"context"
	"testing"
	"time"

	"VoxelStrata/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBehaviour struct {
	starts  int
	updates int
	order   *[]string
	name    string
}

func (b *recordingBehaviour) Start() { b.starts++ }

func (b *recordingBehaviour) Update(time.Duration) {
	b.updates++
	if b.order != nil {
		*b.order = append(*b.order, b.name)
	}
}

type fakeWorld struct {
	ticks   int
	elapsed time.Duration
	viewers []mgl32.Vec3
	order   *[]string
}

func (w *fakeWorld) Tick(elapsed time.Duration, viewer mgl32.Vec3) world.TickReport {
	w.ticks++
	w.elapsed += elapsed
	w.viewers = append(w.viewers, viewer)
	if w.order != nil {
		*w.order = append(*w.order, "world")
	}
	return world.TickReport{Clock: w.elapsed}
}

type fixedViewer mgl32.Vec3

func (v fixedViewer) Position() mgl32.Vec3 { return mgl32.Vec3(v) }

func TestBehaviourManagerStartsOnce(t *testing.T) {
	m := NewBehaviourManager()
	b := &recordingBehaviour{}
	m.Add(b)

	m.UpdateAll(time.Millisecond)
	m.UpdateAll(time.Millisecond)
	assert.Equal(t, 1, b.starts)
	assert.Equal(t, 2, b.updates)

	m.Remove(b)
	assert.Zero(t, m.Len())
}

func TestBehaviourManagerRemoveKeepsOrder(t *testing.T) {
	var order []string
	a := &recordingBehaviour{name: "a", order: &order}
	b := &recordingBehaviour{name: "b", order: &order}
	c := &recordingBehaviour{name: "c", order: &order}

	m := NewBehaviourManager()
	m.Add(a)
	m.Add(b)
	m.Add(c)
	m.Remove(a)
	m.UpdateAll(time.Millisecond)
	assert.Equal(t, []string{"b", "c"}, order)
}

func TestStepUpdatesBehavioursBeforeWorld(t *testing.T) {
	var order []string
	w := &fakeWorld{order: &order}
	l := NewLoop(w, fixedViewer{1, 2, 3}, 50)
	l.Behaviours.Add(&recordingBehaviour{name: "walker", order: &order})

	var reports []world.TickReport
	l.OnTick = func(r world.TickReport) { reports = append(reports, r) }

	l.Step()
	l.Step()

	assert.Equal(t, []string{"walker", "world", "walker", "world"}, order)
	assert.Equal(t, 20*time.Millisecond, l.StepDuration())
	assert.Equal(t, 40*time.Millisecond, w.elapsed)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, w.viewers[0])
	require.Len(t, reports, 2)
	assert.Equal(t, uint64(2), l.Frames())
}

func TestRunStopsOnCancel(t *testing.T) {
	w := &fakeWorld{}
	l := NewLoop(w, fixedViewer{}, 200)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	assert.Positive(t, w.ticks)
	assert.Equal(t, uint64(w.ticks), l.Frames())
}
