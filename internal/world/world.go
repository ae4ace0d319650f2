// Package world streams a vertically layered voxel world around a viewer.
//
// A World owns an ordered stack of layers, each a fixed grid of chunks.
// Everything is driven by Tick from a single host thread: density fills and
// surface extractions run as kernels on a compute.Device and are polled on
// later ticks, so a tick never blocks on generation work.
package world

import (
	"fmt"
	"sort"
	"time"

	"VoxelStrata/internal/compute"
	"VoxelStrata/internal/edit"
	"VoxelStrata/internal/generator"
	"VoxelStrata/internal/logger"
	"VoxelStrata/internal/meshing"
	"VoxelStrata/internal/metrics"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MeshUpdate carries a chunk's replacement mesh to the renderer and
// physics. The mesh is never patched; each update replaces the last.
type MeshUpdate struct {
	Chunk ChunkID
	Mesh  *meshing.Mesh
}

// TickReport lists the side effects of one Tick.
type TickReport struct {
	Clock       time.Duration
	MeshUpdates []MeshUpdate
	Created     []ChunkID
	Unloaded    []ChunkID
	Failed      []ChunkID
	Dispatched  []ChunkID

	EditsReleased int
	EditsApplied  int
	Extractions   int
	Resident      int
}

// scheduledEdit is one step of a submitted sequence, waiting for the world
// clock to reach due.
type scheduledEdit struct {
	due time.Duration
	seq uint64
	op  edit.Operation
}

type Option func(*World)

// WithLogger replaces the package logger for this world.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) { w.env.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *World) { w.env.metrics = m }
}

type World struct {
	settings Settings
	layers   []*Layer
	env      *env

	clock     time.Duration
	scheduled []scheduledEdit
	seq       uint64
	closed    bool
}

// New builds the layer stack top to bottom. Layer i starts LayerMargin
// below the bottom of layer i-1, and every layer's depth is a whole number
// of chunk spans. Generators are seeded from the world seed and the layer
// index, so equal settings give an identical world.
func New(s Settings, device compute.Device, opts ...Option) (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		settings: s,
		env: &env{
			device:      device,
			log:         logger.Log,
			interpolate: s.Interpolate,
		},
	}
	for _, opt := range opts {
		opt(w)
	}

	top := s.Origin[1]
	for i, ls := range s.Layers {
		depth, ny := s.QuantizedDepth(ls.Depth)

		p := ls.Params
		p.Top = top
		p.Bottom = top - depth
		p.OriginX, p.OriginZ = s.Origin[0], s.Origin[2]
		p.AreaX, p.AreaZ = s.AreaX, s.AreaZ

		gen, err := generator.New(ls.Generator, generator.SubSeed(s.Seed, uint64(i)), p)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, ls.Name, err)
		}

		l := newLayer(i, ls.Name, gen, top, depth, ny, s)
		w.layers = append(w.layers, l)
		nx, _, nz := l.Dims()
		w.env.log.Info("Layer initialized",
			zap.Int("index", i),
			zap.String("name", ls.Name),
			zap.String("generator", gen.Name()),
			zap.Float32("top", top),
			zap.Float32("depth", depth),
			zap.Int("chunks_x", nx),
			zap.Int("chunks_y", ny),
			zap.Int("chunks_z", nz))

		top -= depth + s.LayerMargin
	}
	return w, nil
}

func (w *World) Settings() Settings    { return w.settings }
func (w *World) Layers() []*Layer      { return w.layers }
func (w *World) Clock() time.Duration  { return w.clock }
func (w *World) PendingScheduled() int { return len(w.scheduled) }

// Chunk looks up a resident chunk by handle.
func (w *World) Chunk(id ChunkID) (*Chunk, bool) {
	if id.Layer < 0 || id.Layer >= len(w.layers) {
		return nil, false
	}
	c := w.layers[id.Layer].Chunk(id.ChunkCoord)
	return c, c != nil
}

// Submit validates op and hands it to the world. Sequences are expanded
// into time-delayed steps released by later ticks; other operations are
// distributed to the affected chunks immediately.
func (w *World) Submit(op edit.Operation) error {
	if w.closed {
		return ErrClosed
	}
	if op == nil {
		return ErrNilOperation
	}
	if err := op.Validate(); err != nil {
		w.env.metrics.EditRejected()
		return fmt.Errorf("world: edit rejected: %w", err)
	}

	if seq, ok := op.(edit.Sequence); ok {
		for _, step := range seq.Schedule() {
			w.seq++
			w.scheduled = append(w.scheduled, scheduledEdit{
				due: w.clock + step.Delay,
				seq: w.seq,
				op:  step.Op.Clone(),
			})
		}
		sort.Slice(w.scheduled, func(i, j int) bool {
			a, b := w.scheduled[i], w.scheduled[j]
			if a.due != b.due {
				return a.due < b.due
			}
			return a.seq < b.seq
		})
		return nil
	}

	w.distribute(op)
	return nil
}

// distribute is the two-level broad phase: layers whose bounds miss the
// edit are skipped, then each layer filters its chunks. It returns the
// number of chunks that received a copy.
func (w *World) distribute(op edit.Operation) int {
	req := edit.NewRequest(op.Clone())
	bounds := op.Bounds()

	n := 0
	for _, l := range w.layers {
		if l.Bounds().Intersects(bounds) {
			n += l.DistributeEdit(req)
		}
	}
	if n == 0 {
		w.env.metrics.EditDropped()
		w.env.log.Debug("Edit reached no chunk", zap.String("request", req.ID.String()))
	}
	return n
}

// Tick advances the world clock by elapsed, releases due edits and updates
// every layer for a viewer at the given position.
func (w *World) Tick(elapsed time.Duration, viewer mgl32.Vec3) TickReport {
	start := time.Now()
	var r TickReport
	if w.closed {
		return r
	}

	w.clock += elapsed
	r.Clock = w.clock

	due := 0
	for due < len(w.scheduled) && w.scheduled[due].due <= w.clock {
		w.distribute(w.scheduled[due].op)
		due++
	}
	w.scheduled = w.scheduled[due:]
	r.EditsReleased = due

	for _, l := range w.layers {
		r.Unloaded = append(r.Unloaded, l.UpdateActivity(viewer, w.env)...)
		vc := l.ViewerCoord(viewer)
		l.EnqueueMissingNear(vc)
		if id, ok := l.dispatch(vc, w.env); ok {
			r.Dispatched = append(r.Dispatched, id)
		}
		l.updateChunks(w.env, &r)
		r.Resident += l.Resident()
	}

	w.env.metrics.SetResident(r.Resident)
	w.env.metrics.ObserveTick(time.Since(start).Seconds())
	return r
}

// Close unloads every layer and drops scheduled edits. The device is owned
// by the caller and is left open.
func (w *World) Close() {
	if w.closed {
		return
	}
	for _, l := range w.layers {
		l.unload(w.env)
	}
	w.scheduled = nil
	w.closed = true
	w.env.log.Info("World closed", zap.Duration("clock", w.clock))
}
