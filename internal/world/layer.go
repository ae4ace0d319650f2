package world

import (
	"math"

	"VoxelStrata/internal/edit"
	"VoxelStrata/internal/generator"
	"VoxelStrata/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Layer is one depth band of the world: a fixed grid of chunk slots, a
// creation queue and the generator that fills its chunks.
type Layer struct {
	index  int
	name   string
	gen    generator.Generator
	min    mgl32.Vec3
	depth  float32
	span   float32
	voxels int
	scale  float32
	lod    LOD

	nx, ny, nz int
	slots      []*Chunk
	resident   int

	queue    []ChunkCoord
	queued   map[ChunkCoord]bool
	activity ActiveState
}

func newLayer(index int, name string, gen generator.Generator, top, depth float32, ny int, s Settings) *Layer {
	span := s.ChunkSpan()
	l := &Layer{
		index:  index,
		name:   name,
		gen:    gen,
		min:    mgl32.Vec3{s.Origin[0], top - depth, s.Origin[2]},
		depth:  depth,
		span:   span,
		voxels: s.VoxelsPerAxis,
		scale:  s.VoxelScale,
		lod:    s.LOD,
		nx:     int(math.Ceil(float64(s.AreaX / span))),
		ny:     ny,
		nz:     int(math.Ceil(float64(s.AreaZ / span))),
		queued: make(map[ChunkCoord]bool),
	}
	l.slots = make([]*Chunk, l.nx*l.ny*l.nz)
	return l
}

func (l *Layer) Index() int                     { return l.index }
func (l *Layer) Name() string                   { return l.name }
func (l *Layer) Generator() generator.Generator { return l.gen }
func (l *Layer) Depth() float32                 { return l.depth }
func (l *Layer) Top() float32                   { return l.min[1] + l.depth }
func (l *Layer) Activity() ActiveState          { return l.activity }
func (l *Layer) Resident() int                  { return l.resident }
func (l *Layer) QueueLen() int                  { return len(l.queue) }

// Dims returns the chunk grid size.
func (l *Layer) Dims() (nx, ny, nz int) { return l.nx, l.ny, l.nz }

// Bounds is the exact union of the layer's chunk boxes.
func (l *Layer) Bounds() geometry.AABB {
	return geometry.AABB{
		Min: l.min,
		Max: l.min.Add(mgl32.Vec3{float32(l.nx) * l.span, l.depth, float32(l.nz) * l.span}),
	}
}

func (l *Layer) inGrid(c ChunkCoord) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 && c.X < l.nx && c.Y < l.ny && c.Z < l.nz
}

func (l *Layer) slot(c ChunkCoord) int {
	return c.X + l.nx*(c.Y+l.ny*c.Z)
}

// Chunk returns the resident chunk at c, or nil.
func (l *Layer) Chunk(c ChunkCoord) *Chunk {
	if !l.inGrid(c) {
		return nil
	}
	return l.slots[l.slot(c)]
}

// Chunks calls fn for every resident chunk.
func (l *Layer) Chunks(fn func(*Chunk)) {
	for _, c := range l.slots {
		if c != nil {
			fn(c)
		}
	}
}

// ViewerCoord maps a world position to the chunk coordinate containing it.
// The result may lie outside the grid.
func (l *Layer) ViewerCoord(pos mgl32.Vec3) ChunkCoord {
	rel := pos.Sub(l.min).Mul(1 / l.span)
	return ChunkCoord{
		X: int(math.Floor(float64(rel[0]))),
		Y: int(math.Floor(float64(rel[1]))),
		Z: int(math.Floor(float64(rel[2]))),
	}
}

func (l *Layer) clampCoord(c ChunkCoord) ChunkCoord {
	return ChunkCoord{
		X: min(max(c.X, 0), l.nx-1),
		Y: min(max(c.Y, 0), l.ny-1),
		Z: min(max(c.Z, 0), l.nz-1),
	}
}

func (l *Layer) chunkOrigin(c ChunkCoord) mgl32.Vec3 {
	return l.min.Add(mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}.Mul(l.span))
}

func (l *Layer) chunkID(c ChunkCoord) ChunkID {
	return ChunkID{Layer: l.index, ChunkCoord: c}
}

// UpdateActivity assigns every resident chunk its tier for the viewer at
// pos and unloads chunks beyond the unload distance. It returns the IDs of
// unloaded chunks.
func (l *Layer) UpdateActivity(pos mgl32.Vec3, e *env) []ChunkID {
	vc := l.ViewerCoord(pos)
	l.activity = l.lod.Classify(Chebyshev(vc, l.clampCoord(vc)))

	var unloaded []ChunkID
	for i, c := range l.slots {
		if c == nil {
			continue
		}
		d := Chebyshev(vc, c.id.ChunkCoord)
		if d > l.lod.Unload {
			c.unload(e)
			l.slots[i] = nil
			l.resident--
			unloaded = append(unloaded, c.id)
			e.metrics.ChunkUnloaded()
			e.log.Debug("Chunk unloaded", zap.Stringer("chunk", c.id), zap.Int("distance", d))
			continue
		}
		c.activity = l.lod.Classify(d)
	}
	return unloaded
}

// EnqueueMissingNear queues creation of every empty slot within the
// visible range of vc, nearest rings first. Coords already queued or
// resident are skipped.
func (l *Layer) EnqueueMissingNear(vc ChunkCoord) int {
	r := l.lod.StaticNoCollision
	added := 0
	for d := 0; d <= r; d++ {
		for z := vc.Z - d; z <= vc.Z+d; z++ {
			for y := vc.Y - d; y <= vc.Y+d; y++ {
				for x := vc.X - d; x <= vc.X+d; x++ {
					c := ChunkCoord{x, y, z}
					if Chebyshev(vc, c) != d || !l.inGrid(c) {
						continue
					}
					if l.queued[c] || l.slots[l.slot(c)] != nil {
						continue
					}
					l.queue = append(l.queue, c)
					l.queued[c] = true
					added++
				}
			}
		}
	}
	return added
}

// dispatch pops the creation queue until one chunk is created or the queue
// is empty. Entries that drifted out of range are discarded.
func (l *Layer) dispatch(vc ChunkCoord, e *env) (ChunkID, bool) {
	for len(l.queue) > 0 {
		c := l.queue[0]
		l.queue = l.queue[1:]
		delete(l.queued, c)

		if l.slots[l.slot(c)] != nil || Chebyshev(vc, c) > l.lod.StaticNoCollision {
			continue
		}
		ch := newChunk(l.chunkID(c), l.chunkOrigin(c), l.voxels, l.scale)
		ch.activity = l.lod.Classify(Chebyshev(vc, c))
		l.slots[l.slot(c)] = ch
		l.resident++
		ch.beginGeneration(l.gen, e)
		return ch.id, true
	}
	return ChunkID{}, false
}

// DistributeEdit hands a clone of req to every resident, non-inactive chunk
// whose bounds intersect the edit. It returns how many chunks took it.
func (l *Layer) DistributeEdit(req *edit.Request) int {
	bounds := req.Op.Bounds()
	n := 0
	for _, c := range l.slots {
		if c == nil || !c.accepts() || !c.Bounds().Intersects(bounds) {
			continue
		}
		if c.enqueue(req.CloneFor()) {
			n++
		}
	}
	return n
}

// updateChunks advances every resident chunk and folds the results into r.
// Chunks whose generation failed are dropped so a later sweep recreates
// them.
func (l *Layer) updateChunks(e *env, r *TickReport) {
	for i, c := range l.slots {
		if c == nil {
			continue
		}
		ev := c.update(e)
		r.EditsApplied += ev.editsApplied
		r.Extractions += ev.extractions
		if ev.failed {
			l.slots[i] = nil
			l.resident--
			r.Failed = append(r.Failed, c.id)
			continue
		}
		if ev.created {
			r.Created = append(r.Created, c.id)
		}
		if ev.meshUpdated {
			r.MeshUpdates = append(r.MeshUpdates, MeshUpdate{Chunk: c.id, Mesh: c.mesh})
		}
	}
}

// unload releases every resident chunk and clears the queue.
func (l *Layer) unload(e *env) {
	for i, c := range l.slots {
		if c != nil {
			c.unload(e)
			l.slots[i] = nil
		}
	}
	l.resident = 0
	l.queue = nil
	l.queued = make(map[ChunkCoord]bool)
	l.activity = Inactive
}
