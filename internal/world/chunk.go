package world

import (
	"VoxelStrata/internal/compute"
	"VoxelStrata/internal/density"
	"VoxelStrata/internal/edit"
	"VoxelStrata/internal/generator"
	"VoxelStrata/internal/geometry"
	"VoxelStrata/internal/meshing"
	"VoxelStrata/internal/metrics"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type ChunkState int

const (
	Unloaded ChunkState = iota
	Generating
	Ready
)

func (s ChunkState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Generating:
		return "generating"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// env is what a chunk needs from its world while updating.
type env struct {
	device      compute.Device
	log         *zap.Logger
	metrics     *metrics.Metrics
	interpolate bool
}

// task is an in-flight kernel. epoch is the chunk epoch at submission; a
// result whose epoch no longer matches belongs to an unloaded chunk.
type task struct {
	handle compute.Handle
	epoch  uint64
}

// chunkEvents reports what one update of a chunk did.
type chunkEvents struct {
	created      bool
	failed       bool
	meshUpdated  bool
	editsApplied int
	extractions  int
}

// Chunk is one cubic region of a layer. It owns its density field and the
// mesh derived from it. All methods run on the tick thread.
type Chunk struct {
	id     ChunkID
	origin mgl32.Vec3
	span   float32
	scale  float32
	n      int

	state     ChunkState
	activity  ActiveState
	generated bool
	epoch     uint64

	field *density.Field
	mesh  *meshing.Mesh
	queue []*edit.Request
	// dirty is set when the field changed but no extraction has been
	// adopted since.
	dirty bool

	fill        *task
	fillKernel  *generator.FillKernel
	extract     *task
	extractKern *meshing.ExtractKernel
}

func newChunk(id ChunkID, origin mgl32.Vec3, voxels int, scale float32) *Chunk {
	return &Chunk{
		id:     id,
		origin: origin,
		n:      voxels,
		scale:  scale,
		span:   float32(voxels) * scale,
	}
}

func (c *Chunk) ID() ChunkID             { return c.id }
func (c *Chunk) State() ChunkState       { return c.state }
func (c *Chunk) Activity() ActiveState   { return c.activity }
func (c *Chunk) Generated() bool         { return c.generated }
func (c *Chunk) Visible() bool           { return c.generated && c.activity.Visible() }
func (c *Chunk) Collidable() bool        { return c.generated && c.activity.Collidable() }
func (c *Chunk) Mesh() *meshing.Mesh     { return c.mesh }
func (c *Chunk) PendingEdits() int       { return len(c.queue) }
func (c *Chunk) ExtractionPending() bool { return c.extract != nil }

// Field exposes the density samples for inspection. Callers must not write
// to it.
func (c *Chunk) Field() *density.Field { return c.field }

// Bounds is the world box covered by the chunk's samples.
func (c *Chunk) Bounds() geometry.AABB {
	return geometry.AABB{
		Min: c.origin,
		Max: c.origin.Add(mgl32.Vec3{c.span, c.span, c.span}),
	}
}

func (c *Chunk) Center() mgl32.Vec3 {
	return c.Bounds().Center()
}

// accepts reports whether the chunk takes new edit requests. Inactive
// chunks drop them.
func (c *Chunk) accepts() bool {
	return c.state != Unloaded && c.activity != Inactive
}

// enqueue appends req to the pending queue. It is applied on a later update
// once the chunk is ready, active and no extraction is pending.
func (c *Chunk) enqueue(req *edit.Request) bool {
	if !c.accepts() {
		return false
	}
	c.queue = append(c.queue, req)
	return true
}

// beginGeneration allocates a scratch field and submits the density fill.
func (c *Chunk) beginGeneration(gen generator.Generator, e *env) {
	field := density.MustNew(c.n+1, c.n+1, c.n+1, c.origin, c.scale)
	c.fillKernel = generator.NewFillKernel(gen, field)
	c.fill = &task{handle: e.device.Submit(c.fillKernel), epoch: c.epoch}
	c.state = Generating
	e.log.Debug("Chunk generation submitted", zap.Stringer("chunk", c.id))
}

func (c *Chunk) submitExtraction(e *env) {
	c.extractKern = meshing.NewExtractKernel(c.field, density.IsoLevel, e.interpolate)
	c.extract = &task{handle: e.device.Submit(c.extractKern), epoch: c.epoch}
}

// update advances the chunk by polling its in-flight task, then drains the
// edit queue when the chunk is active and idle.
func (c *Chunk) update(e *env) chunkEvents {
	var ev chunkEvents

	if c.fill != nil {
		status, err := e.device.Poll(c.fill.handle)
		switch status {
		case compute.Pending:
			return ev
		case compute.Failed:
			e.log.Warn("Chunk generation failed", zap.Stringer("chunk", c.id), zap.Error(err))
			c.fail(e)
			ev.failed = true
			return ev
		}
		e.device.Release(c.fill.handle)
		if c.fill.epoch == c.epoch {
			c.field = c.fillKernel.Field()
		}
		c.fill, c.fillKernel = nil, nil
		if c.field == nil {
			return ev
		}
		c.submitExtraction(e)
		ev.extractions++
		return ev
	}

	if c.extract != nil {
		status, err := e.device.Poll(c.extract.handle)
		switch status {
		case compute.Pending:
			return ev
		case compute.Failed:
			e.device.Release(c.extract.handle)
			c.extract, c.extractKern = nil, nil
			if !c.generated {
				e.log.Warn("Chunk initial extraction failed", zap.Stringer("chunk", c.id), zap.Error(err))
				c.fail(e)
				ev.failed = true
				return ev
			}
			// The field is intact; remesh on a later update.
			e.log.Warn("Chunk extraction failed", zap.Stringer("chunk", c.id), zap.Error(err))
			e.metrics.GenerationFailure()
			c.dirty = true
			return ev
		}
		e.device.Release(c.extract.handle)
		if c.extract.epoch == c.epoch {
			c.mesh = c.extractKern.Mesh()
			c.dirty = false
			ev.meshUpdated = true
			e.metrics.Extracted(c.mesh.TriangleCount())
			if !c.generated {
				c.generated = true
				c.state = Ready
				ev.created = true
				e.metrics.ChunkCreated()
				e.log.Debug("Chunk ready",
					zap.Stringer("chunk", c.id),
					zap.Int("triangles", c.mesh.TriangleCount()))
			}
		}
		c.extract, c.extractKern = nil, nil
	}

	if c.state != Ready || !c.activity.Remeshes() {
		return ev
	}
	if len(c.queue) == 0 && !c.dirty {
		return ev
	}

	// Apply the whole batch, then remesh once.
	queue := c.queue
	c.queue = nil
	for _, req := range queue {
		req.ApplyTo(c.field)
		e.metrics.EditApplied()
	}
	ev.editsApplied = len(queue)
	c.submitExtraction(e)
	ev.extractions++
	return ev
}

// fail drops everything generated so far and returns the chunk to Unloaded
// so its layer can retry on the next sweep.
func (c *Chunk) fail(e *env) {
	e.metrics.GenerationFailure()
	c.unload(e)
}

// unload releases in-flight tasks and buffers. Results still running on
// the device are never adopted: their handles are forgotten and their epoch
// is stale.
func (c *Chunk) unload(e *env) {
	if c.fill != nil {
		e.device.Release(c.fill.handle)
	}
	if c.extract != nil {
		e.device.Release(c.extract.handle)
	}
	c.fill, c.fillKernel = nil, nil
	c.extract, c.extractKern = nil, nil
	c.epoch++
	c.field = nil
	c.mesh = nil
	c.queue = nil
	c.dirty = false
	c.generated = false
	c.state = Unloaded
	c.activity = Inactive
}
