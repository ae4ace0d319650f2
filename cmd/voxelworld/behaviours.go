package main

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"VoxelStrata/internal/edit"
	"VoxelStrata/internal/logger"
	"VoxelStrata/internal/meshing"
	"VoxelStrata/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// walker circles the center of a layer at mid height.
type walker struct {
	center   mgl32.Vec3
	radius   float32
	speed    float32
	angle    float64
	position mgl32.Vec3
}

func newWalker(l *world.Layer, speed float32) *walker {
	b := l.Bounds()
	size := b.Size()
	return &walker{
		center: b.Center(),
		radius: 0.3 * min(size[0], size[2]),
		speed:  speed,
	}
}

func (v *walker) Start() {
	v.position = v.at(0)
}

func (v *walker) Update(dt time.Duration) {
	if v.radius > 0 {
		v.angle += float64(v.speed/v.radius) * dt.Seconds()
	}
	v.position = v.at(v.angle)
}

func (v *walker) at(angle float64) mgl32.Vec3 {
	s, c := math.Sincos(angle)
	return v.center.Add(mgl32.Vec3{v.radius * float32(c), 0, v.radius * float32(s)})
}

func (v *walker) Position() mgl32.Vec3 { return v.position }

// Heading is the walking direction.
func (v *walker) Heading() mgl32.Vec3 {
	s, c := math.Sincos(v.angle)
	return mgl32.Vec3{-float32(s), 0, float32(c)}
}

// beamShooter fires a carving beam along the walker's heading at a fixed
// interval, sealed with a half-open barrier.
type beamShooter struct {
	world     *world.World
	viewer    *walker
	every     time.Duration
	voxel     float32
	sinceLast time.Duration
	fired     int
}

func newBeamShooter(w *world.World, v *walker, every time.Duration, voxel float32) *beamShooter {
	return &beamShooter{world: w, viewer: v, every: every, voxel: voxel}
}

func (b *beamShooter) Start() {}

func (b *beamShooter) Update(dt time.Duration) {
	if b.every <= 0 {
		return
	}
	b.sinceLast += dt
	if b.sinceLast < b.every {
		return
	}
	b.sinceLast = 0

	start := b.viewer.Position()
	heading := b.viewer.Heading()
	beam := edit.BeamEdit{
		LineEdit: edit.LineEdit{
			Start:       start,
			End:         start.Add(heading.Mul(24 * b.voxel)),
			StartRadius: 1.5 * b.voxel,
			EndRadius:   3 * b.voxel,
			Steps:       12,
			Duration:    600 * time.Millisecond,
			Strength:    1.5,
			Polarity:    edit.Remove,
		},
		Barrier: edit.BarrierSpec{
			Normal:           heading,
			OpeningDirection: mgl32.Vec3{0, 1, 0},
			Radius:           3 * b.voxel,
			PercentFilled:    0.75,
			Strength:         2,
			VoxelSize:        b.voxel,
		},
	}
	if err := b.world.Submit(beam); err != nil {
		logger.Log.Warn("Beam rejected", zap.Error(err))
		return
	}
	b.fired++
}

// statsReporter sums tick reports and logs them periodically.
type statsReporter struct {
	every   time.Duration
	elapsed time.Duration
	total   world.TickReport
	ticks   int
}

func newStatsReporter(every time.Duration) *statsReporter {
	return &statsReporter{every: every}
}

func (s *statsReporter) observe(r world.TickReport, step time.Duration) {
	s.ticks++
	s.elapsed += step
	s.total.EditsReleased += r.EditsReleased
	s.total.EditsApplied += r.EditsApplied
	s.total.Extractions += r.Extractions
	s.total.Created = append(s.total.Created, r.Created...)
	s.total.Unloaded = append(s.total.Unloaded, r.Unloaded...)
	s.total.Failed = append(s.total.Failed, r.Failed...)

	if s.every <= 0 || s.elapsed < s.every {
		return
	}
	logger.Log.Info("World stats",
		zap.Duration("clock", r.Clock),
		zap.Int("ticks", s.ticks),
		zap.Int("resident", r.Resident),
		zap.Int("created", len(s.total.Created)),
		zap.Int("unloaded", len(s.total.Unloaded)),
		zap.Int("failed", len(s.total.Failed)),
		zap.Int("edits_released", s.total.EditsReleased),
		zap.Int("edits_applied", s.total.EditsApplied),
		zap.Int("extractions", s.total.Extractions))
	*s = statsReporter{every: s.every}
}

// meshExporter writes each updated chunk mesh with the mesh codec,
// overwriting the chunk's previous file.
type meshExporter struct {
	dir string
}

func newMeshExporter(dir string) (*meshExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &meshExporter{dir: dir}, nil
}

func (e *meshExporter) write(updates []world.MeshUpdate) {
	for _, u := range updates {
		data, err := meshing.EncodeMesh(u.Mesh)
		if err != nil {
			logger.Log.Error("Failed to encode mesh", zap.Stringer("chunk", u.Chunk), zap.Error(err))
			continue
		}
		path := filepath.Join(e.dir, u.Chunk.String()+".vmsh")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Log.Error("Failed to write mesh", zap.String("path", path), zap.Error(err))
		}
	}
}
