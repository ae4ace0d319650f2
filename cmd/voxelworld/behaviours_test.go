package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"VoxelStrata/internal/compute"
	"VoxelStrata/internal/meshing"
	"VoxelStrata/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	s := world.DefaultSettings()
	s.AreaX, s.AreaZ = 64, 64
	dev := compute.NewSyncDevice()
	t.Cleanup(dev.Close)
	w, err := world.New(s, dev)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestWalkerCirclesLayerCenter(t *testing.T) {
	w := testWorld(t)
	top := w.Layers()[0]
	v := newWalker(top, 4)
	v.Start()

	center := top.Bounds().Center()
	for i := 0; i < 20; i++ {
		v.Update(100 * time.Millisecond)
		offset := v.Position().Sub(center)
		assert.InDelta(t, v.radius, offset.Len(), 1e-3)
		assert.InDelta(t, 0, offset.Dot(v.Heading()), 1e-3)
		assert.True(t, top.Bounds().Contains(v.Position()))
	}
}

func TestBeamShooterFiresOnInterval(t *testing.T) {
	w := testWorld(t)
	v := newWalker(w.Layers()[0], 4)
	v.Start()
	b := newBeamShooter(w, v, time.Second, 1)

	b.Update(500 * time.Millisecond)
	assert.Zero(t, b.fired)
	assert.Zero(t, w.PendingScheduled())

	b.Update(500 * time.Millisecond)
	assert.Equal(t, 1, b.fired)
	// Twelve beam steps plus the closing barrier.
	assert.Equal(t, 13, w.PendingScheduled())
}

func TestBeamShooterDisabled(t *testing.T) {
	w := testWorld(t)
	v := newWalker(w.Layers()[0], 4)
	b := newBeamShooter(w, v, 0, 1)
	b.Update(time.Hour)
	assert.Zero(t, b.fired)
}

func TestStatsReporterResetsAfterLogging(t *testing.T) {
	s := newStatsReporter(time.Second)
	r := world.TickReport{EditsApplied: 2, Extractions: 1}

	s.observe(r, 400*time.Millisecond)
	s.observe(r, 400*time.Millisecond)
	assert.Equal(t, 2, s.ticks)
	assert.Equal(t, 4, s.total.EditsApplied)

	s.observe(r, 400*time.Millisecond)
	assert.Zero(t, s.ticks)
	assert.Zero(t, s.total.EditsApplied)
	assert.Equal(t, time.Second, s.every)
}

func TestMeshExporterWritesDecodableFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meshes")
	e, err := newMeshExporter(dir)
	require.NoError(t, err)

	m := &meshing.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:  []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:  []uint32{0, 1, 2},
	}
	id := world.ChunkID{Layer: 1, ChunkCoord: world.ChunkCoord{X: 2, Y: 0, Z: 3}}
	e.write([]world.MeshUpdate{{Chunk: id, Mesh: m}})

	data, err := os.ReadFile(filepath.Join(dir, id.String()+".vmsh"))
	require.NoError(t, err)
	got, err := meshing.DecodeMesh(data)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, got.Vertices)
	assert.Equal(t, m.Indices, got.Indices)
}
