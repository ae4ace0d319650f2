package meshing

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"runtime"
	"testing"

	"VoxelStrata/internal/density"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantField(n int, v float32) *density.Field {
	f := density.MustNew(n, n, n, mgl32.Vec3{}, 1)
	f.Fill(v)
	return f
}

// sphereField samples a signed distance sphere, positive inside.
func sphereField(n int, radius float32) *density.Field {
	f := density.MustNew(n, n, n, mgl32.Vec3{}, 1)
	c := float32(n-1) / 2
	center := mgl32.Vec3{c, c, c}
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				f.Set(i, j, k, radius-f.WorldPosition(i, j, k).Sub(center).Len())
			}
		}
	}
	return f
}

func edgeKey(a, b mgl32.Vec3) string {
	return fmt.Sprintf("%.4f,%.4f,%.4f|%.4f,%.4f,%.4f", a[0], a[1], a[2], b[0], b[1], b[2])
}

// requireClosed checks every directed edge is matched by its reverse, which
// holds for a closed, consistently wound surface.
func requireClosed(t *testing.T, m *Mesh) {
	t.Helper()
	balance := map[string]int{}
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a, b, c := m.Triangle(tri)
		for _, e := range [][2]mgl32.Vec3{{a, b}, {b, c}, {c, a}} {
			balance[edgeKey(e[0], e[1])]++
			balance[edgeKey(e[1], e[0])]--
		}
	}
	for k, v := range balance {
		require.Zero(t, v, "unmatched edge %s", k)
	}
}

func TestConstantFieldsHaveNoSurface(t *testing.T) {
	assert.True(t, Extract(constantField(6, 1), density.IsoLevel, true).Empty())
	assert.True(t, Extract(constantField(6, -1), density.IsoLevel, true).Empty())
}

func TestIsolatedSolidSampleIsClosed(t *testing.T) {
	f := constantField(3, -1)
	f.Set(1, 1, 1, 1)

	m := Extract(f, density.IsoLevel, false)
	// One solid corner in each of the 8 surrounding cubes: an octahedron.
	require.Equal(t, 8, m.TriangleCount())
	requireClosed(t, m)

	center := f.WorldPosition(1, 1, 1)
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a, b, c := m.Triangle(tri)
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		assert.Greater(t, m.Normals[3*tri].Dot(centroid.Sub(center)), float32(0), "normal points away from solid")
	}
}

func TestInterpolationPlacesVerticesOnIsoCrossing(t *testing.T) {
	f := density.MustNew(2, 2, 2, mgl32.Vec3{}, 2)
	for k := 0; k < 2; k++ {
		for i := 0; i < 2; i++ {
			f.Set(i, 0, k, 1)
			f.Set(i, 1, k, -3)
		}
	}

	m := Extract(f, density.IsoLevel, true)
	require.Equal(t, 2, m.TriangleCount())
	for i, v := range m.Vertices {
		assert.InDelta(t, 0.5, v[1], 1e-6)
		assert.InDelta(t, 1, m.Normals[i][1], 1e-6, "solid below, normal points up")
	}

	mid := Extract(f, density.IsoLevel, false)
	for _, v := range mid.Vertices {
		assert.InDelta(t, 1, v[1], 1e-6)
	}
}

func TestSphereIsClosedAndBounded(t *testing.T) {
	f := sphereField(12, 4)
	m := Extract(f, density.IsoLevel, true)

	require.False(t, m.Empty())
	assert.LessOrEqual(t, m.TriangleCount(), MaxTriangles(f))
	assert.Len(t, m.Vertices, 3*m.TriangleCount())
	assert.Len(t, m.Normals, len(m.Vertices))
	requireClosed(t, m)

	b := m.Bounds()
	assert.InDelta(t, 5.5-4, b.Min[0], 0.3)
	assert.InDelta(t, 5.5+4, b.Max[0], 0.3)
}

func TestMaxTriangles(t *testing.T) {
	assert.Equal(t, 5*4*4*4, MaxTriangles(constantField(5, 0)))
	assert.Zero(t, MaxTriangles(density.MustNew(1, 4, 4, mgl32.Vec3{}, 1)))
}

func TestExtractKernel(t *testing.T) {
	f := sphereField(8, 3)
	k := NewExtractKernel(f, density.IsoLevel, true)
	assert.Equal(t, ExtractKernelName, k.Name())
	assert.Nil(t, k.Mesh())

	require.NoError(t, k.Run(context.Background()))
	assert.Equal(t, Extract(f, density.IsoLevel, true), k.Mesh())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewExtractKernel(f, density.IsoLevel, true).Run(ctx), context.Canceled)
}

func TestMeshCodecRoundTrip(t *testing.T) {
	m := Extract(sphereField(10, 3), density.IsoLevel, true)

	data, err := EncodeMesh(m)
	require.NoError(t, err)

	got, err := DecodeMesh(data)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, got.Vertices)
	assert.Equal(t, m.Normals, got.Normals)
	assert.Equal(t, m.Indices, got.Indices)
}

func TestDecodeMeshRejectsGarbage(t *testing.T) {
	_, err := DecodeMesh([]byte("not a mesh at all"))
	assert.ErrorIs(t, err, ErrCorruptMesh)

	data, err := EncodeMesh(&Mesh{})
	require.NoError(t, err)
	_, err = DecodeMesh(data[:6])
	assert.ErrorIs(t, err, ErrCorruptMesh)

	data[4] = 9
	_, err = DecodeMesh(data)
	assert.ErrorIs(t, err, ErrCorruptMesh)
}

// encodedPayload frames raw little-endian words the way EncodeMesh does.
func encodedPayload(t *testing.T, words ...uint32) []byte {
	t.Helper()
	var raw bytes.Buffer
	require.NoError(t, binary.Write(&raw, binary.LittleEndian, words))

	zw, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer zw.Close()

	var out bytes.Buffer
	require.NoError(t, binary.Write(&out, binary.LittleEndian, []uint32{meshMagic, meshVersion}))
	out.Write(zw.EncodeAll(raw.Bytes(), nil))
	return out.Bytes()
}

func TestDecodeMeshRejectsCountsBeyondPayload(t *testing.T) {
	cases := map[string][]uint32{
		"vertices": {1 << 26},
		"normals":  {0, 1 << 26},
		"indices":  {0, 0, 1 << 30},
	}
	for name, words := range cases {
		t.Run(name, func(t *testing.T) {
			data := encodedPayload(t, words...)
			require.Less(t, len(data), 64)

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := DecodeMesh(data)
			runtime.ReadMemStats(&after)

			assert.ErrorIs(t, err, ErrCorruptMesh)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(32<<20),
				"a short input must not allocate for the length it claims")
		})
	}
}
