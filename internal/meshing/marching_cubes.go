package meshing

import (
	"context"
	"fmt"

	"VoxelStrata/internal/density"

	"github.com/go-gl/mathgl/mgl32"
)

// triCount[c] is the number of triangles triTable emits for case c.
var triCount [256]uint8

func init() {
	for c := range triTable {
		n := uint8(0)
		for t := 0; t < 15 && triTable[c][t] >= 0; t += 3 {
			n++
		}
		triCount[c] = n
	}
}

// Extract polygonizes every cube of f. Samples at or above iso are solid.
// With interpolate set, vertices slide along each crossing edge to where the
// densities cross iso; otherwise they sit at edge midpoints.
func Extract(f *density.Field, iso float32, interpolate bool) *Mesh {
	m, _ := extract(context.Background(), f, iso, interpolate)
	return m
}

func extract(ctx context.Context, f *density.Field, iso float32, interpolate bool) (*Mesh, error) {
	if f.Nx < 2 || f.Ny < 2 || f.Nz < 2 {
		return &Mesh{}, nil
	}

	total := 0
	for k := 0; k < f.Nz-1; k++ {
		for j := 0; j < f.Ny-1; j++ {
			for i := 0; i < f.Nx-1; i++ {
				total += int(triCount[cubeCase(f, i, j, k, iso)])
			}
		}
	}
	if limit := MaxTriangles(f); total > limit {
		panic(fmt.Sprintf("meshing: %d triangles exceeds bound %d", total, limit))
	}

	m := &Mesh{
		Vertices: make([]mgl32.Vec3, 0, total*3),
		Normals:  make([]mgl32.Vec3, 0, total*3),
		Indices:  make([]uint32, 0, total*3),
	}
	if total == 0 {
		return m, nil
	}

	var edgeVerts [12]mgl32.Vec3
	for k := 0; k < f.Nz-1; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := 0; j < f.Ny-1; j++ {
			for i := 0; i < f.Nx-1; i++ {
				c := cubeCase(f, i, j, k, iso)
				mask := edgeTable[c]
				if mask == 0 {
					continue
				}
				for e := 0; e < 12; e++ {
					if mask&(1<<e) != 0 {
						edgeVerts[e] = edgeVertex(f, i, j, k, e, iso, interpolate)
					}
				}
				tris := &triTable[c]
				for t := 0; t < 15 && tris[t] >= 0; t += 3 {
					m.appendTriangle(edgeVerts[tris[t]], edgeVerts[tris[t+1]], edgeVerts[tris[t+2]])
				}
			}
		}
	}
	return m, nil
}

func cubeCase(f *density.Field, i, j, k int, iso float32) uint8 {
	var c uint8
	for n, o := range cornerOffsets {
		if f.At(i+o[0], j+o[1], k+o[2]) >= iso {
			c |= 1 << n
		}
	}
	return c
}

func edgeVertex(f *density.Field, i, j, k, edge int, iso float32, interpolate bool) mgl32.Vec3 {
	o0 := cornerOffsets[edgeCorners[edge][0]]
	o1 := cornerOffsets[edgeCorners[edge][1]]
	// Walk every edge in the positive axis direction so neighbouring cubes
	// compute bit-identical shared vertices.
	if o1[0]+o1[1]+o1[2] < o0[0]+o0[1]+o0[2] {
		o0, o1 = o1, o0
	}
	p0 := f.WorldPosition(i+o0[0], j+o0[1], k+o0[2])
	p1 := f.WorldPosition(i+o1[0], j+o1[1], k+o1[2])

	t := float32(0.5)
	if interpolate {
		v0 := f.At(i+o0[0], j+o0[1], k+o0[2])
		v1 := f.At(i+o1[0], j+o1[1], k+o1[2])
		// A crossing edge always has v0 != v1.
		t = mgl32.Clamp((iso-v0)/(v1-v0), 0, 1)
	}
	return p0.Add(p1.Sub(p0).Mul(t))
}
