package meshing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
)

const (
	meshMagic   uint32 = 0x48534D56 // "VMSH"
	meshVersion uint32 = 1

	// maxDecodedBytes caps the decompressed payload of one mesh.
	maxDecodedBytes = 256 << 20

	vec3Size  = 12
	indexSize = 4
)

var ErrCorruptMesh = errors.New("meshing: corrupt mesh data")

// EncodeMesh writes m as a magic/version header followed by a zstd stream
// of vertices, normals and indices.
func EncodeMesh(m *Mesh) ([]byte, error) {
	if m == nil {
		m = &Mesh{}
	}
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, meshMagic); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, meshVersion); err != nil {
		return nil, err
	}

	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if err := writeVec3Slice(zw, m.Vertices); err != nil {
		zw.Close()
		return nil, err
	}
	if err := writeVec3Slice(zw, m.Normals); err != nil {
		zw.Close()
		return nil, err
	}
	if err := binary.Write(zw, binary.LittleEndian, uint32(len(m.Indices))); err != nil {
		zw.Close()
		return nil, err
	}
	if err := binary.Write(zw, binary.LittleEndian, m.Indices); err != nil {
		zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMesh reverses EncodeMesh and checks the result is a well-formed
// triangle list.
func DecodeMesh(data []byte) (*Mesh, error) {
	r := bytes.NewReader(data)

	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMesh, err)
	}
	if magic != meshMagic {
		return nil, fmt.Errorf("%w: invalid magic %x", ErrCorruptMesh, magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMesh, err)
	}
	if version != meshVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptMesh, version)
	}

	zr, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxDecodedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	payload, err := zr.DecodeAll(data[len(data)-r.Len():], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMesh, err)
	}
	pr := bytes.NewReader(payload)

	m := &Mesh{}
	if m.Vertices, err = readVec3Slice(pr); err != nil {
		return nil, err
	}
	if m.Normals, err = readVec3Slice(pr); err != nil {
		return nil, err
	}
	n, err := readCount(pr, indexSize)
	if err != nil {
		return nil, err
	}
	m.Indices = make([]uint32, n)
	if err := binary.Read(pr, binary.LittleEndian, m.Indices); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMesh, err)
	}

	if len(m.Normals) != len(m.Vertices) || len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d vertices, %d normals, %d indices",
			ErrCorruptMesh, len(m.Vertices), len(m.Normals), len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrCorruptMesh, idx)
		}
	}
	return m, nil
}

func writeVec3Slice(w io.Writer, data []mgl32.Vec3) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, data)
}

func readVec3Slice(r *bytes.Reader) ([]mgl32.Vec3, error) {
	n, err := readCount(r, vec3Size)
	if err != nil {
		return nil, err
	}
	data := make([]mgl32.Vec3, n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMesh, err)
	}
	return data, nil
}

// readCount reads a slice length and rejects it unless the payload still
// holds that many elements of elemSize bytes.
func readCount(r *bytes.Reader, elemSize int) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptMesh, err)
	}
	if int64(n)*int64(elemSize) > int64(r.Len()) {
		return 0, fmt.Errorf("%w: length %d exceeds the %d bytes left", ErrCorruptMesh, n, r.Len())
	}
	return int(n), nil
}
