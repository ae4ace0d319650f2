package meshing

import (
	"context"

	"VoxelStrata/internal/density"
)

const ExtractKernelName = "surface_extract"

// ExtractKernel runs Extract on the device. The field must not be written
// while the kernel is in flight.
type ExtractKernel struct {
	field       *density.Field
	iso         float32
	interpolate bool
	mesh        *Mesh
}

func NewExtractKernel(field *density.Field, iso float32, interpolate bool) *ExtractKernel {
	return &ExtractKernel{field: field, iso: iso, interpolate: interpolate}
}

func (k *ExtractKernel) Name() string { return ExtractKernelName }

func (k *ExtractKernel) Run(ctx context.Context) error {
	m, err := extract(ctx, k.field, k.iso, k.interpolate)
	if err != nil {
		return err
	}
	k.mesh = m
	return nil
}

// Mesh is nil until Run has completed successfully.
func (k *ExtractKernel) Mesh() *Mesh { return k.mesh }
