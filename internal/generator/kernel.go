package generator

import (
	"context"

	"VoxelStrata/internal/density"
)

const FillKernelName = "density_fill"

// FillKernel evaluates a generator at every sample of its own field.
type FillKernel struct {
	gen   Generator
	field *density.Field
}

// NewFillKernel wraps a scratch field the kernel exclusively owns until it
// completes.
func NewFillKernel(gen Generator, field *density.Field) *FillKernel {
	return &FillKernel{gen: gen, field: field}
}

func (k *FillKernel) Name() string { return FillKernelName }

func (k *FillKernel) Field() *density.Field { return k.field }

func (k *FillKernel) Run(ctx context.Context) error {
	return Fill(ctx, k.gen, k.field)
}

// Fill writes gen's density into every sample of f. It checks ctx once per
// z-slice so abandoned work stops early.
func Fill(ctx context.Context, gen Generator, f *density.Field) error {
	for k := 0; k < f.Nz; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := 0; j < f.Ny; j++ {
			for i := 0; i < f.Nx; i++ {
				f.Set(i, j, k, gen.Density(f.WorldPosition(i, j, k)))
			}
		}
	}
	return nil
}
