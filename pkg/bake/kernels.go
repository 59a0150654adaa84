package bake

import (
	"go.uber.org/zap"

	"github.com/chazu/blockmesh/pkg/intstream"
	"github.com/chazu/blockmesh/pkg/kernel"
	"github.com/chazu/blockmesh/pkg/kernel/quad"
	"github.com/chazu/blockmesh/pkg/kernel/sdfx"
)

// KernelFactory builds the kernel for a single job. pool belongs to the
// calling worker and outlives the kernel. Kernels implementing io.Closer
// are closed when the job finishes.
type KernelFactory func(pool *intstream.Pool) kernel.Kernel

// QuadKernel returns a factory for mesh-stream kernels drawing from the
// worker's pool. Zero slices means quad.DefaultSlices.
func QuadKernel(slices int, log *zap.Logger) KernelFactory {
	return func(pool *intstream.Pool) kernel.Kernel {
		return quad.New(quad.WithPool(pool), quad.WithSlices(slices), quad.WithLogger(log))
	}
}

// SDFXKernel returns a factory for signed distance kernels meshed at the
// given marching cubes resolution.
func SDFXKernel(cells int) KernelFactory {
	return func(*intstream.Pool) kernel.Kernel {
		return sdfx.New(cells)
	}
}
