// Package backend defines the compute device the trace transform runs on.
//
// The pipeline never touches device memory directly: it allocates buffers,
// uploads host data, launches one of a fixed set of reduction kernels and
// downloads the results. Every call blocks until the device has finished,
// so callers never observe partial results.
//
// Example usage:
//
//	dev := backend.NewCPU(backend.CPUOptions{Workers: 4})
//	in, _ := dev.Allocate(backend.Matrix(h, w))
//	defer dev.Free(in)
//	dev.Upload(in, pixels)
//	out, _ := dev.Allocate(backend.Matrix(w, angles))
//	dev.Launch(backend.TraceKernel{Functional: t, Angle: 0, Column: 0}, in, out)
package backend

import (
	"fmt"

	"tracetransform/pkg/functional"
)

// Backend is the device surface the pipeline depends on
type Backend interface {
	// Allocate reserves a zero-filled device buffer
	Allocate(shape Shape) (*Buffer, error)

	// Free releases a buffer. Freeing nil is a no-op.
	Free(buf *Buffer) error

	// Upload copies row-major host data into a buffer of the same size
	Upload(dst *Buffer, src []float64) error

	// Download copies a buffer into row-major host memory of the same size
	Download(dst []float64, src *Buffer) error

	// Launch runs a kernel reading in and writing out
	Launch(k Kernel, in, out *Buffer) error
}

// Shape is the extent of a device buffer. One-dimensional buffers are
// column vectors.
type Shape struct {
	Rows, Cols int
}

// Vector returns the shape of an n-element 1D buffer
func Vector(n int) Shape { return Shape{Rows: n, Cols: 1} }

// Matrix returns the shape of a rows x cols 2D buffer
func Matrix(rows, cols int) Shape { return Shape{Rows: rows, Cols: cols} }

// Size is the number of elements
func (s Shape) Size() int { return s.Rows * s.Cols }

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Rows, s.Cols) }

// Buffer is a handle to device-resident memory. Its contents are only
// reachable through the owning backend.
type Buffer struct {
	id    uint64
	shape Shape
	data  []float64
	owner *CPU
}

// Shape returns the extent of the buffer
func (b *Buffer) Shape() Shape { return b.shape }

// Kernel is one of the reduction kernels a backend can execute.
// The set is closed: TraceKernel and CircusKernel.
type Kernel interface {
	kernelName() string
}

// TraceKernel computes one sinogram column.
//
// The input is an image of H rows and W columns. The image is rotated by
// Angle degrees about its center and every column p of the rotated image,
// a projection line, is reduced by Functional into out[p, Column]. The output
// therefore needs W rows.
type TraceKernel struct {
	Functional functional.T
	Angle      float64
	Column     int
	// A is the auxiliary functional parameter, reserved and currently 0
	A int
}

func (k TraceKernel) kernelName() string { return "trace/" + k.Functional.Name() }

// CircusKernel reduces every column j of a sinogram into out[j] with
// Functional. Center is the alignment row used by orthonormal functionals.
type CircusKernel struct {
	Functional functional.P
	Center     int
	A          int
}

func (k CircusKernel) kernelName() string { return "circus/" + k.Functional.Name() }

// KernelName returns a printable name for a kernel
func KernelName(k Kernel) string {
	if k == nil {
		return "<nil>"
	}
	return k.kernelName()
}
