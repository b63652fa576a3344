package backend

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"tracetransform/pkg/functional"
	"tracetransform/pkg/interpolation"
	"tracetransform/pkg/kernels"
	"tracetransform/pkg/logging"
)

const bytesPerElement = 8

// CPUOptions configures a CPU backend
type CPUOptions struct {
	// Workers bounds the goroutines of one kernel launch; 0 uses every core
	Workers int

	// MemoryLimit caps live device memory in bytes; 0 means unlimited
	MemoryLimit int64

	// Logger receives allocation and launch traces
	Logger *logging.Logger
}

// Stats summarizes device memory usage
type Stats struct {
	LiveBuffers int
	LiveBytes   int64
	PeakBytes   int64
	Allocations int
}

// CPU executes kernels on host cores. Device memory is ordinary Go memory
// accounted against an optional limit, and each launch splits its lines or
// columns over a bounded set of goroutines.
type CPU struct {
	workers int
	limit   int64
	log     *logging.Logger

	mu     sync.Mutex
	live   map[uint64]*Buffer
	nextID uint64
	stats  Stats
}

// NewCPU creates a CPU backend
func NewCPU(opts CPUOptions) *CPU {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &CPU{
		workers: workers,
		limit:   opts.MemoryLimit,
		log:     log,
		live:    make(map[uint64]*Buffer),
	}
}

// Allocate reserves a zero-filled buffer
func (c *CPU) Allocate(shape Shape) (*Buffer, error) {
	if shape.Rows <= 0 || shape.Cols <= 0 {
		return nil, newInvalidArgError("Allocate", fmt.Sprintf("shape must be positive, got %s", shape))
	}
	size := int64(shape.Size()) * bytesPerElement

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limit > 0 && c.stats.LiveBytes+size > c.limit {
		return nil, newMemoryError("Allocate",
			fmt.Sprintf("out of memory: %s buffer needs %d bytes, %d of %d in use",
				shape, size, c.stats.LiveBytes, c.limit))
	}

	c.nextID++
	buf := &Buffer{
		id:    c.nextID,
		shape: shape,
		data:  make([]float64, shape.Size()),
		owner: c,
	}
	c.live[buf.id] = buf
	c.stats.LiveBuffers++
	c.stats.LiveBytes += size
	c.stats.Allocations++
	if c.stats.LiveBytes > c.stats.PeakBytes {
		c.stats.PeakBytes = c.stats.LiveBytes
	}
	c.log.Tracef("allocated buffer %d (%s, %d bytes)", buf.id, shape, size)
	return buf, nil
}

// Free releases a buffer. Freeing nil is a no-op; freeing twice is an error.
func (c *CPU) Free(buf *Buffer) error {
	if buf == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked("Free", buf); err != nil {
		return err
	}
	delete(c.live, buf.id)
	c.stats.LiveBuffers--
	c.stats.LiveBytes -= int64(buf.shape.Size()) * bytesPerElement
	buf.data = nil
	c.log.Tracef("freed buffer %d", buf.id)
	return nil
}

// Upload copies host data into a buffer
func (c *CPU) Upload(dst *Buffer, src []float64) error {
	if err := c.check("Upload", dst); err != nil {
		return err
	}
	if len(src) != dst.shape.Size() {
		return newInvalidArgError("Upload",
			fmt.Sprintf("host data has %d elements, buffer %s holds %d", len(src), dst.shape, dst.shape.Size()))
	}
	copy(dst.data, src)
	return nil
}

// Download copies a buffer into host memory
func (c *CPU) Download(dst []float64, src *Buffer) error {
	if err := c.check("Download", src); err != nil {
		return err
	}
	if len(dst) != src.shape.Size() {
		return newInvalidArgError("Download",
			fmt.Sprintf("host memory has %d elements, buffer %s holds %d", len(dst), src.shape, src.shape.Size()))
	}
	copy(dst, src.data)
	return nil
}

// Launch runs a kernel to completion
func (c *CPU) Launch(k Kernel, in, out *Buffer) error {
	op := "Launch(" + KernelName(k) + ")"
	if err := c.check(op, in); err != nil {
		return err
	}
	if err := c.check(op, out); err != nil {
		return err
	}

	var err error
	switch k := k.(type) {
	case TraceKernel:
		err = c.launchTrace(k, in, out)
	case CircusKernel:
		err = c.launchCircus(k, in, out)
	default:
		err = fmt.Errorf("unsupported kernel %T", k)
	}
	if err != nil {
		return newLaunchError(op, "kernel launch failed", err)
	}
	return nil
}

// Stats returns a snapshot of the memory accounting
func (c *CPU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *CPU) check(op string, buf *Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkLocked(op, buf)
}

func (c *CPU) checkLocked(op string, buf *Buffer) error {
	switch {
	case buf == nil:
		return newInvalidArgError(op, "nil buffer")
	case buf.owner != c:
		return newInvalidArgError(op, fmt.Sprintf("buffer %d belongs to another backend", buf.id))
	case c.live[buf.id] != buf:
		return newInvalidArgError(op, fmt.Sprintf("buffer %d has been freed", buf.id))
	}
	return nil
}

func (c *CPU) launchTrace(k TraceKernel, in, out *Buffer) error {
	height, width := in.shape.Rows, in.shape.Cols
	if out.shape.Rows != width {
		return fmt.Errorf("sinogram has %d rows, image has %d projection lines", out.shape.Rows, width)
	}
	if k.Column < 0 || k.Column >= out.shape.Cols {
		return fmt.Errorf("column %d outside sinogram with %d angles", k.Column, out.shape.Cols)
	}
	body, err := tBody(k.Functional)
	if err != nil {
		return err
	}

	rot := interpolation.NewRotation(width, height, k.Angle)
	src, dst, stride := in.data, out.data, out.shape.Cols
	return c.parallelFor(width, func(start, end int) error {
		line := make([]float64, height)
		for p := start; p < end; p++ {
			rot.Column(line, src, p)
			dst[p*stride+k.Column] = body(line, k.A)
		}
		return nil
	})
}

func (c *CPU) launchCircus(k CircusKernel, in, out *Buffer) error {
	rows, cols := in.shape.Rows, in.shape.Cols
	if out.shape.Size() != cols {
		return fmt.Errorf("output holds %d values, sinogram has %d columns", out.shape.Size(), cols)
	}
	if k.Functional.Orthonormal() && (k.Center < 0 || k.Center >= rows) {
		return fmt.Errorf("center row %d outside sinogram with %d rows", k.Center, rows)
	}
	body, err := pBody(k.Functional, k.Center)
	if err != nil {
		return err
	}

	src, dst := in.data, out.data
	return c.parallelFor(cols, func(start, end int) error {
		column := make([]float64, rows)
		for j := start; j < end; j++ {
			for i := 0; i < rows; i++ {
				column[i] = src[i*cols+j]
			}
			dst[j] = body(column)
		}
		return nil
	})
}

// parallelFor splits [0, n) into contiguous chunks, one per worker, and runs
// body on each. A panicking chunk fails the launch instead of the process.
func (c *CPU) parallelFor(n int, body func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	workers := min(c.workers, n)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("kernel panic: %v", r)
				}
			}()
			return body(start, end)
		})
	}
	return g.Wait()
}

func tBody(t functional.T) (func([]float64, int) float64, error) {
	switch t.Kind() {
	case functional.Radon:
		return kernels.Radon, nil
	case functional.T1:
		return kernels.TFunctional1, nil
	case functional.T2:
		return kernels.TFunctional2, nil
	case functional.T3:
		return kernels.TFunctional3, nil
	case functional.T4:
		return kernels.TFunctional4, nil
	case functional.T5:
		return kernels.TFunctional5, nil
	}
	return nil, fmt.Errorf("no kernel for T-functional %s", t.Kind())
}

func pBody(p functional.P, center int) (func([]float64) float64, error) {
	switch p.Kind() {
	case functional.P1:
		return kernels.PFunctional1, nil
	case functional.P2:
		return kernels.PFunctional2, nil
	case functional.P3:
		return kernels.PFunctional3, nil
	case functional.Hermite:
		order := p.Order()
		return func(column []float64) float64 {
			return kernels.PFunctionalHermite(column, order, center)
		}, nil
	}
	return nil, fmt.Errorf("no kernel for P-functional %s", p.Kind())
}
