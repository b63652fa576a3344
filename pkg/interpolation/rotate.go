// Package interpolation resamples images on rotated grids for the trace
// transform's projection lines.
package interpolation

import (
	"math"

	"tracetransform/internal/models"
)

// snapTolerance absorbs the rounding of cos/sin at multiples of 90 degrees so
// that grid-aligned rotations sample pixels exactly.
const snapTolerance = 1e-9

// Bilinear samples a row-major width x height grid at the real-valued
// position (x, y). Neighbours outside the grid contribute zero.
func Bilinear(data []float64, width, height int, x, y float64) float64 {
	x = snap(x)
	y = snap(y)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	value := 0.0
	for dy := 0; dy <= 1; dy++ {
		yy := y0 + dy
		if yy < 0 || yy >= height {
			continue
		}
		wy := 1 - fy
		if dy == 1 {
			wy = fy
		}
		if wy == 0 {
			continue
		}
		for dx := 0; dx <= 1; dx++ {
			xx := x0 + dx
			if xx < 0 || xx >= width {
				continue
			}
			wx := 1 - fx
			if dx == 1 {
				wx = fx
			}
			if wx == 0 {
				continue
			}
			value += wx * wy * data[yy*width+xx]
		}
	}
	return value
}

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapTolerance {
		return r
	}
	return v
}

// Rotation holds the precomputed geometry of one projection angle
type Rotation struct {
	cos, sin float64
	cx, cy   float64
	width    int
	height   int
}

// NewRotation prepares sampling of a width x height grid rotated by angle
// degrees about its center. Positive angles rotate counter-clockwise in the
// mathematical sense (x to the right, y downward in memory).
func NewRotation(width, height int, angle float64) Rotation {
	rad := angle * math.Pi / 180
	return Rotation{
		cos:    math.Cos(rad),
		sin:    math.Sin(rad),
		cx:     float64(width-1) / 2,
		cy:     float64(height-1) / 2,
		width:  width,
		height: height,
	}
}

// Source maps a pixel of the rotated grid back onto the original grid
func (r Rotation) Source(x, y int) (float64, float64) {
	dx := float64(x) - r.cx
	dy := float64(y) - r.cy
	return r.cx + dx*r.cos - dy*r.sin, r.cy + dx*r.sin + dy*r.cos
}

// Column writes column col of the rotated grid into dst, which must hold
// height samples. This is one projection line of the trace transform.
func (r Rotation) Column(dst, src []float64, col int) {
	for y := 0; y < r.height; y++ {
		sx, sy := r.Source(col, y)
		dst[y] = Bilinear(src, r.width, r.height, sx, sy)
	}
}

// RotatedColumn is a convenience wrapper around NewRotation and Column
func RotatedColumn(dst, src []float64, width, height int, angle float64, col int) {
	NewRotation(width, height, angle).Column(dst, src, col)
}

// PadToDiagonal centers img on a zero square canvas whose side is the image
// diagonal, so that no rotation moves content outside the grid.
func PadToDiagonal(img *models.Image) *models.Image {
	side := int(math.Ceil(math.Hypot(float64(img.Width), float64(img.Height))))
	padded := models.NewImage(side, side)

	offX := (side - img.Width) / 2
	offY := (side - img.Height) / 2
	for y := 0; y < img.Height; y++ {
		copy(padded.Data[(y+offY)*side+offX:], img.Data[y*img.Width:(y+1)*img.Width])
	}
	return padded
}
