package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/wavestep/internal/grid"
)

const ramp = " .:-=+*#%@"

// Plane copies z-plane k of f.
func Plane(f *grid.Scalar, k int) ([]float64, error) {
	s := f.Shape
	if k < 0 || k >= s.NZ {
		return nil, fmt.Errorf("plane %d outside 0..%d", k, s.NZ-1)
	}
	n := s.NX * s.NY
	out := make([]float64, n)
	copy(out, f.Data[k*n:(k+1)*n])
	return out, nil
}

// MagnitudePlane returns the Euclidean norm of v on z-plane k.
func MagnitudePlane(v grid.Vector, k int) ([]float64, error) {
	planes := make([][]float64, 0, 3)
	for _, c := range v.Components() {
		p, err := Plane(c, k)
		if err != nil {
			return nil, err
		}
		planes = append(planes, p)
	}
	out := planes[0]
	for idx := range out {
		x, y, z := planes[0][idx], planes[1][idx], planes[2][idx]
		out[idx] = math.Sqrt(x*x + y*y + z*z)
	}
	return out, nil
}

// Heatmap shades a nx x ny plane with an ASCII ramp scaled to the largest
// absolute value. Planes wider than maxCols are reduced by taking the
// largest value of each block. Non-finite cells print as '!'.
func Heatmap(vals []float64, nx, ny, maxCols int) string {
	if nx == 0 || ny == 0 {
		return ""
	}
	step := 1
	if maxCols > 0 && nx > maxCols {
		step = (nx + maxCols - 1) / maxCols
	}

	peak := 0.0
	for _, v := range vals {
		if a := math.Abs(v); a > peak && !math.IsInf(a, 0) {
			peak = a
		}
	}

	var b strings.Builder
	for j := 0; j < ny; j += step {
		for i := 0; i < nx; i += step {
			b.WriteByte(shade(blockMax(vals, nx, ny, i, j, step), peak))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func blockMax(vals []float64, nx, ny, i0, j0, step int) float64 {
	best := 0.0
	for j := j0; j < min(j0+step, ny); j++ {
		for i := i0; i < min(i0+step, nx); i++ {
			v := math.Abs(vals[i+nx*j])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return v
			}
			best = max(best, v)
		}
	}
	return best
}

func shade(v, peak float64) byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return '!'
	}
	if peak == 0 {
		return ramp[0]
	}
	idx := int(v / peak * float64(len(ramp)-1))
	return ramp[min(idx, len(ramp)-1)]
}

// Threshold plots every cell whose absolute value exceeds level.
func Threshold(vals []float64, nx, ny int, level float64) *Canvas {
	c := CanvasFor(nx, ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if math.Abs(vals[i+nx*j]) > level {
				c.Set(i, j)
			}
		}
	}
	return c
}
