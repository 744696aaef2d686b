package kernels_test

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/wavestep/internal/grid"
)

func randomScalar(r *rand.Rand, s grid.Shape) *grid.Scalar {
	f := grid.NewScalar(s)
	for i := range f.Data {
		f.Data[i] = 2*r.Float64() - 1
	}
	return f
}

func randomVector(r *rand.Rand, s grid.Shape) grid.Vector {
	return grid.Vector{X: randomScalar(r, s), Y: randomScalar(r, s), Z: randomScalar(r, s)}
}

func onBorder(s grid.Shape, i, j, k int) bool {
	return i == 0 || j == 0 || k == 0 || i == s.NX-1 || j == s.NY-1 || k == s.NZ-1
}

// borderIdentical compares the six faces bit for bit.
func borderIdentical(a, b *grid.Scalar) bool {
	s := a.Shape
	for k := 0; k < s.NZ; k++ {
		for j := 0; j < s.NY; j++ {
			for i := 0; i < s.NX; i++ {
				if !onBorder(s, i, j, k) {
					continue
				}
				if math.Float64bits(a.At(i, j, k)) != math.Float64bits(b.At(i, j, k)) {
					return false
				}
			}
		}
	}
	return true
}

func vectorsIdentical(a, b grid.Vector) bool {
	ac, bc := a.Components(), b.Components()
	for c := range ac {
		for i := range ac[c].Data {
			if math.Float64bits(ac[c].Data[i]) != math.Float64bits(bc[c].Data[i]) {
				return false
			}
		}
	}
	return true
}

// refLaplacian is a direct transcription of the 7-point update used to
// check the engine's sweep and guard.
func refLaplacian(v, u grid.Vector, alpha *grid.Scalar, dt float64, hx, hy, hz float64) {
	s := alpha.Shape
	uc, vc := u.Components(), v.Components()
	for k := 1; k < s.NZ-1; k++ {
		for j := 1; j < s.NY-1; j++ {
			for i := 1; i < s.NX-1; i++ {
				for c := range uc {
					f := uc[c]
					d := (f.At(i+1, j, k)-2*f.At(i, j, k)+f.At(i-1, j, k))*hx +
						(f.At(i, j+1, k)-2*f.At(i, j, k)+f.At(i, j-1, k))*hy +
						(f.At(i, j, k+1)-2*f.At(i, j, k)+f.At(i, j, k-1))*hz
					vc[c].Set(i, j, k, vc[c].At(i, j, k)+dt*alpha.At(i, j, k)*d)
				}
			}
		}
	}
}

func refGradient(v, u grid.Vector, alpha *grid.Scalar, eta grid.Vector, dt float64, hx, hy, hz float64) {
	s := alpha.Shape
	w := func(i, j, k int) float64 {
		return eta.X.At(i, j, k)*u.X.At(i, j, k) + eta.Y.At(i, j, k)*u.Y.At(i, j, k) + eta.Z.At(i, j, k)*u.Z.At(i, j, k)
	}
	for k := 1; k < s.NZ-1; k++ {
		for j := 1; j < s.NY-1; j++ {
			for i := 1; i < s.NX-1; i++ {
				f := dt * alpha.At(i, j, k)
				v.X.Set(i, j, k, v.X.At(i, j, k)+f*hx*(w(i+1, j, k)-w(i-1, j, k)))
				v.Y.Set(i, j, k, v.Y.At(i, j, k)+f*hy*(w(i, j+1, k)-w(i, j-1, k)))
				v.Z.Set(i, j, k, v.Z.At(i, j, k)+f*hz*(w(i, j, k+1)-w(i, j, k-1)))
			}
		}
	}
}
