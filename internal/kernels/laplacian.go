package kernels

import (
	"time"

	"github.com/san-kum/wavestep/internal/grid"
)

// Laplacian advances v with the 7-point Laplacian of u scaled by alpha:
//
//	v += dt * alpha(r) * lap(u)(r)
//
// alpha is taken at the updated point for all three axial terms. dom is the
// full-shape launch domain; points on the border are skipped by the guard.
func (e *Engine) Laplacian(v, u grid.Vector, alpha *grid.Scalar, dt float64, h Spacing2, dom grid.Guarded) error {
	c := &call{
		kind:    KindLaplacian,
		written: vectorNamed("v", v),
		stencil: vectorNamed("u", u),
		local:   []grid.Named{{Name: "alpha", Field: alpha}},
	}
	s, err := e.validate(c, dom)
	if err != nil {
		return err
	}
	start := time.Now()

	ux, uy, uz := u.X.Data, u.Y.Data, u.Z.Data
	vx, vy, vz := v.X.Data, v.Y.Data, v.Z.Data
	a := alpha.Data
	_, sy, sz := s.Strides()

	e.sweepGuarded(s, dom, func(p0, p1 int) {
		for p := p0; p < p1; p++ {
			f := dt * a[p]
			vx[p] += f * lap(ux, p, sy, sz, h)
			vy[p] += f * lap(uy, p, sy, sz, h)
			vz[p] += f * lap(uz, p, sy, sz, h)
		}
	})

	return e.finish(c, s, start)
}

func lap(f []float64, p, sy, sz int, h Spacing2) float64 {
	c := 2 * f[p]
	return (f[p+1]-c+f[p-1])*h.X +
		(f[p+sy]-c+f[p-sy])*h.Y +
		(f[p+sz]-c+f[p-sz])*h.Z
}
