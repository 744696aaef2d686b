package kernels

import (
	"time"

	"github.com/san-kum/wavestep/internal/grid"
)

// Gradient advances each velocity component with the centred difference,
// along that component's own axis, of the weighted sum w = eta . u:
//
//	vx += dt * alpha(r) * hx * (w(r+x) - w(r-x))
//
// and likewise for y and z. Every component of v depends on all three
// components of u and eta. dom is the full-shape launch domain.
func (e *Engine) Gradient(v, u grid.Vector, alpha *grid.Scalar, eta grid.Vector, dt float64, h HalfSpacing, dom grid.Guarded) error {
	c := &call{
		kind:    KindGradient,
		written: vectorNamed("v", v),
		stencil: append(vectorNamed("u", u), vectorNamed("eta", eta)...),
		local:   []grid.Named{{Name: "alpha", Field: alpha}},
	}
	s, err := e.validate(c, dom)
	if err != nil {
		return err
	}
	start := time.Now()

	ux, uy, uz := u.X.Data, u.Y.Data, u.Z.Data
	vx, vy, vz := v.X.Data, v.Y.Data, v.Z.Data
	ex, ey, ez := eta.X.Data, eta.Y.Data, eta.Z.Data
	a := alpha.Data
	_, sy, sz := s.Strides()

	w := func(q int) float64 {
		return ex[q]*ux[q] + ey[q]*uy[q] + ez[q]*uz[q]
	}

	e.sweepGuarded(s, dom, func(p0, p1 int) {
		for p := p0; p < p1; p++ {
			f := dt * a[p]
			vx[p] += f * h.X * (w(p+1) - w(p-1))
			vy[p] += f * h.Y * (w(p+sy) - w(p-sy))
			vz[p] += f * h.Z * (w(p+sz) - w(p-sz))
		}
	})

	return e.finish(c, s, start)
}
