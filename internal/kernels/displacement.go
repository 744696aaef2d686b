package kernels

import (
	"time"

	"github.com/san-kum/wavestep/internal/grid"
)

// Displacement advances u by one explicit Euler step: u += dt*v.
//
// dom must be the offset domain (normally shape.Interior()); the one-cell
// border of u is left untouched.
func (e *Engine) Displacement(u, v grid.Vector, dt float64, dom grid.Offset) error {
	c := &call{
		kind:    KindDisplacement,
		written: vectorNamed("u", u),
		paired:  vectorNamed("v", v),
	}
	s, err := e.validate(c, dom)
	if err != nil {
		return err
	}
	start := time.Now()

	ux, uy, uz := u.X.Data, u.Y.Data, u.Z.Data
	vx, vy, vz := v.X.Data, v.Y.Data, v.Z.Data

	e.sweepOffset(s, dom, func(p0, p1 int) {
		for p := p0; p < p1; p++ {
			ux[p] += dt * vx[p]
			uy[p] += dt * vy[p]
			uz[p] += dt * vz[p]
		}
	})

	return e.finish(c, s, start)
}
