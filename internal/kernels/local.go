package kernels

import (
	"time"

	"github.com/san-kum/wavestep/internal/grid"
)

// Local applies the pointwise attenuation and coupling term
//
//	v = (1 + dt*gamma(r))*v + dt*beta(r)*u
//
// per component, with no mixing between x, y and z. dom is an offset domain
// like [Engine.Displacement].
func (e *Engine) Local(v, u grid.Vector, beta, gamma *grid.Scalar, dt float64, dom grid.Offset) error {
	c := &call{
		kind:    KindLocal,
		written: vectorNamed("v", v),
		paired:  vectorNamed("u", u),
		local: []grid.Named{
			{Name: "beta", Field: beta},
			{Name: "gamma", Field: gamma},
		},
	}
	s, err := e.validate(c, dom)
	if err != nil {
		return err
	}
	start := time.Now()

	ux, uy, uz := u.X.Data, u.Y.Data, u.Z.Data
	vx, vy, vz := v.X.Data, v.Y.Data, v.Z.Data
	b, g := beta.Data, gamma.Data

	e.sweepOffset(s, dom, func(p0, p1 int) {
		for p := p0; p < p1; p++ {
			decay := 1 + dt*g[p]
			force := dt * b[p]
			vx[p] = decay*vx[p] + force*ux[p]
			vy[p] = decay*vy[p] + force*uy[p]
			vz[p] = decay*vz[p] + force*uz[p]
		}
	})

	return e.finish(c, s, start)
}
