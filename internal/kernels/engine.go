package kernels

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/wavestep/internal/grid"
)

type Options struct {
	// Workers caps the goroutines used per call. Zero means GOMAXPROCS.
	Workers int
	// CheckFinite scans every written array after the call and fails on
	// the first NaN or Inf.
	CheckFinite bool
	Logger      *log.Logger
}

// Engine runs kernels. It holds no field state and is safe to share as long
// as concurrent calls do not touch the same arrays.
type Engine struct {
	workers     int
	checkFinite bool
	logger      *log.Logger
}

func New(opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = grid.DefaultWorkers()
	}
	return &Engine{
		workers:     workers,
		checkFinite: opts.CheckFinite,
		logger:      opts.Logger,
	}
}

func (e *Engine) Workers() int { return e.workers }

// call describes the arrays one kernel invocation touches.
type call struct {
	kind    Kind
	written []grid.Named
	// stencil arrays are read at neighbouring points.
	stencil []grid.Named
	// paired arrays are read only at the point being written, and
	// paired[i] only by the update of written[i].
	paired []grid.Named
	// local arrays are read only at the point being written, before any
	// component there is written.
	local []grid.Named
}

func (c *call) shape() (grid.Shape, error) {
	for _, f := range c.written {
		if f.Field != nil {
			return f.Field.Shape, nil
		}
	}
	return grid.Shape{}, grid.ErrNilField
}

// validate rejects the call before any array is written.
func (e *Engine) validate(c *call, dom interface{ Fits(grid.Shape) error }) (grid.Shape, error) {
	s, err := c.shape()
	if err != nil {
		return s, &KernelError{Kernel: c.kind, Err: err}
	}

	all := make([]grid.Named, 0, len(c.written)+len(c.stencil)+len(c.paired)+len(c.local))
	all = append(append(append(append(all, c.written...), c.stencil...), c.paired...), c.local...)
	if err := grid.CheckShapes(s, all...); err != nil {
		return s, &KernelError{Kernel: c.kind, Err: err}
	}
	if err := dom.Fits(s); err != nil {
		return s, &KernelError{Kernel: c.kind, Err: err}
	}

	for i, w := range c.written {
		for _, o := range c.written[i+1:] {
			if grid.Shares(w.Field, o.Field) {
				return s, &KernelError{Kernel: c.kind, Err: aliasErr(w, o)}
			}
		}
		for _, r := range c.stencil {
			if grid.Shares(w.Field, r.Field) {
				return s, &KernelError{Kernel: c.kind, Err: aliasErr(w, r)}
			}
		}
		for j, r := range c.paired {
			if j != i && grid.Shares(w.Field, r.Field) {
				return s, &KernelError{Kernel: c.kind, Err: aliasErr(w, r)}
			}
		}
	}
	return s, nil
}

// finish runs the optional finite check and logs the call.
func (e *Engine) finish(c *call, s grid.Shape, start time.Time) error {
	if e.logger != nil {
		e.logger.Debug("kernel done", "kernel", c.kind, "shape", s, "elapsed", time.Since(start))
	}
	if !e.checkFinite {
		return nil
	}
	for _, w := range c.written {
		p := w.Field.FirstNonFinite()
		if p < 0 {
			continue
		}
		i := p % s.NX
		j := (p / s.NX) % s.NY
		k := p / (s.NX * s.NY)
		err := &NonFiniteError{Kernel: c.kind, Component: w.Name, I: i, J: j, K: k, Value: w.Field.Data[p]}
		if e.logger != nil {
			e.logger.Error("non-finite value", "err", err)
		}
		return err
	}
	return nil
}

// rowFunc updates the flat range [p0, p1) lying on a single x row.
type rowFunc func(p0, p1 int)

// sweepOffset walks the offset domain, shifted by +1 on every axis.
func (e *Engine) sweepOffset(s grid.Shape, dom grid.Offset, fn rowFunc) {
	if dom.NX == 0 || dom.NY == 0 {
		return
	}
	grid.ParallelFor(dom.NZ, e.workers, func(lo, hi int) {
		for k := lo; k < hi; k++ {
			for j := 0; j < dom.NY; j++ {
				p0 := s.Index(1, j+1, k+1)
				fn(p0, p0+dom.NX)
			}
		}
	})
}

// sweepGuarded walks the full launch domain and applies the interior guard
// to each index.
func (e *Engine) sweepGuarded(s grid.Shape, dom grid.Guarded, fn rowFunc) {
	iLo, iHi := 1, min(dom.NX, s.NX-1)
	if iLo >= iHi {
		return
	}
	grid.ParallelFor(dom.NZ, e.workers, func(lo, hi int) {
		for k := lo; k < hi; k++ {
			if !grid.Inside(k, s.NZ) {
				continue
			}
			for j := 0; j < dom.NY; j++ {
				if !grid.Inside(j, s.NY) {
					continue
				}
				row := s.Index(0, j, k)
				fn(row+iLo, row+iHi)
			}
		}
	})
}

func vectorNamed(name string, v grid.Vector) []grid.Named {
	return []grid.Named{
		{Name: name + "x", Field: v.X},
		{Name: name + "y", Field: v.Y},
		{Name: name + "z", Field: v.Z},
	}
}
