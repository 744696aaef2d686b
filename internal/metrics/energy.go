package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/sim"
)

// KineticEnergy averages 0.5*sum(|v|^2) over the observed states.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f *sim.Fields, t float64) {
	e.last = Kinetic(f.V)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last is the energy seen by the most recent Observe.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.samples = 0
	e.total = 0
	e.last = 0
}

// Kinetic returns 0.5*sum(|v|^2) over every grid point.
func Kinetic(v grid.Vector) float64 {
	sum := 0.0
	for _, c := range v.Components() {
		sum += floats.Dot(c.Data, c.Data)
	}
	return 0.5 * sum
}

// MaxAbs returns the largest |value| across the three components.
func MaxAbs(v grid.Vector) float64 {
	m := 0.0
	for _, c := range v.Components() {
		if len(c.Data) == 0 {
			continue
		}
		m = math.Max(m, floats.Norm(c.Data, math.Inf(1)))
	}
	return m
}

// MaxDisplacement tracks the peak |u| over a run.
type MaxDisplacement struct {
	name string
	peak float64
}

func NewMaxDisplacement() *MaxDisplacement {
	return &MaxDisplacement{name: "max_displacement"}
}

func (m *MaxDisplacement) Name() string { return m.name }

func (m *MaxDisplacement) Observe(f *sim.Fields, t float64) {
	m.peak = math.Max(m.peak, MaxAbs(f.U))
}

func (m *MaxDisplacement) Value() float64 { return m.peak }

func (m *MaxDisplacement) Reset() { m.peak = 0 }
