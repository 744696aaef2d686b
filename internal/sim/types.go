package sim

import (
	"fmt"

	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/kernels"
)

// Fields is everything one simulation owns: the displacement and velocity
// fields plus the coefficient arrays the kernels read.
type Fields struct {
	Shape grid.Shape
	U, V  grid.Vector
	Alpha *grid.Scalar
	Beta  *grid.Scalar
	Gamma *grid.Scalar
	Eta   grid.Vector
}

// NewFields allocates zeroed fields of shape s.
func NewFields(s grid.Shape) *Fields {
	return &Fields{
		Shape: s,
		U:     grid.NewVector(s),
		V:     grid.NewVector(s),
		Alpha: grid.NewScalar(s),
		Beta:  grid.NewScalar(s),
		Gamma: grid.NewScalar(s),
		Eta:   grid.NewVector(s),
	}
}

type Config struct {
	Dt          float64
	Steps       int
	DX, DY, DZ  float64
	Sequence    []kernels.Kind
	SampleEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:          0.1,
		Steps:       100,
		DX:          1,
		DY:          1,
		DZ:          1,
		Sequence:    []kernels.Kind{kernels.KindLaplacian, kernels.KindDisplacement},
		SampleEvery: 1,
	}
}

func (c Config) Spacing2() kernels.Spacing2 {
	return kernels.Spacing2FromSteps(c.DX, c.DY, c.DZ)
}

func (c Config) HalfSpacing() kernels.HalfSpacing {
	return kernels.HalfSpacingFromSteps(c.DX, c.DY, c.DZ)
}

type Metric interface {
	Name() string
	Observe(f *Fields, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, t float64, f *Fields)
}

// Probe samples one component of u or v at a grid point.
type Probe struct {
	Name      string
	Field     string // "u" or "v"
	Component int    // 0, 1, 2 for x, y, z
	I, J, K   int
}

func (p Probe) value(f *Fields) float64 {
	src := f.U
	if p.Field == "v" {
		src = f.V
	}
	return src.Components()[p.Component].At(p.I, p.J, p.K)
}

func (p Probe) validate(s grid.Shape) error {
	if p.Field != "u" && p.Field != "v" {
		return fmt.Errorf("probe %s: field must be u or v, got %q", p.Name, p.Field)
	}
	if p.Component < 0 || p.Component > 2 {
		return fmt.Errorf("probe %s: component %d out of range", p.Name, p.Component)
	}
	if p.I < 0 || p.J < 0 || p.K < 0 || p.I >= s.NX || p.J >= s.NY || p.K >= s.NZ {
		return fmt.Errorf("%w: probe %s at (%d,%d,%d) outside %s", grid.ErrLaunchDomain, p.Name, p.I, p.J, p.K, s)
	}
	return nil
}

type Result struct {
	Times      []float64
	ProbeNames []string
	// Probes[i] holds one value per probe, sampled at Times[i].
	Probes     [][]float64
	Metrics    map[string]float64
	StepsTaken int
}

// SimulationError ties a kernel failure to the step that produced it.
type SimulationError struct {
	Step    int
	Time    float64
	Kernel  kernels.Kind
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
