package sim

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/wavestep/internal/kernels"
)

type Simulator struct {
	fields    *Fields
	engine    *kernels.Engine
	probes    []Probe
	metrics   []Metric
	observers []Observer
	logger    *log.Logger
}

func New(f *Fields, engine *kernels.Engine) *Simulator {
	return &Simulator{
		fields:    f,
		engine:    engine,
		probes:    make([]Probe, 0),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) AddProbe(p Probe)        { s.probes = append(s.probes, p) }
func (s *Simulator) SetLogger(l *log.Logger) { s.logger = l }
func (s *Simulator) Fields() *Fields         { return s.fields }
func (s *Simulator) Engine() *kernels.Engine { return s.engine }

// Apply runs one kernel against the simulator's fields.
func (s *Simulator) Apply(kind kernels.Kind, cfg Config) error {
	f := s.fields
	switch kind {
	case kernels.KindDisplacement:
		return s.engine.Displacement(f.U, f.V, cfg.Dt, f.Shape.Interior())
	case kernels.KindLaplacian:
		return s.engine.Laplacian(f.V, f.U, f.Alpha, cfg.Dt, cfg.Spacing2(), f.Shape.Full())
	case kernels.KindLocal:
		return s.engine.Local(f.V, f.U, f.Beta, f.Gamma, cfg.Dt, f.Shape.Interior())
	case kernels.KindGradient:
		return s.engine.Gradient(f.V, f.U, f.Alpha, f.Eta, cfg.Dt, cfg.HalfSpacing(), f.Shape.Full())
	}
	return fmt.Errorf("unknown kernel: %v", kind)
}

// Run advances the fields cfg.Steps times, applying cfg.Sequence in order
// each step. Each kernel finishes before the next one starts.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validate(cfg); err != nil {
		return nil, err
	}

	every := max(cfg.SampleEvery, 1)
	result := &Result{
		Times:      make([]float64, 0, cfg.Steps/every+1),
		ProbeNames: make([]string, len(s.probes)),
		Probes:     make([][]float64, 0, cfg.Steps/every+1),
		Metrics:    make(map[string]float64),
	}
	for i, p := range s.probes {
		result.ProbeNames[i] = p.Name
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	s.sample(result, t)

	for step := 0; step < cfg.Steps; step++ {
		s.observe(t)

		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		for _, kind := range cfg.Sequence {
			if err := s.Apply(kind, cfg); err != nil {
				s.observe(t)
				s.collect(result)
				return result, &SimulationError{Step: step, Time: t, Kernel: kind, Wrapped: err}
			}
		}

		t += cfg.Dt
		result.StepsTaken++

		for _, obs := range s.observers {
			obs.OnStep(step+1, t, s.fields)
		}
		if (step+1)%every == 0 {
			s.sample(result, t)
		}
		if s.logger != nil && (step+1)%100 == 0 {
			s.logger.Debug("step", "n", step+1, "t", t)
		}
	}

	s.observe(t)
	s.collect(result)
	return result, nil
}

// observe shows the current fields to every metric. Run calls it before
// each step, after the last step, and on the partially updated fields of a
// failed step.
func (s *Simulator) observe(t float64) {
	for _, m := range s.metrics {
		m.Observe(s.fields, t)
	}
}

// collect records metric values, including for runs that stopped early.
func (s *Simulator) collect(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) sample(r *Result, t float64) {
	row := make([]float64, len(s.probes))
	for i, p := range s.probes {
		row[i] = p.value(s.fields)
	}
	r.Times = append(r.Times, t)
	r.Probes = append(r.Probes, row)
}

func (s *Simulator) validate(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.DX <= 0 || cfg.DY <= 0 || cfg.DZ <= 0 {
		return fmt.Errorf("grid spacing must be positive, got %g,%g,%g", cfg.DX, cfg.DY, cfg.DZ)
	}
	if len(cfg.Sequence) == 0 {
		return fmt.Errorf("kernel sequence is empty")
	}
	if s.fields == nil || !s.fields.Shape.Valid() {
		return fmt.Errorf("simulator has no fields")
	}
	for _, p := range s.probes {
		if err := p.validate(s.fields.Shape); err != nil {
			return err
		}
	}
	return nil
}
