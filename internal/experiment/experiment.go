package experiment

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/kernels"
	"github.com/san-kum/wavestep/internal/sim"
)

// Experiment is a configured simulator ready to run.
type Experiment struct {
	Config    *config.Config
	Sim       sim.Config
	Simulator *sim.Simulator
}

// Build allocates fields for cfg, initialises them and wires probes, metrics
// and logging into a simulator.
func (r *Registry) Build(cfg *config.Config, metrics []sim.Metric, logger *log.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	simCfg, err := cfg.Sim()
	if err != nil {
		return nil, err
	}

	shape := grid.Shape{NX: cfg.Grid.NX, NY: cfg.Grid.NY, NZ: cfg.Grid.NZ}
	fields := sim.NewFields(shape)

	profile, err := r.GetProfile(cfg.Coefficients.Profile)
	if err != nil {
		return nil, err
	}
	if err := profile(fields, cfg.Coefficients); err != nil {
		return nil, err
	}

	initFn, err := r.GetInit(cfg.Init.Kind)
	if err != nil {
		return nil, err
	}
	comp, err := config.ComponentIndex(cfg.Init.Component)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := initFn(fields.U.Components()[comp], cfg.Init); err != nil {
		return nil, fmt.Errorf("init %s: %w", cfg.Init.Kind, err)
	}

	engine := kernels.New(kernels.Options{
		Workers:     cfg.Workers,
		CheckFinite: cfg.CheckFinite,
		Logger:      logger,
	})
	s := sim.New(fields, engine)
	s.SetLogger(logger)

	for _, p := range cfg.Probes {
		c, err := config.ComponentIndex(p.Component)
		if err != nil {
			return nil, err
		}
		field := p.Field
		if field == "" {
			field = "u"
		}
		s.AddProbe(sim.Probe{Name: p.Name, Field: field, Component: c, I: p.At[0], J: p.At[1], K: p.At[2]})
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}

	return &Experiment{Config: cfg, Sim: simCfg, Simulator: s}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.Simulator.Run(ctx, e.Sim)
}
