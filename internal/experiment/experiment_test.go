package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/sim"
)

func TestBuildImpulseScenario(t *testing.T) {
	r := NewRegistry()
	exp, err := r.Build(config.GetPreset("impulse"), nil, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	last := result.Probes[len(result.Probes)-1]
	if math.Abs(last[0]+0.6) > 1e-12 {
		t.Errorf("centre velocity = %f, want -0.6", last[0])
	}
	if math.Abs(last[1]-0.1) > 1e-12 {
		t.Errorf("neighbour velocity = %f, want 0.1", last[1])
	}
}

func TestBuildAllPresets(t *testing.T) {
	r := NewRegistry()
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		exp, err := r.Build(cfg, r.DefaultMetrics(cfg), nil)
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if exp.Simulator.Fields().Shape.NX != cfg.Grid.NX {
			t.Errorf("preset %s: wrong shape", name)
		}
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	r := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.Init.Kind = "spiral"
	if _, err := r.Build(cfg, nil, nil); err == nil {
		t.Error("expected error for unknown init")
	}

	cfg = config.DefaultConfig()
	cfg.Coefficients.Profile = "random"
	if _, err := r.Build(cfg, nil, nil); err == nil {
		t.Error("expected error for unknown profile")
	}

	cfg = config.DefaultConfig()
	cfg.Init.Center = []int{1, 2, 99}
	if _, err := r.Build(cfg, nil, nil); !errors.Is(err, grid.ErrLaunchDomain) {
		t.Errorf("expected ErrLaunchDomain, got %v", err)
	}
}

func TestInitGaussian(t *testing.T) {
	f := grid.NewScalar(grid.Shape{NX: 9, NY: 9, NZ: 9})
	if err := initGaussian(f, config.InitConfig{Amplitude: 2, Width: 1.5}); err != nil {
		t.Fatal(err)
	}
	if f.At(4, 4, 4) != 2 {
		t.Errorf("peak = %f, want 2", f.At(4, 4, 4))
	}
	if f.At(5, 4, 4) >= 2 || f.At(5, 4, 4) != f.At(3, 4, 4) {
		t.Error("gaussian should fall off symmetrically")
	}
	if f.At(0, 4, 4) != 0 {
		t.Error("border must stay zero")
	}
	if err := initGaussian(f, config.InitConfig{Width: 0}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestInitNoiseDeterministic(t *testing.T) {
	s := grid.Shape{NX: 4, NY: 4, NZ: 4}
	a, b := grid.NewScalar(s), grid.NewScalar(s)
	cfg := config.InitConfig{Amplitude: 1, Seed: 11}

	_ = initNoise(a, cfg)
	_ = initNoise(b, cfg)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatal("same seed produced different noise")
		}
	}
}

func TestProfileLayered(t *testing.T) {
	f := sim.NewFields(grid.Shape{NX: 3, NY: 3, NZ: 6})
	if err := profileLayered(f, config.CoefficientConfig{Alpha: 1, Contrast: 3}); err != nil {
		t.Fatal(err)
	}
	if f.Alpha.At(1, 1, 2) != 1 || f.Alpha.At(1, 1, 3) != 3 || f.Alpha.At(2, 2, 5) != 3 {
		t.Errorf("unexpected layered alpha: %v", f.Alpha.Data)
	}
	if err := profileLayered(f, config.CoefficientConfig{Alpha: 1}); err == nil {
		t.Error("expected error for zero contrast")
	}
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if got := r.ListInits(); len(got) != 4 || got[0] != "gaussian" {
		t.Errorf("ListInits() = %v", got)
	}
	if got := r.ListProfiles(); len(got) != 2 {
		t.Errorf("ListProfiles() = %v", got)
	}
}

func TestBuildRegriddedDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Regrid(config.GridConfig{NX: 16, NY: 16, NZ: 16})
	cfg.Steps = 2

	r := NewRegistry()
	exp, err := r.Build(cfg, r.DefaultMetrics(cfg), nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 2 || len(result.ProbeNames) != 2 {
		t.Errorf("unexpected result: %d steps, probes %v", result.StepsTaken, result.ProbeNames)
	}
}

func TestBuildRejectsProbeOutsideGrid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Grid = config.GridConfig{NX: 16, NY: 16, NZ: 16}
	if _, err := NewRegistry().Build(cfg, nil, nil); err == nil {
		t.Error("expected build to reject a probe outside the grid")
	}
}
