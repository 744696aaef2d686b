package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavestep/internal/kernels"
	"github.com/san-kum/wavestep/internal/sim"
)

const (
	DefaultN         = 32
	DefaultDt        = 0.1
	DefaultSteps     = 200
	DefaultSpacing   = 1.0
	DefaultAlpha     = 1.0
	DefaultAmplitude = 1.0
	DefaultWidth     = 2.0
)

type Config struct {
	Name         string            `yaml:"name"`
	Grid         GridConfig        `yaml:"grid"`
	Spacing      SpacingConfig     `yaml:"spacing"`
	Dt           float64           `yaml:"dt"`
	Steps        int               `yaml:"steps"`
	Sequence     []string          `yaml:"sequence"`
	Coefficients CoefficientConfig `yaml:"coefficients"`
	Init         InitConfig        `yaml:"init"`
	Probes       []ProbeConfig     `yaml:"probes"`
	Workers      int               `yaml:"workers"`
	CheckFinite  bool              `yaml:"check_finite"`
	SampleEvery  int               `yaml:"sample_every"`
}

type GridConfig struct {
	NX int `yaml:"nx"`
	NY int `yaml:"ny"`
	NZ int `yaml:"nz"`
}

type SpacingConfig struct {
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
	DZ float64 `yaml:"dz"`
}

type CoefficientConfig struct {
	// Profile is "uniform" or "layered".
	Profile string     `yaml:"profile"`
	Alpha   float64    `yaml:"alpha"`
	Beta    float64    `yaml:"beta"`
	Gamma   float64    `yaml:"gamma"`
	Eta     [3]float64 `yaml:"eta"`
	// Contrast scales alpha in the upper half of a layered profile.
	Contrast float64 `yaml:"contrast"`
}

type InitConfig struct {
	// Kind is "impulse", "gaussian", "plane" or "noise".
	Kind      string  `yaml:"kind"`
	Component string  `yaml:"component"`
	Amplitude float64 `yaml:"amplitude"`
	Width     float64 `yaml:"width"`
	Center    []int   `yaml:"center"`
	Seed      int64   `yaml:"seed"`
}

type ProbeConfig struct {
	Name      string `yaml:"name"`
	Field     string `yaml:"field"`
	Component string `yaml:"component"`
	At        [3]int `yaml:"at"`
}

func DefaultConfig() *Config {
	c := DefaultN / 2
	return &Config{
		Name:     "acoustic",
		Grid:     GridConfig{NX: DefaultN, NY: DefaultN, NZ: DefaultN},
		Spacing:  SpacingConfig{DX: DefaultSpacing, DY: DefaultSpacing, DZ: DefaultSpacing},
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		Sequence: []string{"laplacian", "displacement"},
		Coefficients: CoefficientConfig{
			Profile: "uniform",
			Alpha:   DefaultAlpha,
		},
		Init: InitConfig{
			Kind:      "gaussian",
			Component: "x",
			Amplitude: DefaultAmplitude,
			Width:     DefaultWidth,
		},
		Probes: []ProbeConfig{
			{Name: "centre", Field: "u", Component: "x", At: [3]int{c, c, c}},
			{Name: "offset", Field: "u", Component: "x", At: [3]int{c + c/2, c, c}},
		},
		SampleEvery: 1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Sequence = append([]string(nil), c.Sequence...)
	out.Probes = append([]ProbeConfig(nil), c.Probes...)
	out.Init.Center = append([]int(nil), c.Init.Center...)
	return &out
}

func (c *Config) Kernels() ([]kernels.Kind, error) {
	kinds := make([]kernels.Kind, 0, len(c.Sequence))
	for _, name := range c.Sequence {
		k, err := kernels.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (c *Config) Validate() error {
	if c.Grid.NX < 3 || c.Grid.NY < 3 || c.Grid.NZ < 3 {
		return fmt.Errorf("grid must be at least 3 cells per axis, got %dx%dx%d", c.Grid.NX, c.Grid.NY, c.Grid.NZ)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Spacing.DX <= 0 || c.Spacing.DY <= 0 || c.Spacing.DZ <= 0 {
		return fmt.Errorf("spacing must be positive")
	}
	if len(c.Sequence) == 0 {
		return fmt.Errorf("sequence must name at least one kernel")
	}
	if _, err := c.Kernels(); err != nil {
		return err
	}
	g := [3]int{c.Grid.NX, c.Grid.NY, c.Grid.NZ}
	for _, p := range c.Probes {
		if _, err := ComponentIndex(p.Component); err != nil {
			return fmt.Errorf("probe %s: %w", p.Name, err)
		}
		if p.Field != "" && p.Field != "u" && p.Field != "v" {
			return fmt.Errorf("probe %s: field must be u or v, got %q", p.Name, p.Field)
		}
		for a := range g {
			if p.At[a] < 0 || p.At[a] >= g[a] {
				return fmt.Errorf("probe %s at %v outside grid %dx%dx%d", p.Name, p.At, g[0], g[1], g[2])
			}
		}
	}
	if len(c.Init.Center) > 0 {
		if len(c.Init.Center) != 3 {
			return fmt.Errorf("init center needs 3 indices, got %d", len(c.Init.Center))
		}
		for a := range g {
			if c.Init.Center[a] < 0 || c.Init.Center[a] >= g[a] {
				return fmt.Errorf("init center %v outside grid %dx%dx%d", c.Init.Center, g[0], g[1], g[2])
			}
		}
	}
	return nil
}

// Regrid changes the grid size and moves probes and the init center to the
// same relative position on the new grid.
func (c *Config) Regrid(g GridConfig) {
	from := [3]int{c.Grid.NX, c.Grid.NY, c.Grid.NZ}
	to := [3]int{g.NX, g.NY, g.NZ}
	scale := func(a, i int) int {
		if from[a] <= 1 || to[a] <= 1 {
			return 0
		}
		v := int(math.Round(float64(i) * float64(to[a]-1) / float64(from[a]-1)))
		return min(max(v, 0), to[a]-1)
	}

	for i := range c.Probes {
		for a := range c.Probes[i].At {
			c.Probes[i].At[a] = scale(a, c.Probes[i].At[a])
		}
	}
	if len(c.Init.Center) == 3 {
		center := make([]int, 3)
		for a := range center {
			center[a] = scale(a, c.Init.Center[a])
		}
		c.Init.Center = center
	}
	c.Grid = g
}

// Sim converts the file-level settings into a simulator run config.
func (c *Config) Sim() (sim.Config, error) {
	kinds, err := c.Kernels()
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Dt:          c.Dt,
		Steps:       c.Steps,
		DX:          c.Spacing.DX,
		DY:          c.Spacing.DY,
		DZ:          c.Spacing.DZ,
		Sequence:    kinds,
		SampleEvery: c.SampleEvery,
	}, nil
}

func ComponentIndex(name string) (int, error) {
	switch name {
	case "x", "":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown component: %s", name)
}
