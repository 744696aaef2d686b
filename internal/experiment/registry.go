package experiment

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/metrics"
	"github.com/san-kum/wavestep/internal/sim"
)

// InitFunc writes an initial displacement into one component of u.
type InitFunc func(f *grid.Scalar, cfg config.InitConfig) error

// ProfileFunc fills the coefficient arrays.
type ProfileFunc func(f *sim.Fields, cfg config.CoefficientConfig) error

type Registry struct {
	inits    map[string]InitFunc
	profiles map[string]ProfileFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		inits:    make(map[string]InitFunc),
		profiles: make(map[string]ProfileFunc),
	}

	r.inits["impulse"] = initImpulse
	r.inits["gaussian"] = initGaussian
	r.inits["plane"] = initPlane
	r.inits["noise"] = initNoise

	r.profiles["uniform"] = profileUniform
	r.profiles["layered"] = profileLayered

	return r
}

func (r *Registry) GetInit(name string) (InitFunc, error) {
	fn, ok := r.inits[name]
	if !ok {
		return nil, fmt.Errorf("unknown initial condition: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetProfile(name string) (ProfileFunc, error) {
	if name == "" {
		name = "uniform"
	}
	fn, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown coefficient profile: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListInits() []string    { return sortedKeys(r.inits) }
func (r *Registry) ListProfiles() []string { return sortedKeys(r.profiles) }

// DefaultMetrics are attached to every CLI run. The stability threshold is
// ten times the initial amplitude.
func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	limit := 10 * math.Abs(cfg.Init.Amplitude)
	if limit == 0 {
		limit = 10
	}
	return []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewMaxDisplacement(),
		metrics.NewStability(limit),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// centre resolves the configured centre, defaulting to the grid middle.
func centre(s grid.Shape, c []int) (int, int, int, error) {
	if len(c) == 0 {
		return s.NX / 2, s.NY / 2, s.NZ / 2, nil
	}
	if len(c) != 3 {
		return 0, 0, 0, fmt.Errorf("center needs 3 indices, got %d", len(c))
	}
	if c[0] < 0 || c[1] < 0 || c[2] < 0 || c[0] >= s.NX || c[1] >= s.NY || c[2] >= s.NZ {
		return 0, 0, 0, fmt.Errorf("%w: center %v outside %s", grid.ErrLaunchDomain, c, s)
	}
	return c[0], c[1], c[2], nil
}

func initImpulse(f *grid.Scalar, cfg config.InitConfig) error {
	i, j, k, err := centre(f.Shape, cfg.Center)
	if err != nil {
		return err
	}
	f.Set(i, j, k, cfg.Amplitude)
	return nil
}

func initGaussian(f *grid.Scalar, cfg config.InitConfig) error {
	ci, cj, ck, err := centre(f.Shape, cfg.Center)
	if err != nil {
		return err
	}
	if cfg.Width <= 0 {
		return fmt.Errorf("gaussian width must be positive, got %f", cfg.Width)
	}
	s := f.Shape
	w2 := cfg.Width * cfg.Width
	for k := 1; k < s.NZ-1; k++ {
		for j := 1; j < s.NY-1; j++ {
			for i := 1; i < s.NX-1; i++ {
				di, dj, dk := float64(i-ci), float64(j-cj), float64(k-ck)
				f.Set(i, j, k, cfg.Amplitude*math.Exp(-(di*di+dj*dj+dk*dk)/w2))
			}
		}
	}
	return nil
}

// initPlane is a gaussian slab across x and y, centred on the z index.
func initPlane(f *grid.Scalar, cfg config.InitConfig) error {
	_, _, ck, err := centre(f.Shape, cfg.Center)
	if err != nil {
		return err
	}
	if cfg.Width <= 0 {
		return fmt.Errorf("plane width must be positive, got %f", cfg.Width)
	}
	s := f.Shape
	w2 := cfg.Width * cfg.Width
	for k := 1; k < s.NZ-1; k++ {
		dk := float64(k - ck)
		a := cfg.Amplitude * math.Exp(-dk*dk/w2)
		for j := 1; j < s.NY-1; j++ {
			for i := 1; i < s.NX-1; i++ {
				f.Set(i, j, k, a)
			}
		}
	}
	return nil
}

func initNoise(f *grid.Scalar, cfg config.InitConfig) error {
	r := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15))
	s := f.Shape
	for k := 1; k < s.NZ-1; k++ {
		for j := 1; j < s.NY-1; j++ {
			for i := 1; i < s.NX-1; i++ {
				f.Set(i, j, k, cfg.Amplitude*(2*r.Float64()-1))
			}
		}
	}
	return nil
}

func profileUniform(f *sim.Fields, cfg config.CoefficientConfig) error {
	f.Alpha.Fill(cfg.Alpha)
	f.Beta.Fill(cfg.Beta)
	f.Gamma.Fill(cfg.Gamma)
	f.Eta.X.Fill(cfg.Eta[0])
	f.Eta.Y.Fill(cfg.Eta[1])
	f.Eta.Z.Fill(cfg.Eta[2])
	return nil
}

// profileLayered is uniform with alpha scaled by Contrast above mid-depth.
func profileLayered(f *sim.Fields, cfg config.CoefficientConfig) error {
	if cfg.Contrast <= 0 {
		return fmt.Errorf("layered profile needs a positive contrast, got %f", cfg.Contrast)
	}
	if err := profileUniform(f, cfg); err != nil {
		return err
	}
	s := f.Shape
	_, _, sz := s.Strides()
	top := cfg.Alpha * cfg.Contrast
	for k := s.NZ / 2; k < s.NZ; k++ {
		plane := f.Alpha.Data[k*sz : (k+1)*sz]
		for i := range plane {
			plane[i] = top
		}
	}
	return nil
}
