package automation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/experiment"
	"github.com/san-kum/wavestep/internal/optim"
	"github.com/san-kum/wavestep/internal/sim"
)

// Scenario is a scripted list of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset or a config file and applies overrides.
type ScenarioRun struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Steps  int                `yaml:"steps"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}

	return &scenario, nil
}

// Resolve builds the run config for one scenario entry.
func (r ScenarioRun) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case r.Config != "":
		loaded, err := config.Load(r.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case r.Preset != "":
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", r.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if r.Steps > 0 {
		cfg.Steps = r.Steps
	}
	if err := optim.Apply(cfg, r.Params); err != nil {
		return nil, err
	}
	if r.SaveAs != "" {
		cfg.Name = r.SaveAs
	}
	return cfg, cfg.Validate()
}

// Outcome is the result of one scenario run.
type Outcome struct {
	Config  *config.Config
	Workers int
	Result  *sim.Result
	Elapsed time.Duration
}

// RunScenario executes the runs in order and stops at the first failure.
// Outcomes of completed runs are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *log.Logger) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		cfg, err := run.Resolve()
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		if logger != nil {
			logger.Info("scenario run", "n", i+1, "of", len(scenario.Runs), "name", cfg.Name)
		}

		exp, err := registry.Build(cfg, registry.DefaultMetrics(cfg), logger)
		if err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		outcomes = append(outcomes, Outcome{
			Config:  cfg,
			Workers: exp.Simulator.Engine().Workers(),
			Result:  result,
			Elapsed: time.Since(start),
		})
	}

	return outcomes, nil
}

// MonteCarloConfig perturbs the initial amplitude and noise seed of a base
// config across trials.
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the relative amplitude spread, 0.1 for +-10%.
	Perturbation float64
	NumTrials    int
	Seed         uint64
}

type MonteCarloResult struct {
	TrialID   int
	Amplitude float64
	Stability float64
	MaxU      float64
	// Stable is true when the run finished and |u| never crossed the
	// stability threshold.
	Stable bool
	Err    error
}

// RunMonteCarlo runs all trials side by side with one kernel worker each.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *log.Logger) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("need at least one trial")
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	results := make([]MonteCarloResult, cfg.NumTrials)
	ens := sim.NewEnsemble()

	for trial := 0; trial < cfg.NumTrials; trial++ {
		c := cfg.Base.Clone()
		c.Init.Amplitude *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		c.Init.Seed = int64(cfg.Seed) + int64(trial)
		c.Workers = 1

		// The threshold stays tied to the unperturbed amplitude.
		exp, err := registry.Build(c, registry.DefaultMetrics(cfg.Base), logger)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		ens.Add(exp.Simulator, exp.Sim)
		results[trial] = MonteCarloResult{TrialID: trial, Amplitude: c.Init.Amplitude}
	}

	runs, errs := ens.Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		results[i].Err = errs[i]
		if runs[i] != nil {
			results[i].Stability = runs[i].Metrics["stability"]
			results[i].MaxU = runs[i].Metrics["max_displacement"]
		}
		results[i].Stable = errs[i] == nil && results[i].Stability == 1
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
