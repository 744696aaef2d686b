package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/experiment"
)

var ErrNoTrial = errors.New("optim: no trial completed")

// Param is one search axis: a config parameter name and the values to try.
type Param struct {
	Name   string
	Values []float64
}

// ParseParam parses "name=v1,v2,...".
func ParseParam(s string) (Param, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return Param{}, fmt.Errorf("param %q: want name=v1,v2", s)
	}
	p := Param{Name: strings.TrimSpace(name)}
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Param{}, fmt.Errorf("param %s: %w", p.Name, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

// Apply writes params into cfg. Known names are dt, alpha, beta, gamma,
// contrast, amplitude and width.
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "dt":
			cfg.Dt = v
		case "alpha":
			cfg.Coefficients.Alpha = v
		case "beta":
			cfg.Coefficients.Beta = v
		case "gamma":
			cfg.Coefficients.Gamma = v
		case "contrast":
			cfg.Coefficients.Contrast = v
		case "amplitude":
			cfg.Init.Amplitude = v
		case "width":
			cfg.Init.Width = v
		default:
			return fmt.Errorf("unknown parameter: %s", name)
		}
	}
	return nil
}

// Trial is one evaluated point of the search.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	params []Param
}

func NewGridSearch(params []Param) *GridSearch {
	return &GridSearch{params: params}
}

// Search evaluates every combination of parameter values in order and
// returns the trial with the smallest (or, with maximize, largest) final
// value of metricName. Trials whose build or run fails are kept in the
// returned list with Err set and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
	maximize bool,
) (Trial, []Trial, error) {
	var trials []Trial
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &trials); err != nil {
		return Trial{}, trials, err
	}

	best := -1
	for i, tr := range trials {
		if tr.Err != nil || math.IsNaN(tr.Value) {
			continue
		}
		if best < 0 || better(tr.Value, trials[best].Value, maximize) {
			best = i
		}
	}
	if best < 0 {
		return Trial{}, trials, ErrNoTrial
	}
	return trials[best], trials, nil
}

func better(a, b float64, maximize bool) bool {
	if maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.params) {
		trial := Trial{Params: current}

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			*trials = append(*trials, trial)
			return nil
		}

		result, err := exp.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			trial.Err = err
		} else if v, ok := result.Metrics[metricName]; ok {
			trial.Value = v
		} else {
			trial.Err = fmt.Errorf("unknown metric: %s", metricName)
		}
		*trials = append(*trials, trial)
		return nil
	}

	p := g.params[depth]
	for _, val := range p.Values {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[p.Name] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}
