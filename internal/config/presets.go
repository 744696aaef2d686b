package config

import "sort"

var Presets = map[string]*Config{
	"impulse": {
		Name: "impulse", Grid: GridConfig{5, 5, 5}, Spacing: SpacingConfig{1, 1, 1},
		Dt: 0.1, Steps: 1, Sequence: []string{"laplacian"},
		Coefficients: CoefficientConfig{Profile: "uniform", Alpha: 1},
		Init:         InitConfig{Kind: "impulse", Component: "x", Amplitude: 1, Center: []int{2, 2, 2}},
		Probes: []ProbeConfig{
			{Name: "centre", Field: "v", Component: "x", At: [3]int{2, 2, 2}},
			{Name: "neighbour", Field: "v", Component: "x", At: [3]int{3, 2, 2}},
		},
		SampleEvery: 1,
	},
	"acoustic": {
		Name: "acoustic", Grid: GridConfig{32, 32, 32}, Spacing: SpacingConfig{1, 1, 1},
		Dt: 0.1, Steps: 300, Sequence: []string{"laplacian", "displacement"},
		Coefficients: CoefficientConfig{Profile: "uniform", Alpha: 1},
		Init:         InitConfig{Kind: "gaussian", Component: "x", Amplitude: 1, Width: 2},
		Probes: []ProbeConfig{
			{Name: "centre", Field: "u", Component: "x", At: [3]int{16, 16, 16}},
			{Name: "edge", Field: "u", Component: "x", At: [3]int{24, 16, 16}},
		},
		SampleEvery: 1,
	},
	"damped": {
		Name: "damped", Grid: GridConfig{32, 32, 32}, Spacing: SpacingConfig{1, 1, 1},
		Dt: 0.1, Steps: 300, Sequence: []string{"laplacian", "local", "displacement"},
		Coefficients: CoefficientConfig{Profile: "uniform", Alpha: 1, Gamma: -0.2},
		Init:         InitConfig{Kind: "gaussian", Component: "x", Amplitude: 1, Width: 2},
		Probes: []ProbeConfig{
			{Name: "centre", Field: "u", Component: "x", At: [3]int{16, 16, 16}},
		},
		SampleEvery: 1,
	},
	"anisotropic": {
		Name: "anisotropic", Grid: GridConfig{32, 32, 32}, Spacing: SpacingConfig{1, 1, 1},
		Dt: 0.05, Steps: 400, Sequence: []string{"laplacian", "gradient", "displacement"},
		Coefficients: CoefficientConfig{Profile: "uniform", Alpha: 1, Eta: [3]float64{1, 0.5, 0.25}},
		Init:         InitConfig{Kind: "gaussian", Component: "x", Amplitude: 1, Width: 2.5},
		Probes: []ProbeConfig{
			{Name: "ux", Field: "u", Component: "x", At: [3]int{20, 16, 16}},
			{Name: "uy", Field: "u", Component: "y", At: [3]int{16, 20, 16}},
		},
		SampleEvery: 2,
	},
	"layered": {
		Name: "layered", Grid: GridConfig{24, 24, 48}, Spacing: SpacingConfig{1, 1, 1},
		Dt: 0.05, Steps: 600, Sequence: []string{"laplacian", "displacement"},
		Coefficients: CoefficientConfig{Profile: "layered", Alpha: 1, Contrast: 4},
		Init:         InitConfig{Kind: "plane", Component: "z", Amplitude: 1, Width: 2, Center: []int{12, 12, 12}},
		Probes: []ProbeConfig{
			{Name: "below", Field: "u", Component: "z", At: [3]int{12, 12, 18}},
			{Name: "above", Field: "u", Component: "z", At: [3]int{12, 12, 36}},
		},
		SampleEvery: 4,
	},
	"oscillator": {
		Name: "oscillator", Grid: GridConfig{8, 8, 8}, Spacing: SpacingConfig{1, 1, 1},
		Dt: 0.05, Steps: 512, Sequence: []string{"local", "displacement"},
		Coefficients: CoefficientConfig{Profile: "uniform", Beta: -4},
		Init:         InitConfig{Kind: "noise", Component: "x", Amplitude: 0.1, Seed: 7},
		Probes: []ProbeConfig{
			{Name: "cell", Field: "u", Component: "x", At: [3]int{4, 4, 4}},
		},
		SampleEvery: 1,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
