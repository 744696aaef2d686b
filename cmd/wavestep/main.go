package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavestep/internal/analysis"
	"github.com/san-kum/wavestep/internal/automation"
	"github.com/san-kum/wavestep/internal/config"
	"github.com/san-kum/wavestep/internal/experiment"
	"github.com/san-kum/wavestep/internal/export"
	"github.com/san-kum/wavestep/internal/grid"
	"github.com/san-kum/wavestep/internal/kernels"
	"github.com/san-kum/wavestep/internal/optim"
	"github.com/san-kum/wavestep/internal/sim"
	"github.com/san-kum/wavestep/internal/storage"
	"github.com/san-kum/wavestep/internal/tui"
	"github.com/san-kum/wavestep/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	dt          float64
	steps       int
	nx, ny, nz  int
	workers     int
	checkFinite bool
	live        bool
	fps         int
	noSave      bool
	probeName   string
	sweepDts    []float64
	benchSizes  []int
	benchIters  int
	showSlice   bool
	svgOut      string
	params      []string
	objective   string
	maximize    bool
	trials      int
	perturb     float64
	seed        uint64

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "wavestep",
		Short:        "3D vector wave stencil stepper",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      time.Kitchen,
				Prefix:          "wavestep",
			})
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".wavestep", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&nx, "nx", config.DefaultN, "grid cells along x")
	runCmd.Flags().IntVar(&ny, "ny", config.DefaultN, "grid cells along y")
	runCmd.Flags().IntVar(&nz, "nz", config.DefaultN, "grid cells along z")
	runCmd.Flags().IntVar(&workers, "workers", 0, "kernel workers (0 = all cpus)")
	runCmd.Flags().BoolVar(&checkFinite, "check-finite", false, "fail on NaN/Inf after each kernel")
	runCmd.Flags().BoolVar(&live, "live", false, "show live progress")
	runCmd.Flags().IntVar(&fps, "fps", 30, "live view frame rate")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showSlice, "slice", false, "print the final |u| mid-plane")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final |u| mid-plane as svg")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot probe series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write one svg per probe into this directory")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a probe",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&probeName, "probe", "", "probe name (default first probe)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and probes as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).Export(args[0], os.Stdout)
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [preset] [path]",
		Short: "write a preset as a yaml config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			if err := config.Save(args[1], cfg); err != nil {
				return err
			}
			logger.Info("config written", "preset", args[0], "path", args[1])
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a preset at several time steps side by side",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepDt,
	}
	sweepCmd.Flags().Float64SliceVar(&sweepDts, "dts", []float64{0.05, 0.1, 0.2, 0.4, 0.6}, "time steps to compare")
	sweepCmd.Flags().IntVar(&steps, "steps", 200, "number of steps")

	searchCmd := &cobra.Command{
		Use:   "search [preset]",
		Short: "grid search over run parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  searchParams,
	}
	searchCmd.Flags().StringArrayVar(&params, "param", nil, "search axis name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&objective, "metric", "max_displacement", "metric to optimise")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	searchCmd.Flags().IntVar(&steps, "steps", 100, "number of steps per trial")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a yaml scenario of runs in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "stability under perturbed initial amplitude",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "relative amplitude spread")
	monteCarloCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().IntVar(&steps, "steps", 100, "number of steps per trial")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the kernels",
		RunE:  benchKernels,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{32, 64, 128}, "cubic grid sizes")
	benchCmd.Flags().IntVar(&benchIters, "iters", 20, "calls per kernel and size")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "kernel workers (0 = all cpus)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd, configCmd, sweepCmd, searchCmd, batchCmd, monteCarloCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("nx") || flags.Changed("ny") || flags.Changed("nz") {
		g := cfg.Grid
		if flags.Changed("nx") {
			g.NX = nx
		}
		if flags.Changed("ny") {
			g.NY = ny
		}
		if flags.Changed("nz") {
			g.NZ = nz
		}
		cfg.Regrid(g)
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("check-finite") {
		cfg.CheckFinite = checkFinite
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := registry.Build(cfg, registry.DefaultMetrics(cfg), logger)
	if err != nil {
		return err
	}

	logger.Info("running",
		"name", cfg.Name,
		"grid", exp.Simulator.Fields().Shape,
		"steps", cfg.Steps,
		"dt", cfg.Dt,
		"sequence", strings.Join(cfg.Sequence, ","),
		"workers", exp.Simulator.Engine().Workers(),
	)

	start := time.Now()
	var result *sim.Result
	if live {
		err = tui.Run(cmd.Context(), cfg.Name, cfg.Steps, fps, func(ctx context.Context, obs sim.Observer) error {
			exp.Simulator.AddObserver(obs)
			var runErr error
			result, runErr = exp.Run(ctx)
			return runErr
		})
	} else {
		result, err = exp.Run(cmd.Context())
	}
	elapsed := time.Since(start)

	if err != nil {
		var simErr *sim.SimulationError
		if errors.As(err, &simErr) {
			logger.Error("simulation failed", "step", simErr.Step, "t", simErr.Time, "kernel", simErr.Kernel, "err", simErr.Wrapped)
		}
		if result == nil || result.StepsTaken == 0 {
			return err
		}
		logger.Warn("keeping partial result", "steps", result.StepsTaken)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, exp.Simulator.Engine().Workers(), result, elapsed)
		if err != nil {
			return err
		}
		fmt.Println(tui.Metric("run id", runID))
	}

	if showSlice || svgOut != "" {
		if err := writeSlice(exp.Simulator.Fields()); err != nil {
			return err
		}
	}

	cells := float64(exp.Simulator.Fields().Shape.Len())
	fmt.Println(tui.Metric("steps", fmt.Sprintf("%d", result.StepsTaken)))
	fmt.Println(tui.Metric("elapsed", elapsed.Round(time.Millisecond).String()))
	fmt.Println(tui.Metric("cell updates/s", fmt.Sprintf("%.3g", cells*float64(result.StepsTaken)/elapsed.Seconds())))
	fmt.Println("\nmetrics:")
	for _, m := range registry.DefaultMetrics(cfg) {
		if v, ok := result.Metrics[m.Name()]; ok {
			fmt.Printf("  %s: %.6g\n", m.Name(), v)
		}
	}

	return err
}

func writeSlice(f *sim.Fields) error {
	s := f.Shape
	plane, err := viz.MagnitudePlane(f.U, s.NZ/2)
	if err != nil {
		return err
	}
	if showSlice {
		peak := 0.0
		for _, v := range plane {
			peak = max(peak, v)
		}
		fmt.Printf("|u| on z=%d above half peak:\n", s.NZ/2)
		fmt.Print(viz.Threshold(plane, s.NX, s.NY, peak/2))
		fmt.Print(viz.Heatmap(plane, s.NX, s.NY, 80))
	}
	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.SliceToSVG(plane, s.NX, s.NY, 8)), 0644); err != nil {
			return err
		}
		logger.Info("slice written", "path", svgOut)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tDT\tSTEPS\tSEQUENCE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%dx%d\t%.4g\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid[0], run.Grid[1], run.Grid[2],
			run.Dt,
			run.StepsTaken,
			strings.Join(run.Sequence, ","),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	probes, err := st.LoadProbes(args[0])
	if err != nil {
		return err
	}
	if len(probes.Values) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("sequence: %s\n", strings.Join(meta.Sequence, " -> "))
	fmt.Printf("samples: %d\n\n", len(probes.Times))

	for i, name := range probes.Names {
		graph := asciigraph.Plot(probes.Series(i),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgOut != "" {
		if err := os.MkdirAll(svgOut, 0755); err != nil {
			return err
		}
		for i, name := range probes.Names {
			path := filepath.Join(svgOut, fmt.Sprintf("%s_%s.svg", meta.ID, name))
			svg := export.SeriesToSVG(probes.Times, probes.Series(i), 800, 300, "#00ff00")
			if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
				return err
			}
			logger.Info("plot written", "path", path)
		}
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	probes, err := st.LoadProbes(args[0])
	if err != nil {
		return err
	}
	if len(probes.Names) == 0 {
		return fmt.Errorf("run %s has no probes", meta.ID)
	}

	idx := 0
	if probeName != "" {
		idx = -1
		for i, name := range probes.Names {
			if name == probeName {
				idx = i
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown probe: %s (available: %v)", probeName, probes.Names)
		}
	}

	series := probes.Series(idx)
	ps := analysis.PowerSpectrum(series)
	plotData := ps
	if len(ps) > 8 {
		plotData = ps[:len(ps)/2]
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("probe: %s\n\n", probes.Names[idx])
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	))
	fmt.Println()

	freq, err := analysis.DominantFrequency(series, meta.SampleInterval())
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tDT\tSTEPS\tSEQUENCE\tINIT")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%dx%d\t%.4g\t%d\t%s\t%s\n",
			name,
			cfg.Grid.NX, cfg.Grid.NY, cfg.Grid.NZ,
			cfg.Dt,
			cfg.Steps,
			strings.Join(cfg.Sequence, ","),
			cfg.Init.Kind,
		)
	}
	return w.Flush()
}

func sweepDt(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(args[0])
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if cmd.Flags().Changed("steps") {
		base.Steps = steps
	}

	registry := experiment.NewRegistry()
	ens := sim.NewEnsemble()
	for _, d := range sweepDts {
		cfg := base.Clone()
		cfg.Dt = d
		// Members already run side by side.
		cfg.Workers = 1
		exp, err := registry.Build(cfg, registry.DefaultMetrics(cfg), logger)
		if err != nil {
			return fmt.Errorf("dt=%g: %w", d, err)
		}
		ens.Add(exp.Simulator, exp.Sim)
	}

	logger.Info("sweeping", "preset", args[0], "members", ens.Len(), "steps", base.Steps)
	results, errs := ens.Run(cmd.Context())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tSTABILITY\tMAX|U|\tKINETIC\tSTATUS")
	for i, d := range sweepDts {
		status := "ok"
		if errs[i] != nil {
			status = errs[i].Error()
		}
		r := results[i]
		if r == nil {
			fmt.Fprintf(w, "%.4g\t-\t-\t-\t-\t%s\n", d, status)
			continue
		}
		fmt.Fprintf(w, "%.4g\t%d\t%.3f\t%.4g\t%.4g\t%s\n",
			d, r.StepsTaken, r.Metrics["stability"], r.Metrics["max_displacement"], r.Metrics["kinetic_energy"], status)
	}
	return w.Flush()
}

func searchParams(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(args[0])
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if cmd.Flags().Changed("steps") {
		base.Steps = steps
	}
	if len(params) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	axes := make([]optim.Param, 0, len(params))
	for _, p := range params {
		axis, err := optim.ParseParam(p)
		if err != nil {
			return err
		}
		axes = append(axes, axis)
	}

	registry := experiment.NewRegistry()
	build := func(values map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		if err := optim.Apply(cfg, values); err != nil {
			return nil, err
		}
		return registry.Build(cfg, registry.DefaultMetrics(cfg), logger)
	}

	logger.Info("searching", "preset", args[0], "metric", objective, "maximize", maximize)
	best, trials, err := optim.NewGridSearch(axes).Search(cmd.Context(), build, objective, maximize)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(axes)+2)
	for _, a := range axes {
		header = append(header, strings.ToUpper(a.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(objective), "STATUS"), "\t"))
	for _, tr := range trials {
		row := make([]string, 0, len(axes)+2)
		for _, a := range axes {
			row = append(row, fmt.Sprintf("%.4g", tr.Params[a.Name]))
		}
		status := "ok"
		value := fmt.Sprintf("%.6g", tr.Value)
		if tr.Err != nil {
			status, value = tr.Err.Error(), "-"
		}
		fmt.Fprintln(w, strings.Join(append(row, value, status), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println()
	for _, a := range axes {
		fmt.Println(tui.Metric(a.Name, fmt.Sprintf("%.4g", best.Params[a.Name])))
	}
	fmt.Println(tui.Metric(objective, fmt.Sprintf("%.6g", best.Value)))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger.Info("scenario", "name", scenario.Name, "runs", len(scenario.Runs))

	outcomes, runErr := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), logger)

	st := storage.New(dataDir)
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tELAPSED\tSTABILITY\tRUN ID")
	for _, o := range outcomes {
		id := "-"
		if !noSave {
			id, err = st.Save(o.Config, o.Workers, o.Result, o.Elapsed)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.3f\t%s\n",
			o.Config.Name, o.Result.StepsTaken, o.Elapsed.Round(time.Millisecond), o.Result.Metrics["stability"], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(args[0])
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if cmd.Flags().Changed("steps") {
		base.Steps = steps
	}

	logger.Info("monte carlo", "preset", args[0], "trials", trials, "perturb", perturb, "seed", seed)
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
	}, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tAMPLITUDE\tMAX|U|\tSTABILITY\tSTABLE")
	for _, r := range results {
		stable := tui.StatusRunning.Render("yes")
		if !r.Stable {
			stable = tui.StatusFailed.Render("no")
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.4g\t%.3f\t%s\n", r.TrialID, r.Amplitude, r.MaxU, r.Stability, stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ok, bad := automation.MonteCarloStats(results)
	fmt.Println()
	fmt.Println(tui.Metric("stable", fmt.Sprintf("%d/%d", ok, ok+bad)))
	return nil
}

func benchKernels(cmd *cobra.Command, args []string) error {
	eng := kernels.New(kernels.Options{Workers: workers})
	fmt.Printf("benchmarking kernels with %d workers\n\n", eng.Workers())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KERNEL\tGRID\tCALLS\tTIME/CALL\tCELLS/SEC")

	for _, n := range benchSizes {
		shape := grid.Shape{NX: n, NY: n, NZ: n}
		f := sim.NewFields(shape)
		f.Alpha.Fill(1)
		f.Eta = grid.FilledVector(shape, 1, 1, 1)
		s := sim.New(f, eng)
		cfg := sim.DefaultConfig()
		cfg.Dt = 1e-3

		for _, kind := range kernels.Kinds() {
			start := time.Now()
			for i := 0; i < benchIters; i++ {
				if err := s.Apply(kind, cfg); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)
			perCall := elapsed / time.Duration(max(benchIters, 1))
			rate := float64(shape.Len()) * float64(benchIters) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.3g\n", kind, shape, benchIters, perCall, rate)
		}
	}

	return w.Flush()
}
