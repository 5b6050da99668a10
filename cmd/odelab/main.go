package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/cmplx"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/odelab/odelab/internal/analysis"
	"github.com/odelab/odelab/internal/config"
	"github.com/odelab/odelab/internal/experiment"
	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/scenario"
	"github.com/odelab/odelab/internal/store"
	"github.com/odelab/odelab/internal/systems"
	"github.com/odelab/odelab/internal/tableau"
	"github.com/odelab/odelab/internal/tui"
)

var headline = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

var (
	dataDir string
	verbose bool

	method     string
	dt         float64
	duration   float64
	t0         float64
	x0         string
	params     []string
	seed       int64
	validate   bool
	maxSteps   int
	configFile string
	preset     string
	saveRun    bool

	varIndex   int
	plotHeight int
	plotWidth  int
	xAxis      int
	yAxis      int
	outPath    string

	methodNames string
	dtList      string
	atState     string
	atTime      float64

	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	sweepMetric string

	trials  int
	perturb float64
	bound   float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odelab",
		Short: "runge-kutta lab for ode initial value problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand drops into the interactive picker.
			return tui.Interactive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odelab", "run data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		})))
	}

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "solve an initial value problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run")

	liveCmd := &cobra.Command{
		Use:   "live [system]",
		Short: "watch a solving session in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot stored trajectory components",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&varIndex, "var", -1, "component to plot (-1 for all)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")

	phaseCmd := &cobra.Command{
		Use:   "phase [run-id]",
		Short: "phase portrait of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x", 0, "component for the x axis")
	phaseCmd.Flags().IntVar(&yAxis, "y", 1, "component for the y axis")
	phaseCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	phaseCmd.Flags().IntVar(&plotHeight, "height", 20, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&varIndex, "var", 0, "component to analyze")

	exportCmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run-id]",
		Short: "export run samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run-id]",
		Short: "render a phase projection as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&xAxis, "x", 0, "component for the x axis")
	exportSVGCmd.Flags().IntVar(&yAxis, "y", 1, "component for the y axis")
	exportSVGCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run-id>.svg)")

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list available integration methods",
		RunE:  listMethods,
	}

	systemsCmd := &cobra.Command{
		Use:   "systems",
		Short: "list available systems",
		RunE:  listSystems,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list run presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [system]",
		Short: "run several methods on one system",
		Args:  cobra.ExactArgs(1),
		RunE:  compareMethods,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().StringVar(&methodNames, "methods", strings.Join(tableau.Names(), ","), "methods to compare")

	orderCmd := &cobra.Command{
		Use:   "order [system]",
		Short: "measure observed convergence order",
		Args:  cobra.ExactArgs(1),
		RunE:  orderReport,
	}
	addRunFlags(orderCmd)
	orderCmd.Flags().StringVar(&methodNames, "methods", "euler,midpoint,kutta3,rk4", "methods to measure")
	orderCmd.Flags().StringVar(&dtList, "dts", "0.2,0.1,0.05,0.025", "step sizes for the fit")

	stabilityCmd := &cobra.Command{
		Use:   "stability [system]",
		Short: "eigenvalues of the linearized dynamics",
		Args:  cobra.ExactArgs(1),
		RunE:  stabilityReport,
	}
	addRunFlags(stabilityCmd)
	stabilityCmd.Flags().StringVar(&atState, "at", "", "state to linearize at (default the system's)")
	stabilityCmd.Flags().Float64Var(&atTime, "t", 0, "time to linearize at")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted multi-phase scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [system] [param]",
		Short: "sweep a system parameter",
		Args:  cobra.ExactArgs(2),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first parameter value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of sweep points")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "amplitude", "metric to report")

	mcCmd := &cobra.Command{
		Use:   "mc [system]",
		Short: "monte carlo stability trials from perturbed starts",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	mcCmd.Flags().Float64Var(&perturb, "perturb", 0.05, "uniform perturbation half-width")
	mcCmd.Flags().Float64Var(&bound, "bound", 0, "norm past which a trial counts as unstable")

	benchCmd := &cobra.Command{
		Use:   "bench [system]",
		Short: "step-throughput grid",
		Args:  cobra.ExactArgs(1),
		RunE:  benchSystem,
	}
	benchCmd.Flags().StringVar(&method, "method", "rk4", "integration method")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, phaseCmd, analyzeCmd,
		exportCmd, exportCSVCmd, exportSVGCmd, methodsCmd, systemsCmd, presetsCmd,
		compareCmd, orderCmd, stabilityCmd, scenarioCmd, sweepCmd, mcCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addRunFlags registers the flags shared by every command that
// assembles a run from a config.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "integration method")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "step size")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "integration span")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().StringVar(&x0, "x0", "", "initial state, comma separated")
	cmd.Flags().StringArrayVar(&params, "param", nil, "system parameter override (name=value)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().BoolVar(&validate, "validate", true, "abort on NaN or Inf states")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step cap (0 for the default)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "named preset for the system")
}

// buildRunConfig resolves a run description. Precedence, lowest to
// highest: defaults, --preset, --config, the system argument, flags
// the caller actually set.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	system := ""
	if len(args) > 0 {
		system = args[0]
	}

	cfg := config.Default()

	if preset != "" {
		name := system
		if name == "" {
			name = cfg.System
		}
		p := config.GetPreset(name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (have: %v)", preset, name, config.ListPresets(name))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if system != "" {
		cfg.System = system
	}

	if cmd.Flags().Changed("method") {
		cfg.Method = method
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("t0") {
		cfg.T0 = t0
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("validate") {
		cfg.ValidateState = validate
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if cmd.Flags().Changed("x0") {
		vals, err := parseFloats(x0)
		if err != nil {
			return nil, fmt.Errorf("bad --x0: %w", err)
		}
		cfg.X0 = vals
	}
	for _, kv := range params {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad --param %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad --param %q: %w", kv, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[strings.TrimSpace(name)] = v
	}

	slog.Debug("run config resolved",
		"system", cfg.System, "method", cfg.Method,
		"dt", cfg.Dt, "duration", cfg.Duration)
	return cfg, nil
}

// buildSystem constructs the system named by cfg with its parameter
// overrides applied.
func buildSystem(cfg *config.Config) (ode.System, error) {
	sys, err := systems.ByName(cfg.System)
	if err != nil {
		return nil, err
	}
	if len(cfg.Params) > 0 {
		tunable, ok := sys.(ode.Configurable)
		if !ok {
			return nil, fmt.Errorf("system %s takes no parameters", cfg.System)
		}
		for name, value := range cfg.Params {
			if err := tunable.SetParam(name, value); err != nil {
				return nil, err
			}
		}
	}
	return sys, nil
}

func initialState(cfg *config.Config, sys ode.System) ode.State {
	if len(cfg.X0) > 0 {
		return ode.State(cfg.X0).Clone()
	}
	return systems.DefaultState(sys)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	fmt.Println(headline.Render(fmt.Sprintf("run: %s (%s)", cfg.System, cfg.Method)))
	fmt.Printf("dt=%g  t=%g..%g\n\n", cfg.Dt, cfg.T0, exp.End())

	start := time.Now()
	res, err := exp.Run(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Microsecond))
	fmt.Printf("steps: %d\n", res.StepsTaken)
	fmt.Printf("final: %s\n", formatState(res.States[len(res.States)-1]))

	if len(res.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range sortedKeys(res.Metrics) {
			fmt.Printf("  %s: %.6g\n", name, res.Metrics[name])
		}
	}

	if saveRun {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(store.Meta{
			System:   cfg.System,
			Method:   cfg.Method,
			Seed:     cfg.Seed,
			Dt:       cfg.Dt,
			Duration: cfg.Duration,
			T0:       cfg.T0,
		}, res)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", id)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return tui.Interactive()
	}

	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	sys, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	integ, err := integrators.ByName(cfg.Method)
	if err != nil {
		return err
	}

	return tui.Live(cfg.System, sys, integ, initialState(cfg, sys), cfg.Dt)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tMETHOD\tCREATED\tDURATION\tDT\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%g\t%d\n",
			run.ID,
			run.System,
			run.Method,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, states, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("run %s has no samples", args[0])
	}

	dim := len(states[0])
	fmt.Printf("run: %s\nsystem: %s (%s)\nsamples: %d\n\n", meta.ID, meta.System, meta.Method, len(states))

	first, last := 0, dim
	if varIndex >= 0 {
		if varIndex >= dim {
			return fmt.Errorf("state has %d components, no y%d", dim, varIndex)
		}
		first, last = varIndex, varIndex+1
	} else if last > 6 {
		last = 6
	}

	for idx := first; idx < last; idx++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][idx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(fmt.Sprintf("y%d vs t", idx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, states, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	res := &ode.Result{Times: times, States: states}
	xs, ys := analysis.PhasePortrait{XIndex: xAxis, YIndex: yAxis}.Points(res)
	if xs == nil {
		return fmt.Errorf("cannot project run %s onto (y%d, y%d)", args[0], xAxis, yAxis)
	}

	fmt.Printf("phase portrait: %s (%s)\n", meta.ID, meta.System)
	fmt.Printf("x: y%d  y: y%d\n\n", xAxis, yAxis)
	fmt.Print(analysis.ASCII(xs, ys, plotWidth, plotHeight))

	loX, hiX := bounds(xs)
	loY, hiY := bounds(ys)
	fmt.Printf("\nx: %.3f..%.3f  y: %.3f..%.3f\n", loX, hiX, loY, hiY)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, states, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) < 2 {
		return fmt.Errorf("run %s has too few samples", args[0])
	}
	if varIndex < 0 || varIndex >= len(states[0]) {
		return fmt.Errorf("state has %d components, no y%d", len(states[0]), varIndex)
	}
	if meta.Dt <= 0 {
		return fmt.Errorf("run %s has no step size recorded", args[0])
	}

	data := make([]float64, len(states))
	for i := range states {
		data[i] = states[i][varIndex]
	}

	_, power := analysis.PowerSpectrum(data, meta.Dt)
	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, meta.System)

	quarter := power
	if len(quarter) > 4 {
		quarter = power[:len(power)/4]
	}
	graph := asciigraph.Plot(quarter,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (y%d)", varIndex)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.4f cycles per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f\n", 1.0/freq)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	if outPath == "" {
		return st.WriteJSON(args[0], os.Stdout)
	}
	if err := st.ExportJSON(args[0], outPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	if outPath == "" {
		return st.WriteCSV(args[0], os.Stdout)
	}
	if err := st.ExportCSV(args[0], outPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	path := outPath
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := st.ExportSVG(args[0], xAxis, yAxis, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listMethods(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSTAGES\tORDER")

	for _, name := range tableau.Names() {
		tab, err := tableau.ByName(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\trunge-kutta\t%d\t%d\n", tab.Name(), tab.Stages(), tab.Order())
	}
	for _, name := range []string{"verlet", "leapfrog"} {
		integ, err := integrators.ByName(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\tsymplectic\t-\t%d\n", integ.Name(), integ.Order())
	}
	return w.Flush()
}

func listSystems(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIM\tENERGY\tPARAMS")

	for _, name := range systems.Names() {
		sys, err := systems.ByName(name)
		if err != nil {
			return err
		}

		energy := "-"
		if _, ok := sys.(ode.Hamiltonian); ok {
			energy = "yes"
		}

		paramList := "-"
		if tunable, ok := sys.(ode.Configurable); ok {
			paramList = strings.Join(sortedKeys(tunable.GetParams()), ",")
		}

		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, sys.Dim(), energy, paramList)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(config.Presets))
	if len(args) == 1 {
		if len(config.ListPresets(args[0])) == 0 {
			fmt.Printf("no presets for system: %s\n", args[0])
			return nil
		}
		names = append(names, args[0])
	} else {
		for system := range config.Presets {
			names = append(names, system)
		}
		sort.Strings(names)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYSTEM\tPRESET\tMETHOD\tDT\tTIME\tX0")
	for _, system := range names {
		for _, p := range config.ListPresets(system) {
			cfg := config.GetPreset(system, p)
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\n",
				system, p, cfg.Method, cfg.Dt, cfg.Duration, formatState(cfg.X0))
		}
	}
	return w.Flush()
}

func compareMethods(cmd *cobra.Command, args []string) error {
	base, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Println(headline.Render(fmt.Sprintf("compare: %s", base.System)))
	fmt.Printf("dt=%g  t=%g..%g\n\n", base.Dt, base.T0, base.T0+base.Duration)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tORDER\tSTEPS\tFINAL y0\tENERGY DRIFT\tTIME")

	for _, name := range splitList(methodNames) {
		cfg := base.Clone()
		cfg.Method = name

		exp, err := experiment.Build(cfg)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		res, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		final := res.States[len(res.States)-1]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.6f\t%.2e\t%v\n",
			name, exp.Method.Order(), res.StepsTaken, final[0], res.EnergyDrift,
			elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func orderReport(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}
	// The fit wants a short horizon; the run default is far too long.
	if !cmd.Flags().Changed("time") {
		cfg.Duration = 1.0
	}

	sys, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	y0 := initialState(cfg, sys)

	dts, err := parseFloats(dtList)
	if err != nil {
		return fmt.Errorf("bad --dts: %w", err)
	}

	fmt.Printf("convergence order on %s over t=%g..%g\n\n", cfg.System, cfg.T0, cfg.T0+cfg.Duration)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tNOMINAL\tOBSERVED\tR2")

	for _, name := range splitList(methodNames) {
		integ, err := integrators.ByName(name)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		ord, err := analysis.ConvergenceOrder(context.Background(), sys, integ, y0, cfg.T0, cfg.T0+cfg.Duration, dts)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.5f\n", name, integ.Order(), ord.Slope, ord.R2)
	}
	return w.Flush()
}

func stabilityReport(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}
	sys, err := buildSystem(cfg)
	if err != nil {
		return err
	}

	at := systems.DefaultState(sys)
	if atState != "" {
		vals, err := parseFloats(atState)
		if err != nil {
			return fmt.Errorf("bad --at: %w", err)
		}
		at = ode.State(vals)
	}

	sp, err := analysis.LinearStability(sys, atTime, at)
	if err != nil {
		return err
	}

	fmt.Printf("linear stability of %s at %s, t=%g\n\n", cfg.System, formatState(at), atTime)
	for i, ev := range sp.Eigenvalues {
		fmt.Printf("  λ%d = %+.6f %+.6fi  (|λ| = %.6f)\n", i, real(ev), imag(ev), cmplx.Abs(ev))
	}
	fmt.Printf("\nspectral abscissa: %+.6f (%s)\n", sp.Abscissa, sp.Classify())
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(headline.Render(fmt.Sprintf("scenario: %s", sc.Name)))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Printf("system %s, method %s, dt=%g\n\n", sc.System, sc.Method, sc.Dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tDURATION\tPARAMS")
	for _, ph := range sc.Phases {
		paramStr := "-"
		if len(ph.Params) > 0 {
			parts := make([]string, 0, len(ph.Params))
			for _, k := range sortedKeys(ph.Params) {
				parts = append(parts, fmt.Sprintf("%s=%g", k, ph.Params[k]))
			}
			paramStr = strings.Join(parts, " ")
		}
		fmt.Fprintf(w, "%s\t%g\t%s\n", ph.Name, ph.Duration, paramStr)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	res, err := scenario.Run(context.Background(), sc, nil)
	if err != nil {
		return err
	}

	fmt.Printf("\ncompleted %d steps over %g time units\n", res.StepsTaken, sc.TotalDuration())
	fmt.Printf("final: %s\n", formatState(res.States[len(res.States)-1]))
	if res.EnergyDrift > 0 {
		fmt.Printf("energy drift: %.3e\n", res.EnergyDrift)
	}

	if saveRun {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(store.Meta{
			System:   sc.System,
			Method:   sc.Method,
			Dt:       sc.Dt,
			Duration: sc.TotalDuration(),
		}, res)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildRunConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	param := args[1]

	sw := scenario.Sweep{Param: param, From: sweepFrom, To: sweepTo, Steps: sweepSteps}
	points, err := sw.Run(context.Background(), base)
	if err != nil {
		return err
	}

	fmt.Println(headline.Render(fmt.Sprintf("sweep: %s.%s = %g..%g", base.System, param, sweepFrom, sweepTo)))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tFINAL\n", strings.ToUpper(param), strings.ToUpper(sweepMetric))

	series := make([]float64, 0, len(points))
	for _, p := range points {
		value, ok := p.Metrics[sweepMetric]
		if !ok {
			return fmt.Errorf("no metric %q (have: %v)", sweepMetric, sortedKeys(p.Metrics))
		}
		series = append(series, value)
		fmt.Fprintf(w, "%.4f\t%.6g\t%s\n", p.Value, value, formatState(p.Final))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("%s vs %s", sweepMetric, param)),
	))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	mc := scenario.MonteCarlo{Trials: trials, Perturbation: perturb, Bound: bound}
	start := time.Now()
	results, err := mc.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	stable, unstable := scenario.Stats(results)
	fmt.Printf("%d trials of %s over %g time units (perturbation ±%g)\n",
		trials, cfg.System, cfg.Duration, perturb)
	fmt.Printf("stable:   %d (%.1f%%)\n", stable, 100*float64(stable)/float64(trials))
	fmt.Printf("unstable: %d\n", unstable)
	fmt.Printf("elapsed:  %v\n", elapsed.Round(time.Millisecond))
	return nil
}

func benchSystem(cmd *cobra.Command, args []string) error {
	durations := []float64{1.0, 5.0, 10.0}
	steps := []float64{0.001, 0.01, 0.1}

	fmt.Printf("benchmarking %s with %s\n\n", args[0], method)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, h := range steps {
			cfg := config.Default()
			cfg.System = args[0]
			cfg.Method = method
			cfg.Dt = h
			cfg.Duration = dur
			cfg.ValidateState = false

			exp, err := experiment.Build(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := exp.Run(context.Background())
			elapsed := time.Since(start)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%.1f\t%g\t%d\t%v\t%.0f\n",
				dur, h, res.StepsTaken, elapsed.Round(time.Microsecond),
				float64(res.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func formatState(y []float64) string {
	parts := make([]string, len(y))
	for i, v := range y {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
