package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/cosim/internal/config"
	"github.com/san-kum/cosim/internal/coupling"
	"github.com/san-kum/cosim/internal/icoco"
	"github.com/san-kum/cosim/internal/integrators"
	"github.com/san-kum/cosim/internal/metrics"
	"github.com/san-kum/cosim/internal/models"
	"github.com/san-kum/cosim/internal/storage"
	"github.com/san-kum/cosim/internal/trace"
	"github.com/san-kum/cosim/internal/viz"
)

const version = "0.1.0"

var (
	dataDir  string
	verbose  bool
	preset   string
	dt       float64
	duration float64
	scheme   string
	theme    string

	traceFile string
	peaks     []string
	means     []string
	drifts    []string
	stability float64

	series []string
	width  int
	height int
	output string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cosim",
		Short:         "couple ICoCo problems on a common clock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
			viz.SetTheme(theme)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cosim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeTerminal.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a coupled scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&traceFile, "trace", "", "write the ICoCo call trace to this file")
	runCmd.Flags().StringSliceVar(&peaks, "peak", nil, "track the peak of these series (problem.output)")
	runCmd.Flags().StringSliceVar(&means, "mean", nil, "track the mean of these series")
	runCmd.Flags().StringSliceVar(&drifts, "drift", nil, "track the relative drift of these series")
	runCmd.Flags().Float64Var(&stability, "stability", 0, "track the fraction of steps with every value within this bound")

	liveCmd := &cobra.Command{
		Use:   "live [scenario.yaml]",
		Short: "run a coupled scenario with a live view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "summarize a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <run-id>",
		Short: "plot the series of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&series, "series", nil, "series to plot (default all)")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 10, "plot height")

	pngCmd := &cobra.Command{
		Use:   "export-png <run-id>",
		Short: "draw the series of a stored run to an image",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	pngCmd.Flags().StringSliceVar(&series, "series", nil, "series to draw (default all)")
	pngCmd.Flags().StringVarP(&output, "output", "o", "", "image path (default <run-id>.png)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and integrators",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	validateCmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "check a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateScenario,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cosim %s (ICoCo %s)\n", version, icoco.Version)
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, showCmd, plotCmd, pngCmd,
		presetsCmd, modelsCmd, validateCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "coupling time step")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&scheme, "scheme", config.DefaultScheme, "coupling scheme ("+strings.Join(coupling.Schemes(), ", ")+")")
}

// loadScenario reads the scenario named by args or --preset and applies
// the flags the user set explicitly. It returns the directory relative
// data files resolve against.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var (
		cfg     *config.Config
		baseDir string
	)
	switch {
	case len(args) == 1 && preset != "":
		return nil, "", errors.New("give either a scenario file or --preset, not both")
	case len(args) == 1:
		var err error
		if cfg, err = config.Load(args[0]); err != nil {
			return nil, "", err
		}
		baseDir = filepath.Dir(args[0])
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("scheme") {
		cfg.Scheme = scheme
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, baseDir, nil
}

// openCheckpoints opens the restore point database of cfg, in the data
// directory unless the scenario names one.
func openCheckpoints(cfg *config.Config, store *storage.Store, baseDir string) (*storage.Checkpoints, error) {
	path := store.CheckpointPath()
	if cfg.Checkpoints != "" {
		path = cfg.Checkpoints
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
	}
	return storage.OpenCheckpoints(path)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, baseDir, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	cps, err := openCheckpoints(cfg, store, baseDir)
	if err != nil {
		return err
	}
	defer cps.Close()

	rec := trace.NewRecorder()
	opts := coupling.BuildOptions{BaseDir: baseDir, Checkpoints: cps, Logger: slog.Default()}
	if traceFile != "" {
		opts.Observers = append(opts.Observers, rec)
	}
	sup, err := coupling.Build(cfg, opts)
	if err != nil {
		return err
	}
	for _, name := range peaks {
		sup.AddMetric(metrics.NewPeak(name))
	}
	for _, name := range means {
		sup.AddMetric(metrics.NewMean(name))
	}
	for _, name := range drifts {
		sup.AddMetric(metrics.NewDrift(name))
	}
	if stability > 0 {
		sup.AddMetric(metrics.NewStability(stability))
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s: %d problems, %s scheme, dt=%g, t=%g\n",
		cfg.Name, len(cfg.Problems), cfg.Scheme, cfg.Dt, cfg.Duration)
	res, runErr := sup.Run(ctx)

	if traceFile != "" {
		if err := os.WriteFile(traceFile, []byte(rec.Text()), 0644); err != nil {
			slog.Warn("failed to write trace", "path", traceFile, "error", err)
		}
	}
	if res == nil {
		return runErr
	}

	id, err := save(store, cfg, res)
	if err != nil {
		return errors.Join(runErr, err)
	}
	meta, err := store.Load(id)
	if err != nil {
		return errors.Join(runErr, err)
	}
	fmt.Println(viz.Summary(*meta))
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, baseDir, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	cps, err := openCheckpoints(cfg, store, baseDir)
	if err != nil {
		return err
	}
	defer cps.Close()

	sup, err := coupling.Build(cfg, coupling.BuildOptions{BaseDir: baseDir, Checkpoints: cps, Logger: slog.Default()})
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	res, runErr := viz.RunLive(ctx, sup, cfg.Name)
	if res == nil || errors.Is(runErr, context.Canceled) {
		return runErr
	}
	id, err := save(store, cfg, res)
	if err != nil {
		return errors.Join(runErr, err)
	}
	fmt.Printf("saved run %s\n", id)
	return runErr
}

func save(store *storage.Store, cfg *config.Config, res *coupling.Result) (string, error) {
	names := make([]string, len(cfg.Problems))
	for i, p := range cfg.Problems {
		names[i] = p.Name
	}
	meta := storage.RunMetadata{
		Scenario: cfg.Name,
		Scheme:   cfg.Scheme,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		EndTime:  res.EndTime,
		Problems: names,
		Stats:    res.Stats.Map(),
		Metrics:  res.Metrics,
	}
	return store.Save(meta, storage.History{Times: res.Times, Series: res.Values})
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	fmt.Print(viz.RunTable(runs))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return fmt.Errorf("load run %s: %w", args[0], err)
	}
	fmt.Println(viz.Summary(*meta))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	h, err := storage.New(dataDir).LoadHistory(args[0])
	if err != nil {
		return fmt.Errorf("load run %s: %w", args[0], err)
	}
	out, err := viz.PlotSeries(h, series, width, height)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("load run %s: %w", args[0], err)
	}
	h, err := store.LoadHistory(args[0])
	if err != nil {
		return fmt.Errorf("load run %s: %w", args[0], err)
	}
	path := output
	if path == "" {
		path = args[0] + ".png"
	}
	if err := viz.ExportPNG(h, series, meta.Scenario, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCHEME\tPROBLEMS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		problems := make([]string, len(cfg.Problems))
		for i, p := range cfg.Problems {
			problems[i] = p.Name + ":" + p.Model
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, cfg.Scheme, strings.Join(problems, ","), cfg.Description)
	}
	return w.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tINPUTS\tOUTPUTS\tPARAMS")
	for _, name := range models.Names() {
		m, err := models.New(name)
		if err != nil {
			return err
		}
		var ins, outs []string
		for _, p := range m.Inputs() {
			ins = append(ins, p.Name)
		}
		for _, p := range m.Outputs() {
			outs = append(outs, p.Name)
		}
		var params []string
		for k, v := range m.GetParams() {
			params = append(params, fmt.Sprintf("%s=%g", k, v))
		}
		slices.Sort(params)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, strings.Join(ins, ","), strings.Join(outs, ","), strings.Join(params, " "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nintegrators: %s\n", strings.Join(integrators.Names(), ", "))
	return nil
}

func validateScenario(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d problems, %d exchanges)\n", args[0], len(cfg.Problems), len(cfg.Exchanges))
	return nil
}
