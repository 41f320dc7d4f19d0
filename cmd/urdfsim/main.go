package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/urdfsim/internal/config"
	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/experiment"
	"github.com/san-kum/urdfsim/internal/logging"
	"github.com/san-kum/urdfsim/internal/plot"
	"github.com/san-kum/urdfsim/internal/storage"
	"github.com/san-kum/urdfsim/internal/urdf"
	"github.com/san-kum/urdfsim/internal/viz"
)

var (
	logger zerolog.Logger

	// run settings
	integrator     string
	start          float64
	end            float64
	samples        int
	initialState   string
	rtol           float64
	atol           float64
	maxSteps       int
	stepsPerSample int
	configFile     string
	preset         string
	strict         bool
	timeout        time.Duration
	noSave         bool
	progress       bool
	theme          string

	// batch
	initialStates []string
	workers       int

	// output
	asJSON    bool
	format    string
	outPath   string
	maxPlots  int
	plotDPI   int
	plotWidth float64
)

// main executes the urdfsim command tree, exiting with status 1 on error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers the urdfsim commands and their flags.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "urdfsim",
		Short:         "vehicle simulation from URDF documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.UseUTC()
			logger = logging.New(os.Stderr, viper.GetString("log_level"), os.Getenv("NO_COLOR") == "")
		},
	}

	rootCmd.PersistentFlags().String("data", ".urdfsim", "data directory")
	rootCmd.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR, TRACE)")
	initConfig(rootCmd)

	parseCmd := &cobra.Command{
		Use:   "parse [document]",
		Short: "print the document tree",
		Args:  cobra.ExactArgs(1),
		RunE:  parseDocument,
	}
	parseCmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	parseCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file, or into a directory as <document>.<format>")

	paramsCmd := &cobra.Command{
		Use:   "params [document]",
		Short: "print extracted vehicle parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  showParams,
	}
	paramsCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	paramsCmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed elements")
	paramsCmd.Flags().StringVar(&theme, "theme", viz.DefaultTheme.Name, "color theme")

	runCmd := &cobra.Command{
		Use:   "run [document]",
		Short: "simulate the vehicle described by a document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&theme, "theme", viz.DefaultTheme.Name, "color theme")

	batchCmd := &cobra.Command{
		Use:   "batch [document]",
		Short: "simulate several initial states concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	addRunFlags(batchCmd)
	batchCmd.Flags().StringArrayVar(&initialStates, "state", nil, "initial state, repeatable")
	batchCmd.Flags().IntVar(&workers, "workers", 4, "concurrent runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxPlots, "vars", 6, "number of state components to plot")

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "render run plots to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().StringVarP(&outPath, "out", "o", "", "output directory (default: the run directory)")
	pngCmd.Flags().IntVar(&plotDPI, "dpi", plot.DefaultSize.DPI, "resolution")
	pngCmd.Flags().Float64Var(&plotWidth, "width", plot.DefaultSize.WidthIn, "width in inches")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	rootCmd.AddCommand(parseCmd, paramsCmd, runCmd, batchCmd, listCmd, plotCmd, pngCmd, exportCSVCmd, exportJSONCmd, presetsCmd)
	return rootCmd
}

// initConfig binds URDFSIM_LOG_LEVEL and URDFSIM_DATA, with flags taking
// precedence over the environment.
func initConfig(rootCmd *cobra.Command) {
	viper.SetEnvPrefix("URDFSIM")
	viper.AutomaticEnv()

	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("data", ".urdfsim")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
}

func dataDir() string {
	return viper.GetString("data")
}

func addRunFlags(cmd *cobra.Command) {
	integrators := experiment.NewRegistry().ListIntegrators()
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, fmt.Sprintf("integrator (%s)", strings.Join(integrators, ", ")))
	cmd.Flags().Float64Var(&start, "start", config.DefaultStart, "start time")
	cmd.Flags().Float64Var(&end, "end", config.DefaultEnd, "end time")
	cmd.Flags().IntVar(&samples, "samples", dynamo.DefaultSamples, "number of evenly spaced samples")
	cmd.Flags().StringVar(&initialState, "init", config.DefaultInitialState, "initial state x,y,z,vx,vy,vz,wx,wy,wz")
	cmd.Flags().Float64Var(&rtol, "rtol", config.DefaultRTol, "relative tolerance")
	cmd.Flags().Float64Var(&atol, "atol", config.DefaultATol, "absolute tolerance")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step attempt budget")
	cmd.Flags().IntVar(&stepsPerSample, "substeps", config.DefaultSubsteps, "fixed steps per sample interval")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed elements")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the integration after this long")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&progress, "progress", false, "log progress every tenth of the time span")
}

// buildConfig layers preset, config file and explicitly set flags, in that
// order. The document argument, when given, wins over the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("end") {
		cfg.End = end
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("init") {
		cfg.InitialState = initialState
	}
	if flags.Changed("rtol") {
		cfg.RTol = rtol
	}
	if flags.Changed("atol") {
		cfg.ATol = atol
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("substeps") {
		cfg.StepsPerSample = stepsPerSample
	}
	if len(args) > 0 {
		cfg.Document = args[0]
	}

	if cfg.Document == "" {
		return nil, fmt.Errorf("no document given")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runContext is cancelled on interrupt and, when --timeout is set, after
// the timeout.
func runContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func parseDocument(cmd *cobra.Command, args []string) error {
	tree, err := urdf.ParseFile(args[0])
	if err != nil {
		return err
	}

	if outPath != "" {
		path := outPath
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, urdf.TreeFileName(args[0], format))
		}
		if err := urdf.SaveFile(path, tree); err != nil {
			return err
		}
		logger.Info().Str("path", path).Int("nodes", tree.Count()).Msg("tree written")
		return nil
	}

	switch format {
	case "json":
		return urdf.WriteJSON(cmd.OutOrStdout(), tree)
	case "yaml", "yml":
		return urdf.WriteYAML(cmd.OutOrStdout(), tree)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func showParams(cmd *cobra.Command, args []string) error {
	exp := experiment.New(config.DefaultConfig(),
		experiment.WithLogger(logger),
		experiment.WithStrict(strict),
	)
	if err := exp.LoadFile(args[0]); err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "    ")
		return enc.Encode(exp.Params().Summary())
	}

	fmt.Fprintln(cmd.OutOrStdout(), viz.RenderParameters(exp.Params(), viz.GetTheme(theme)))
	return nil
}

func newExperiment(cfg *config.Config) *experiment.Experiment {
	opts := []experiment.Option{
		experiment.WithLogger(logger),
		experiment.WithStrict(strict),
	}
	if progress {
		opts = append(opts, experiment.WithProgress(10))
	}
	return experiment.New(cfg, opts...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := newExperiment(cfg)
	if err := exp.LoadFile(cfg.Document); err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()

	began := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info().
		Str("document", cfg.Document).
		Str("integrator", cfg.Integrator).
		Int("steps", result.StepsTaken).
		Dur("elapsed", time.Since(began)).
		Msg("simulation complete")

	out := cmd.OutOrStdout()
	t := viz.GetTheme(theme)
	fmt.Fprintln(out, viz.Join(viz.RenderParameters(exp.Params(), t), viz.RenderRun(result, t)))

	if noSave {
		return nil
	}
	st := storage.New(dataDir())
	runID, err := st.Save(storage.NewRunMetadata(cfg, exp.Params(), result), result)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Fprintf(out, "saved run: %s\n", runID)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	var initial []dynamo.State
	for _, s := range initialStates {
		x, err := config.ParseInitialState(s)
		if err != nil {
			return err
		}
		initial = append(initial, x)
	}
	if len(initial) == 0 {
		x, err := cfg.GetInitState()
		if err != nil {
			return err
		}
		initial = append(initial, x)
	}

	exp := newExperiment(cfg)
	if err := exp.LoadFile(cfg.Document); err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()

	began := time.Now()
	results, err := exp.RunEnsemble(ctx, initial, workers)
	if err != nil {
		return err
	}
	logger.Info().
		Int("runs", len(results)).
		Int("workers", workers).
		Dur("elapsed", time.Since(began)).
		Msg("batch complete")

	st := storage.New(dataDir())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tINITIAL\tFINAL POSITION\tSTEPS\tMAX SPEED\tRUN")

	for i, result := range results {
		runID := "-"
		if !noSave {
			meta := storage.NewRunMetadata(cfg, exp.Params(), result)
			meta.InitialState = config.FormatState(initial[i])
			runID, err = st.Save(meta, result)
			if err != nil {
				return fmt.Errorf("failed to save run %d: %w", i, err)
			}
		}

		final := result.Final()
		fmt.Fprintf(w, "%d\t%s\t[%.4g, %.4g, %.4g]\t%d\t%.4g\t%s\n",
			i,
			config.FormatState(initial[i]),
			final[0], final[1], final[2],
			result.StepsTaken,
			result.Metrics["max_speed"],
			runID,
		)
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOCUMENT\tTIME\tSPAN\tSAMPLES\tINTEG\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g-%gs\t%d\t%s\t%d\n",
			run.ID,
			filepath.Base(run.Document),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Start, run.End,
			run.Samples,
			run.Integrator,
			run.StepsTaken,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	result, meta, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	if result.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "document: %s\n", meta.Document)
	fmt.Fprintf(out, "samples: %d\n\n", result.Len())

	numVars := len(result.States[0])
	if maxPlots > 0 && numVars > maxPlots {
		numVars = maxPlots
	}

	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := result.Component(varIdx)

		caption := fmt.Sprintf("x%d vs time", varIdx)
		if varIdx < len(storage.StateLabels) {
			caption = fmt.Sprintf("%s vs time", storage.StateLabels[varIdx])
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	return nil
}

func pngRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir())
	result, _, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	dir := outPath
	if dir == "" {
		dir = filepath.Join(st.Dir(), runID)
	}

	size := plot.DefaultSize
	size.DPI = plotDPI
	if plotWidth > 0 {
		size.HeightIn = size.HeightIn * plotWidth / size.WidthIn
		size.WidthIn = plotWidth
	}

	files, err := plot.SaveAll(result, dir, size)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	result, _, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if result.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteCSV(cmd.OutOrStdout(), result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir())
	result, meta, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(cmd.OutOrStdout(), *meta, result)
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
	}
	return w.Flush()
}
