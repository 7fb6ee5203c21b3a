package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/experiment"
	"github.com/san-kum/homeosim/internal/kinetics"
	"github.com/san-kum/homeosim/internal/logging"
	"github.com/san-kum/homeosim/internal/storage"
	"github.com/san-kum/homeosim/internal/tui"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const (
	envDataDir  = "HOMEOSIM_DATA"
	envLogLevel = "HOMEOSIM_LOG_LEVEL"
)

var (
	dataDir  string
	logLevel string
	logger   *slog.Logger

	configFile  string
	dt          float64
	duration    float64
	integrator  string
	temperature float64
	stimKind    string
	stimAmp     float64
	live        bool
	frameRate   int
	sqlitePath  string
	decimate    int
	noSave      bool

	columnNames []string
	outFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "homeosim",
		Short:         "homeostatic conductance regulation in model neurons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine.
			_ = godotenv.Load()
			if v := os.Getenv(envDataDir); v != "" && !cmd.Flags().Changed("data") {
				dataDir = v
			}
			if v := os.Getenv(envLogLevel); v != "" && !cmd.Flags().Changed("log-level") {
				logLevel = v
			}
			logger = logging.NewLogger(logLevel, os.Stderr)
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".homeosim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation from a preset or config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (ms)")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (ms)")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	runCmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "temperature (C)")
	runCmd.Flags().StringVar(&stimKind, "stimulus", "none", "stimulus kind")
	runCmd.Flags().Float64Var(&stimAmp, "amp", 0, "stimulus amplitude (nA)")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the voltage trace while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 15, "live view frame rate")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also stream the trace into this sqlite file")
	runCmd.Flags().IntVar(&decimate, "decimate", 1, "record one trace row every n steps")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot trace columns of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columnNames, "column", []string{"V", "Ca"}, "columns to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-12s %d channels, %d synapses, controllers: %v\n",
					p, len(cfg.Channels), len(cfg.Synapses), cfg.HasControllers())
			}
			return nil
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [preset]",
		Short: "write a preset as a yaml config",
		Args:  cobra.ExactArgs(1),
		RunE:  dumpPreset,
	}
	dumpCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	validateCmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "validate a config file and assemble its model",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}

	kineticsCmd := &cobra.Command{
		Use:   "kinetics",
		Short: "list channel kinetics",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range kinetics.Names() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list integrators and stimuli",
		Run: func(cmd *cobra.Command, args []string) {
			r := experiment.NewRegistry()
			fmt.Printf("integrators: %s\n", strings.Join(r.ListIntegrators(), ", "))
			fmt.Printf("stimuli:     %s\n", strings.Join(r.ListStimuli(), ", "))
		},
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "interactive monitor with current injection",
		RunE:  runMonitor,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, presetsCmd, dumpCmd,
		validateCmd, kineticsCmd, integratorsCmd, monitorCmd, newSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tINTEG\tTARGET")

	for _, run := range runs {
		target := "-"
		if run.CaTarget != nil {
			target = fmt.Sprintf("%g", *run.CaTarget)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fms\t%gms\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			target,
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

	columns, rows, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(rows))

	for _, name := range columnNames {
		data, err := storage.Column(columns, rows, name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(downsample(data, 400),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// downsample keeps at most n evenly spaced points.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	stride := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*stride)]
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	columns, rows, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.ExportJSON(os.Stdout, *meta, columns, rows)
	}
	if err := storage.ExportJSONFile(outFile, *meta, columns, rows); err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", len(rows), outFile)
	return nil
}

func dumpPreset(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if outFile == "" {
		return config.Write(os.Stdout, cfg)
	}
	return config.Save(outFile, cfg)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	exp, err := experiment.Build(cfg, experiment.WithLogger(logger), experiment.WithoutTrace())
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d channels, %d synapses, %d controllers)\n", args[0],
		len(exp.Neuron().Comp.Conductances()), len(exp.Neuron().Comp.Synapses()), len(exp.Controllers()))
	return nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	load := func(name string) (*config.Config, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", name)
		}
		return cfg, nil
	}
	// The TUI owns the terminal, so only errors are logged.
	return tui.RunMonitor(config.ListPresets(), load, logging.NewLogger("error", os.Stderr))
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
