package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/experiment"
	"github.com/san-kum/homeosim/internal/logging"
	"github.com/san-kum/homeosim/internal/neuron"
	"github.com/san-kum/homeosim/internal/storage"
	"github.com/san-kum/homeosim/internal/tui"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(24)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
)

// loadConfig resolves the run configuration: a preset or the default model,
// then a config file, then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.Default()
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

	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("stimulus") {
		cfg.Stimulus.Kind = stimKind
	}
	if flags.Changed("amp") {
		cfg.Stimulus.Amp = stimAmp
		if cfg.Stimulus.Kind == "" || cfg.Stimulus.Kind == "none" {
			cfg.Stimulus.Kind = "constant"
		}
	}
}

// traceColumns assembles the model once without observers to learn the
// trace layout before the sqlite sink is opened.
func traceColumns(cfg *config.Config) ([]string, error) {
	probe, err := experiment.Build(cfg,
		experiment.WithLogger(logging.Discard()),
		experiment.WithoutTrace(),
		experiment.WithoutMetrics())
	if err != nil {
		return nil, err
	}
	return neuron.NewTrace(probe.Neuron()).Columns(), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = "custom"
	}

	st := storage.New(dataDir)
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
	}

	runID := storage.NewRunID(cfg.Name)
	traceOpts := []neuron.TraceOption{neuron.WithDecimation(decimate)}

	if sqlitePath != "" {
		columns, err := traceColumns(cfg)
		if err != nil {
			return err
		}
		sink, err := storage.NewSQLiteWriter(sqlitePath, runID, columns)
		if err != nil {
			return err
		}
		defer sink.Close()
		traceOpts = append(traceOpts, neuron.WithSink(sink))
		if noSave {
			traceOpts = append(traceOpts, neuron.WithoutMemory())
		}
	}

	exp, err := experiment.Build(cfg,
		experiment.WithLogger(logger),
		experiment.WithTrace(traceOpts...))
	if err != nil {
		return err
	}

	var renderer *tui.LiveRenderer
	if live {
		renderer = tui.NewLiveRenderer(os.Stdout, cfg.Name, frameRate)
		exp.AddObserver(renderer)
		renderer.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation", "name", cfg.Name, "duration", cfg.Duration, "dt", cfg.Dt, "integrator", cfg.Integrator)
	start := time.Now()
	result, err := exp.Run(ctx)
	if renderer != nil {
		renderer.Stop()
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	trace := exp.Trace()
	meta := &storage.RunMetadata{
		ID:           runID,
		Name:         cfg.Name,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Integrator:   cfg.Integrator,
		Temperature:  cfg.Temperature,
		Steps:        result.StepsTaken,
		Columns:      trace.Columns(),
		Metrics:      result.Metrics,
		Conductances: exp.Conductances(),
	}
	if target := cfg.Target(); !math.IsNaN(target) {
		meta.CaTarget = config.Float(target)
	}

	if !noSave {
		if _, err := st.Save(meta, trace.Rows()); err != nil {
			return err
		}
	}

	printSummary(meta, elapsed, !noSave)
	return nil
}

func printSummary(meta *storage.RunMetadata, elapsed time.Duration, saved bool) {
	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
	}

	fmt.Println(headerStyle.Render(meta.Name))
	row("completed in", elapsed.Round(time.Millisecond).String())
	if saved {
		row("run id", meta.ID)
	}
	row("steps", fmt.Sprintf("%d", meta.Steps))

	fmt.Println()
	fmt.Println(headerStyle.Render("metrics"))
	for _, name := range sortedNames(meta.Metrics) {
		row(name, fmt.Sprintf("%.6f", meta.Metrics[name]))
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("final conductances"))
	for _, name := range sortedNames(meta.Conductances) {
		row(name, fmt.Sprintf("%.4f", meta.Conductances[name]))
	}
}
