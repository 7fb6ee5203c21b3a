package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/sweep"
)

var (
	sweepParams  []string
	sweepWorkers int
	sweepMetric  string
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a preset over a parameter grid",
		Long: "Runs one simulation per grid point. Parameters are given as\n" +
			"name=v1,v2,... or name=start:stop:n. Names: temperature, ca_target,\n" +
			"amp, tau_g, duration, gbar.<channel>.",
		Args: cobra.ExactArgs(1),
		RunE: runSweep,
	}
	cmd.Flags().StringArrayVarP(&sweepParams, "param", "p", nil, "swept parameter (repeatable)")
	cmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	cmd.Flags().StringVar(&sweepMetric, "metric", "calcium_error", "metric to minimise")
	cmd.Flags().Float64Var(&duration, "time", 0, "override duration (ms)")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(args[0])
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if cmd.Flags().Changed("time") {
		base.Duration = duration
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	params := make([]sweep.Param, 0, len(sweepParams))
	for _, s := range sweepParams {
		p, err := sweep.ParseParam(s)
		if err != nil {
			return err
		}
		params = append(params, p)
	}
	points := sweep.Grid(params)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("sweeping", "preset", args[0], "points", len(points))
	runner := &sweep.Runner{Workers: sweepWorkers, Logger: logger}
	outcomes := runner.Run(ctx, base, points)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "POINT\t%s\tSPIKE_RATE\tMEAN_CA\n", sweepMetric)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror: %v\t\t\n", o.Point, o.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.2f\t%.4f\n", o.Point,
			o.Metrics[sweepMetric], o.Metrics["spike_rate"], o.Metrics["mean_calcium"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := sweep.Best(outcomes, sweepMetric); ok {
		fmt.Println()
		fmt.Println(headerStyle.Render("best: ") + valueStyle.Render(best.Point.String()))
	}
	if failed == len(outcomes) {
		return fmt.Errorf("all %d sweep points failed", failed)
	}
	return nil
}
