// Package sweep runs a model over a grid of parameter values on a pool of
// workers, one independent experiment per grid point.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/experiment"
)

var ErrUnknownParam = errors.New("sweep: unknown parameter")

// Param is one swept axis.
type Param struct {
	Name   string
	Values []float64
}

// Point assigns one value to every swept parameter.
type Point map[string]float64

func (p Point) String() string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

type Outcome struct {
	Point        Point
	Metrics      map[string]float64
	Conductances map[string]float64
	Err          error
}

// Grid returns the cartesian product of params, the last axis varying
// fastest.
func Grid(params []Param) []Point {
	points := []Point{{}}
	for _, p := range params {
		next := make([]Point, 0, len(points)*len(p.Values))
		for _, base := range points {
			for _, v := range p.Values {
				pt := make(Point, len(base)+1)
				for k, bv := range base {
					pt[k] = bv
				}
				pt[p.Name] = v
				next = append(next, pt)
			}
		}
		points = next
	}
	return points
}

// Apply writes p into cfg. Recognised names are temperature, ca_target,
// amp, tau_g, duration and gbar.<channel>.
func Apply(cfg *config.Config, p Point) error {
	for name, v := range p {
		switch {
		case name == "temperature":
			cfg.Temperature = v
		case name == "duration":
			cfg.Duration = v
		case name == "ca_target":
			cfg.Compartment.CalciumTarget = config.Float(v)
		case name == "amp":
			cfg.Stimulus.Amp = v
			if cfg.Stimulus.Kind == "" || cfg.Stimulus.Kind == "none" {
				cfg.Stimulus.Kind = "constant"
			}
		case name == "tau_g":
			for i := range cfg.Channels {
				if c := cfg.Channels[i].Controller; c != nil {
					c.TauG = v
				}
			}
			for i := range cfg.Synapses {
				if c := cfg.Synapses[i].Controller; c != nil {
					c.TauG = v
				}
			}
		case strings.HasPrefix(name, "gbar."):
			if err := setGbar(cfg, strings.TrimPrefix(name, "gbar."), v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
	}
	return nil
}

// setGbar also moves a regulated channel's controller onto the new fixed
// point so the swept value is the starting conductance.
func setGbar(cfg *config.Config, channel string, v float64) error {
	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		if ch.Name != channel {
			continue
		}
		ch.Gbar = v
		if ch.Controller != nil {
			ch.Controller.M = v * cfg.Compartment.Area
		}
		return nil
	}
	return fmt.Errorf("%w: no channel %q", ErrUnknownParam, channel)
}

// ParseParam parses "name=v1,v2,..." or "name=start:stop:n" (n evenly
// spaced values, inclusive).
func ParseParam(s string) (Param, error) {
	name, values, ok := strings.Cut(s, "=")
	if !ok || name == "" || values == "" {
		return Param{}, fmt.Errorf("sweep: expected name=values, got %q", s)
	}
	p := Param{Name: name}

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		start, err1 := strconv.ParseFloat(parts[0], 64)
		stop, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Param{}, fmt.Errorf("sweep: bad range %q: %w", values, err)
		}
		if n < 1 {
			return Param{}, fmt.Errorf("sweep: range %q needs at least one point", values)
		}
		if n == 1 {
			p.Values = []float64{start}
			return p, nil
		}
		step := (stop - start) / float64(n-1)
		for i := 0; i < n; i++ {
			p.Values = append(p.Values, start+float64(i)*step)
		}
		return p, nil
	}

	for _, f := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Param{}, fmt.Errorf("sweep: bad value %q: %w", f, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

type Runner struct {
	Workers int
	Logger  *slog.Logger
}

// Run builds and runs one experiment per point, in parallel. Outcomes are
// returned in point order; a failed point carries its error and does not
// stop the others.
func (r *Runner) Run(ctx context.Context, base *config.Config, points []Point) []Outcome {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	outcomes := make([]Outcome, len(points))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = runPoint(ctx, base, points[idx], logger)
			}
		}()
	}

feed:
	for i := range points {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(points); j++ {
				outcomes[j] = Outcome{Point: points[j], Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

func runPoint(ctx context.Context, base *config.Config, p Point, logger *slog.Logger) Outcome {
	out := Outcome{Point: p}
	cfg := base.Clone()
	if err := Apply(cfg, p); err != nil {
		out.Err = err
		return out
	}

	exp, err := experiment.Build(cfg,
		experiment.WithLogger(logger.With("point", p.String())),
		experiment.WithoutTrace())
	if err != nil {
		out.Err = err
		return out
	}
	result, err := exp.Run(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	out.Metrics = result.Metrics
	out.Conductances = exp.Conductances()
	logger.Debug("sweep point done", "point", p.String())
	return out
}

// Best returns the successful outcome with the smallest finite value of
// metric.
func Best(outcomes []Outcome, metric string) (Outcome, bool) {
	best := math.Inf(1)
	var found Outcome
	ok := false
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		v, has := o.Metrics[metric]
		if !has || math.IsNaN(v) {
			continue
		}
		if v < best {
			best, found, ok = v, o, true
		}
	}
	return found, ok
}
