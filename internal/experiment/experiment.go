package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/homeosim/internal/cell"
	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/control"
	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/kinetics"
	"github.com/san-kum/homeosim/internal/logging"
	"github.com/san-kum/homeosim/internal/neuron"
)

// Experiment is an assembled model ready to run: a neuron with its channels,
// synapses and controllers, an integrator, a stimulus, metrics and a trace.
type Experiment struct {
	cfg         *config.Config
	neuron      *neuron.Neuron
	controllers []*control.IntegralController
	integrator  dynamo.Integrator
	stimulus    dynamo.Stimulus
	simulator   *dynamo.Simulator
	trace       *neuron.Trace
	logger      *slog.Logger
}

type options struct {
	registry   *Registry
	logger     *slog.Logger
	reporter   cell.Reporter
	traceOpts  []neuron.TraceOption
	noTrace    bool
	noMetrics  bool
	stimulus   dynamo.Stimulus
	integrator dynamo.Integrator
}

type Option func(*options)

func WithRegistry(r *Registry) Option { return func(o *options) { o.registry = r } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithReporter(r cell.Reporter) Option { return func(o *options) { o.reporter = r } }

func WithTrace(opts ...neuron.TraceOption) Option {
	return func(o *options) { o.traceOpts = append(o.traceOpts, opts...) }
}

func WithoutTrace() Option { return func(o *options) { o.noTrace = true } }

func WithoutMetrics() Option { return func(o *options) { o.noMetrics = true } }

// WithStimulus overrides the configured stimulus.
func WithStimulus(s dynamo.Stimulus) Option { return func(o *options) { o.stimulus = s } }

func WithIntegrator(i dynamo.Integrator) Option { return func(o *options) { o.integrator = i } }

// Build assembles cfg into a runnable experiment. Configuration errors
// from mechanisms are reported through the reporter before Build returns.
func Build(cfg *config.Config, opts ...Option) (*Experiment, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reporter == nil {
		o.reporter = cell.LogReporter{Logger: o.logger}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg, logger: o.logger}

	cc := cfg.Compartment
	comp := cell.NewCompartment(cc.Name, cc.Area)
	comp.V = cc.V0
	comp.Ca = cc.Ca0
	comp.CaPrev = cc.Ca0
	if cc.CaTarget != nil {
		comp.CaTarget = *cc.CaTarget
	}
	if cc.CalciumTarget != nil {
		ct, err := control.NewCalciumTarget(*cc.CalciumTarget)
		if err != nil {
			return nil, err
		}
		if err := ct.Connect(comp); err != nil {
			return nil, err
		}
	}

	ctrlOpts := []control.Option{control.WithReporter(o.reporter), control.WithLogger(o.logger)}

	for _, chCfg := range cfg.Channels {
		kin, err := kinetics.Lookup(chCfg.Kind)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", chCfg.Name, err)
		}
		ch := cell.NewConductance(chCfg.Name, kin, chCfg.Gbar, chCfg.E, chCfg.M, chCfg.H)
		ch.Q = kinetics.Q10{G: chCfg.Q10.G, TauM: chCfg.Q10.TauM, TauH: chCfg.Q10.TauH}
		comp.AddConductance(ch)

		if chCfg.Controller != nil {
			if err := e.attach(ch, chCfg.Controller, ctrlOpts); err != nil {
				return nil, err
			}
		}
	}

	for _, synCfg := range cfg.Synapses {
		syn := cell.NewSynapse(synCfg.Name, synCfg.Gmax, synCfg.E)
		syn.Connect(comp)

		if synCfg.Controller != nil {
			if err := e.attach(syn, synCfg.Controller, ctrlOpts); err != nil {
				return nil, err
			}
		}
	}

	e.neuron = neuron.New(comp, neuron.Params{
		C:           cc.Capacitance,
		CaIn:        cc.CaIn,
		CaOut:       cc.CaOut,
		TauCa:       cc.TauCa,
		F:           cc.F,
		Temperature: cfg.Temperature,
	})

	e.integrator = o.integrator
	if e.integrator == nil {
		integ, err := o.registry.GetIntegrator(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		e.integrator = integ
	}

	if err := e.neuron.Assemble(e.integrator.Order()); err != nil {
		return nil, err
	}

	e.stimulus = o.stimulus
	if e.stimulus == nil {
		stim, err := o.registry.GetStimulus(cfg.Stimulus)
		if err != nil {
			return nil, err
		}
		e.stimulus = stim
	}

	e.simulator = dynamo.New(e.neuron, e.integrator, e.stimulus)
	if !o.noMetrics {
		for _, m := range o.registry.DefaultMetrics(cfg) {
			e.simulator.AddMetric(m)
		}
	}
	if !o.noTrace {
		e.trace = neuron.NewTrace(e.neuron, o.traceOpts...)
		e.simulator.AddObserver(e.trace)
	}
	if o.logger.Enabled(context.Background(), logging.LevelTrace) {
		e.simulator.AddObserver(&stepLogger{e: e, every: int(1 / cfg.Dt)})
	}

	o.logger.Debug("model assembled",
		"compartment", comp.Name,
		"channels", len(comp.Conductances()),
		"synapses", len(comp.Synapses()),
		"controllers", len(e.controllers),
		"integrator", cfg.Integrator)
	return e, nil
}

func (e *Experiment) attach(t cell.Target, cc *config.ControllerConfig, opts []control.Option) error {
	ic, err := control.NewIntegralController(cc.TauM, cc.TauG, cc.M, opts...)
	if err != nil {
		return err
	}
	if err := ic.Connect(t); err != nil {
		return err
	}
	e.controllers = append(e.controllers, ic)
	return nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Neuron() *neuron.Neuron { return e.neuron }

func (e *Experiment) Controllers() []*control.IntegralController { return e.controllers }

// Trace is nil when built WithoutTrace.
func (e *Experiment) Trace() *neuron.Trace { return e.trace }

func (e *Experiment) Stimulus() dynamo.Stimulus { return e.stimulus }

func (e *Experiment) SimConfig() dynamo.Config {
	return dynamo.Config{Dt: e.cfg.Dt, Duration: e.cfg.Duration, ValidateState: true}
}

func (e *Experiment) AddObserver(o dynamo.Observer) { e.simulator.AddObserver(o) }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	result, err := e.simulator.Run(ctx, e.neuron.InitialState(), e.SimConfig())
	if err != nil {
		return result, err
	}
	if e.trace != nil && e.trace.Err() != nil {
		return result, fmt.Errorf("trace sink: %w", e.trace.Err())
	}
	for _, serr := range result.Errors {
		e.logger.Warn("simulation stopped early", "err", serr)
	}
	return result, nil
}

// Start returns a session for frame-by-frame stepping.
func (e *Experiment) Start() (*dynamo.Session, error) {
	return e.simulator.Start(e.neuron.InitialState(), e.SimConfig())
}

// Conductances returns the current gbar of every channel and gmax of every
// synapse, keyed by name.
func (e *Experiment) Conductances() map[string]float64 {
	comp := e.neuron.Comp
	out := make(map[string]float64, len(comp.Conductances())+len(comp.Synapses()))
	for _, ch := range comp.Conductances() {
		out[ch.Name] = ch.Gbar
	}
	for _, syn := range comp.Synapses() {
		out[syn.Name] = syn.Gmax
	}
	return out
}

// stepLogger dumps the state at trace level roughly once per simulated ms.
type stepLogger struct {
	e     *Experiment
	every int
	n     int
}

func (s *stepLogger) OnStep(x dynamo.State, u dynamo.Input, t float64) {
	s.n++
	if s.every > 1 && (s.n-1)%s.every != 0 {
		return
	}
	attrs := []any{"t", t, "V", x[neuron.IdxV], "Ca", x[neuron.IdxCa]}
	for _, ic := range s.e.controllers {
		labels := ic.StateLabels()
		attrs = append(attrs, labels[0], ic.State(1), labels[1], ic.State(2))
	}
	s.e.logger.Log(context.Background(), logging.LevelTrace, "step", attrs...)
}
