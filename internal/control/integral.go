package control

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/homeosim/internal/cell"
)

// ControlType is the binding state of an IntegralController.
type ControlType int

const (
	Unset ControlType = iota
	Channel
	Synapse
)

func (t ControlType) String() string {
	switch t {
	case Channel:
		return "channel"
	case Synapse:
		return "synapse"
	default:
		return "unset"
	}
}

// Synapse strengths are kept in nS while the integrator state is in uS.
const (
	synapseToState = 1e-3
	stateToSynapse = 1e3
)

// IntegralController is a two-stage leaky integrator. The calcium error
// drives an mRNA-like variable m, and m drives the density of the bound
// channel (or the strength of the bound synapse).
//
//	tau_m dm/dt = Ca_target - Ca
//	tau_g dg/dt = m - g
type IntegralController struct {
	TauM float64
	TauG float64
	M    float64

	// Target is resolved by Init. NaN disables regulation.
	Target float64

	kind       ControlType
	channel    *cell.Conductance
	synapse    *cell.Synapse
	comp       *cell.Compartment
	containerA float64

	reporter cell.Reporter
	logger   *slog.Logger
}

type Option func(*IntegralController)

// WithReporter sets the hook that receives configuration errors.
func WithReporter(r cell.Reporter) Option {
	return func(ic *IntegralController) { ic.reporter = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(ic *IntegralController) { ic.logger = l }
}

// NewIntegralController creates an unbound controller. tauM may be +Inf, in
// which case m never changes.
func NewIntegralController(tauM, tauG, m float64, opts ...Option) (*IntegralController, error) {
	ic := &IntegralController{
		TauM:   tauM,
		TauG:   tauG,
		M:      m,
		Target: math.NaN(),
	}
	for _, opt := range opts {
		opt(ic)
	}
	if ic.logger == nil {
		ic.logger = slog.Default()
	}
	if ic.reporter == nil {
		ic.reporter = cell.LogReporter{Logger: ic.logger}
	}

	if !(tauG > 0) {
		return nil, ic.fail(fmt.Errorf("%w: got %v", ErrInvalidTauG, tauG))
	}
	return ic, nil
}

func (ic *IntegralController) Name() string { return "IntegralController" }

func (ic *IntegralController) Type() ControlType { return ic.kind }

func (ic *IntegralController) fail(err error) error {
	ic.reporter.Report(err)
	return err
}

// Connect binds the controller to a conductance or a synapse and registers
// it with the owning compartment. A controller can be bound exactly once
// and never to a compartment.
func (ic *IntegralController) Connect(t cell.Target) error {
	if ic.kind != Unset {
		return ic.fail(fmt.Errorf("%w to a %s", ErrAlreadyBound, ic.kind))
	}

	switch target := t.(type) {
	case *cell.Conductance:
		comp := target.Container()
		if comp == nil {
			return ic.fail(fmt.Errorf("conductance %s: %w", target.Name, cell.ErrNotAttached))
		}
		ic.channel = target
		ic.comp = comp
		ic.kind = Channel
	case *cell.Synapse:
		comp := target.Post()
		if comp == nil {
			return ic.fail(fmt.Errorf("synapse %s: %w", target.Name, cell.ErrNotAttached))
		}
		ic.synapse = target
		ic.comp = comp
		ic.kind = Synapse
	case *cell.Compartment:
		return ic.fail(fmt.Errorf("%s: %w", ic.Name(), cell.ErrCompartmentTarget))
	default:
		return ic.fail(fmt.Errorf("%s: %w: %T", ic.Name(), cell.ErrUnsupportedTarget, t))
	}

	if !(ic.comp.A > 0) {
		comp := ic.comp
		ic.kind, ic.channel, ic.synapse, ic.comp = Unset, nil, nil, nil
		return ic.fail(fmt.Errorf("%s: compartment %s: %w: got %v", ic.Name(), comp.Name, ErrInvalidArea, comp.A))
	}
	ic.containerA = ic.comp.A
	ic.comp.AddMechanism(ic)
	ic.logger.Debug("controller bound", "compartment", ic.comp.Name, "target", ic.targetName(), "type", ic.kind)
	return nil
}

func (ic *IntegralController) targetName() string {
	switch ic.kind {
	case Channel:
		return ic.channel.Name
	case Synapse:
		return ic.synapse.Name
	}
	return ""
}

// Init resolves the calcium set-point. A CalciumTarget mechanism on the
// owning compartment takes precedence over the compartment's legacy
// CaTarget field. With several providers the last one registered wins.
func (ic *IntegralController) Init() error {
	if ic.kind == Unset {
		return ic.fail(fmt.Errorf("%s: %w", ic.Name(), ErrUnbound))
	}

	found := false
	for _, m := range ic.comp.Mechanisms() {
		if m.Name() == CalciumTargetName {
			ic.Target = m.State(0)
			found = true
		}
	}
	if !found {
		ic.Target = ic.comp.CaTarget
	}

	ic.logger.Debug("controller target resolved",
		"compartment", ic.comp.Name,
		"target", ic.targetName(),
		"ca_target", ic.Target,
		"provider", found)
	return nil
}

// Integrate advances m and the regulated strength by one step of length dt.
// It reads the compartment's CaPrev, never Ca.
func (ic *IntegralController) Integrate(dt float64) error {
	if ic.kind == Unset {
		return ic.fail(fmt.Errorf("%s: %w", ic.Name(), ErrUnbound))
	}
	if math.IsNaN(ic.Target) {
		return nil
	}

	caErr := ic.Target - ic.comp.CaPrev
	ic.M += dt / ic.TauM * caErr
	if ic.M < 0 {
		ic.M = 0
	}

	switch ic.kind {
	case Channel:
		gdot := dt / ic.TauG * (ic.M - ic.channel.Gbar*ic.containerA)
		if next := ic.channel.Gbar + gdot/ic.containerA; next < 0 {
			ic.channel.Gbar = 0
		} else {
			ic.channel.Gbar = next
		}
	case Synapse:
		gdot := dt / ic.TauG * (ic.M - ic.synapse.Gmax*synapseToState)
		if next := ic.synapse.Gmax + gdot*stateToSynapse; next < 0 {
			ic.synapse.Gmax = 0
		} else {
			ic.synapse.Gmax = next
		}
	}
	return nil
}

// CheckSolvers accepts only the single-step explicit solver.
func (ic *IntegralController) CheckSolvers(order int) error {
	if order != 0 {
		return ic.fail(fmt.Errorf("%s: %w: %d", ic.Name(), ErrUnsupportedSolverOrder, order))
	}
	return nil
}

// Strength returns the bound target's gbar or gmax, NaN when unbound.
func (ic *IntegralController) Strength() float64 {
	switch ic.kind {
	case Channel:
		return ic.channel.Gbar
	case Synapse:
		return ic.synapse.Gmax
	}
	return math.NaN()
}

// State returns m for idx 1 and the regulated strength for idx 2.
func (ic *IntegralController) State(idx int) float64 {
	switch idx {
	case 1:
		return ic.M
	case 2:
		return ic.Strength()
	}
	return math.NaN()
}

func (ic *IntegralController) FullStateSize() int { return 2 }

func (ic *IntegralController) FullState(buf []float64, idx int) int {
	buf[idx] = ic.M
	buf[idx+1] = ic.Strength()
	return idx + 2
}

// StateLabels names the FullState columns after the regulated target.
func (ic *IntegralController) StateLabels() []string {
	name := ic.targetName()
	if name == "" {
		name = "unbound"
	}
	return []string{"m_" + name, "ctrl_" + name}
}

func (ic *IntegralController) GetParams() map[string]float64 {
	return map[string]float64{
		"tau_m": ic.TauM,
		"tau_g": ic.TauG,
		"m":     ic.M,
	}
}

func (ic *IntegralController) SetParam(name string, value float64) error {
	switch name {
	case "tau_m":
		ic.TauM = value
	case "tau_g":
		if !(value > 0) {
			return fmt.Errorf("%w: got %v", ErrInvalidTauG, value)
		}
		ic.TauG = value
	case "m":
		if value < 0 {
			value = 0
		}
		ic.M = value
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return nil
}
