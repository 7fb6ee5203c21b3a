package neuron

import (
	"fmt"
	"math"

	"github.com/san-kum/homeosim/internal/cell"
	"github.com/san-kum/homeosim/internal/dynamo"
)

const (
	IdxV = iota
	IdxCa
)

// Neuron is a single isopotential compartment with its channels and
// mechanisms.
type Neuron struct {
	Comp   *cell.Compartment
	Params Params
}

func New(comp *cell.Compartment, p Params) *Neuron {
	return &Neuron{Comp: comp, Params: p}
}

func (n *Neuron) StateDim() int { return 2 }

// InputDim is 1: the injected current in nA.
func (n *Neuron) InputDim() int { return 1 }

// InitialState reads V and Ca from the compartment.
func (n *Neuron) InitialState() dynamo.State {
	return dynamo.State{n.Comp.V, n.Comp.Ca}
}

// Assemble finishes model construction for a solver of the given order:
// it validates parameters, checks every mechanism supports the solver and
// lets them resolve their targets. It must run before the first step.
func (n *Neuron) Assemble(order int) error {
	if err := n.Params.Validate(); err != nil {
		return err
	}
	if n.Comp.A <= 0 {
		return fmt.Errorf("%w: compartment %s: area must be positive", dynamo.ErrInvalidConfig, n.Comp.Name)
	}
	if err := n.Comp.CheckSolvers(order); err != nil {
		return err
	}
	return n.Comp.InitMechanisms()
}

func (n *Neuron) Prepare(x dynamo.State, t, dt float64) error {
	c := n.Comp
	c.V = x[IdxV]
	c.Ca = x[IdxCa]
	c.CaPrev = c.Ca

	eCa := n.Params.Nernst(c.Ca)
	for _, ch := range c.Conductances() {
		if ch.CarriesCalcium() {
			ch.E = eCa
		}
	}

	c.IntegrateConductances(dt, n.Params.DeltaTemp())
	return c.IntegrateMechanisms(dt)
}

func (n *Neuron) Derive(x dynamo.State, u dynamo.Input, t float64) dynamo.State {
	v, ca := x[IdxV], x[IdxCa]
	p := n.Params
	c := n.Comp

	var iIon, iCa float64
	for _, ch := range c.Conductances() {
		i := ch.Current(v)
		iIon += i
		if ch.CarriesCalcium() {
			iCa += i
		}
	}

	iExt := 0.0
	if len(u) > 0 {
		iExt = u[0]
	}

	dv := (-iIon + iExt/c.A) / p.C
	dca := (-p.F*c.A*iCa - ca + p.CaIn) / p.TauCa
	return dynamo.State{dv, dca}
}

// Relaxation writes both equations in relaxation form for the exponential
// Euler solver. With no open conductance the voltage has no steady state and
// its tau is +Inf.
func (n *Neuron) Relaxation(x dynamo.State, u dynamo.Input, t float64) (xInf, tau dynamo.State) {
	v := x[IdxV]
	p := n.Params
	c := n.Comp

	var sumG, sumGE, iCa float64
	for _, ch := range c.Conductances() {
		sumG += ch.G
		sumGE += ch.G * ch.E
		if ch.CarriesCalcium() {
			iCa += ch.Current(v)
		}
	}

	iExt := 0.0
	if len(u) > 0 {
		iExt = u[0]
	}

	xInf = dynamo.State{math.NaN(), p.CaIn - p.F*c.A*iCa}
	tau = dynamo.State{math.Inf(1), p.TauCa}
	if sumG > 0 {
		xInf[IdxV] = (sumGE + iExt/c.A) / sumG
		tau[IdxV] = p.C / sumG
	}
	return xInf, tau
}

// Currents returns the membrane current density of every conductance at v,
// in nA/mm^2, keyed by channel name.
func (n *Neuron) Currents(v float64) map[string]float64 {
	out := make(map[string]float64, len(n.Comp.Conductances()))
	for _, ch := range n.Comp.Conductances() {
		out[ch.Name] = ch.Current(v)
	}
	return out
}
