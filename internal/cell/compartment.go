package cell

import (
	"fmt"
	"math"
)

// Compartment is an isopotential patch of membrane.
type Compartment struct {
	Name string

	// A is the membrane area in mm^2.
	A float64

	V  float64 // mV
	Ca float64 // uM

	// CaPrev is the calcium concentration at the start of the current
	// step. Mechanisms read this value, never Ca.
	CaPrev float64

	// CaTarget is the legacy per-compartment calcium set-point, used when no
	// CalciumTarget mechanism is registered. NaN disables regulation.
	CaTarget float64

	conductances []*Conductance
	synapses     []*Synapse
	mechanisms   []Mechanism
}

func NewCompartment(name string, area float64) *Compartment {
	return &Compartment{
		Name:     name,
		A:        area,
		CaTarget: math.NaN(),
	}
}

// AddConductance connects ch to c and appends it to the channel list.
// Adding the same channel twice is a no-op.
func (c *Compartment) AddConductance(ch *Conductance) {
	for _, existing := range c.conductances {
		if existing == ch {
			return
		}
	}
	ch.Connect(c)
	c.conductances = append(c.conductances, ch)
}

func (c *Compartment) AddMechanism(m Mechanism) {
	c.mechanisms = append(c.mechanisms, m)
}

func (c *Compartment) Conductances() []*Conductance { return c.conductances }
func (c *Compartment) Synapses() []*Synapse         { return c.synapses }

// Mechanisms returns the registered mechanisms in registration order.
func (c *Compartment) Mechanisms() []Mechanism { return c.mechanisms }

func (c *Compartment) addSynapse(s *Synapse) {
	for _, existing := range c.synapses {
		if existing == s {
			return
		}
	}
	c.synapses = append(c.synapses, s)
}

// IntegrateConductances advances every channel at the compartment's current
// V and Ca.
func (c *Compartment) IntegrateConductances(dt, deltaTemp float64) {
	for _, ch := range c.conductances {
		ch.Integrate(c.V, c.Ca, dt, deltaTemp)
	}
}

// IntegrateMechanisms runs one step of every mechanism, stopping at the
// first error.
func (c *Compartment) IntegrateMechanisms(dt float64) error {
	for _, m := range c.mechanisms {
		if err := m.Integrate(dt); err != nil {
			return fmt.Errorf("%s: %s: %w", c.Name, m.Name(), err)
		}
	}
	return nil
}

func (c *Compartment) InitMechanisms() error {
	for _, m := range c.mechanisms {
		if err := m.Init(); err != nil {
			return fmt.Errorf("%s: %s: %w", c.Name, m.Name(), err)
		}
	}
	return nil
}

func (c *Compartment) CheckSolvers(order int) error {
	for _, m := range c.mechanisms {
		if err := m.CheckSolvers(order); err != nil {
			return fmt.Errorf("%s: %s: %w", c.Name, m.Name(), err)
		}
	}
	return nil
}
