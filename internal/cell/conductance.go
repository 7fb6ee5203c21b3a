package cell

import (
	"github.com/san-kum/homeosim/internal/integrators"
	"github.com/san-kum/homeosim/internal/kinetics"
)

// Conductance is a gated ion channel population. Its gating variables are
// advanced with the exponential approach law using the supplied kinetics.
type Conductance struct {
	Name string

	// Gbar is the maximal conductance density (uS/mm^2). Controllers may
	// write it; it never goes negative.
	Gbar float64

	// E is the reversal potential (mV).
	E float64

	M, H float64

	// G is the instantaneous conductance density computed by Integrate.
	G float64

	Q kinetics.Q10

	kin       kinetics.Kinetics
	container *Compartment
}

// NewConductance creates a channel with initial gates m and h. Variants
// without inactivation keep h at 1 regardless of the value given.
func NewConductance(name string, kin kinetics.Kinetics, gbar, e, m, h float64) *Conductance {
	if name == "" {
		name = kin.Name()
	}
	if _, q := kin.Exponents(); q == 0 {
		h = 1
	}
	ch := &Conductance{
		Name: name,
		Gbar: gbar,
		E:    e,
		M:    m,
		H:    h,
		kin:  kin,
	}
	ch.G = ch.Gbar * ch.gates()
	return ch
}

func (ch *Conductance) Kinetics() kinetics.Kinetics { return ch.kin }

// Connect records the owning compartment. Prefer Compartment.AddConductance,
// which also registers the channel with the compartment.
func (ch *Conductance) Connect(c *Compartment) { ch.container = c }

func (ch *Conductance) Container() *Compartment { return ch.container }

func (ch *Conductance) CarriesCalcium() bool { return kinetics.Carries(ch.kin) }

// Integrate advances the gates over dt at membrane potential v and calcium
// ca, then recomputes G. deltaTemp is the temperature offset applied to the
// channel's Q10 factors.
func (ch *Conductance) Integrate(v, ca, dt, deltaTemp float64) {
	p, q := ch.kin.Exponents()
	qg, qm, qh := ch.Q.Factors(deltaTemp)

	if p > 0 || q > 0 {
		mInf, hInf := ch.kin.Steady(v, ca)
		tauM, tauH := ch.kin.Taus(v)
		if p > 0 {
			ch.M = integrators.Relax(ch.M, mInf, tauM, dt*qm)
		}
		if q > 0 {
			ch.H = integrators.Relax(ch.H, hInf, tauH, dt*qh)
		}
	}

	ch.G = qg * ch.Gbar * ch.gates()
}

// Current returns the current density G * (v - E) in nA/mm^2.
func (ch *Conductance) Current(v float64) float64 {
	return ch.G * (v - ch.E)
}

func (ch *Conductance) gates() float64 {
	p, q := ch.kin.Exponents()
	return ipow(ch.M, p) * ipow(ch.H, q)
}

func ipow(x float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}
